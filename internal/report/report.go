// Package report turns a finished application into the document sent to the
// recruitment channel.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"

	"github.com/verte-zerg/staffapp/internal/model"
	"github.com/verte-zerg/staffapp/internal/quiz"
)

// DefaultSuspiciousBelow flags applications filled faster than this.
const DefaultSuspiciousBelow = 45 * time.Second

const (
	markerCorrect   = "✅ ВЕРНО"
	markerWrongFmt  = "❌ ОШИБКА (Ответ: %s)"
	emptyAnswer     = "пусто"
	noModExperience = "Нет опыта"
	emptyText       = "—"
	notCompleted    = "не пройден"
)

// Settings configures grading and presentation.
type Settings struct {
	AnswerKey       map[model.Field]string
	SuspiciousBelow time.Duration
	Mention         string
	Brand           string
	Footer          string
	Color           int
	// AvatarURL is a format string taking the nickname.
	AvatarURL string
}

// DefaultAnswerKey returns the expected answer for every quiz field.
func DefaultAnswerKey() map[model.Field]string {
	return map[model.Field]string{
		model.FieldTeamLimit:              "5",
		model.FieldBetterPvpAllowed:       "no",
		model.FieldMultiAccountAllowed:    "no",
		model.FieldRecordCheckAllowed:     "no",
		model.FieldDeanonPunishment:       "permban",
		model.FieldWeaknessPunishment:     "no_punish",
		model.FieldInsultModPunishment:    "mute_1d",
		model.FieldMentionAllowedProjects: "yes",
	}
}

// DefaultSettings returns the stock report settings.
func DefaultSettings() Settings {
	return Settings{
		AnswerKey:       DefaultAnswerKey(),
		SuspiciousBelow: DefaultSuspiciousBelow,
		Brand:           "NullX",
		Footer:          "NullX Network Staff Recruitment System",
		Color:           0x6200ea,
		AvatarURL:       "https://minotar.net/helm/%s/100.png",
	}
}

// QuizResult is the grading of one answer.
type QuizResult struct {
	Field    model.Field
	Label    string
	Expected string
	Given    string
	Correct  bool
}

// Marker renders the pass/fail annotation.
func (q QuizResult) Marker() string {
	if q.Correct {
		return markerCorrect
	}
	given := q.Given
	if given == "" {
		given = emptyAnswer
	}
	return fmt.Sprintf(markerWrongFmt, given)
}

// MiniGame is the punishment sorter outcome.
type MiniGame struct {
	Completed bool
	Mistakes  int
}

// String renders the outcome for the report.
func (m MiniGame) String() string {
	if !m.Completed {
		return notCompleted
	}
	return fmt.Sprintf("пройден, ошибок: %d", m.Mistakes)
}

// Report is the assembled document.
type Report struct {
	ID        string
	CreatedAt time.Time

	Nickname      string
	Discord       string
	Age           string
	TimeOnProject string

	HoursDaily string
	ActiveTime string

	About          string
	PreviousModExp string

	Quiz     []QuizResult
	MiniGame MiniGame

	Expectations string
	Duties       string

	Analytics  model.Analytics
	Suspicious bool

	settings Settings
}

// Score returns the number of correct answers.
func (r Report) Score() int {
	n := 0
	for _, q := range r.Quiz {
		if q.Correct {
			n++
		}
	}
	return n
}

// Submission summarizes the report for the local journal.
func (r Report) Submission(delivered bool) model.Submission {
	return model.Submission{
		ID:               r.ID,
		Nickname:         r.Nickname,
		SubmittedAt:      r.CreatedAt,
		Delivered:        delivered,
		TimeSpentSeconds: r.Analytics.TimeSpentSeconds,
		QuizCorrect:      r.Score(),
		QuizTotal:        len(r.Quiz),
		Suspicious:       r.Suspicious,
	}
}

// Assembler builds reports.
type Assembler struct {
	Settings Settings
	Catalog  quiz.Catalog
	Clock    func() time.Time
	NewID    func() string
}

// NewAssembler returns an assembler with the wall clock and random UUIDs.
func NewAssembler(settings Settings, catalog quiz.Catalog) *Assembler {
	return &Assembler{
		Settings: settings,
		Catalog:  catalog,
		Clock:    time.Now,
		NewID:    uuid.NewString,
	}
}

// Assemble grades app and packs it with analytics. Wrong answers are only
// annotated.
func (a *Assembler) Assemble(app model.Application, analytics model.Analytics) Report {
	clock := a.Clock
	if clock == nil {
		clock = time.Now
	}
	newID := a.NewID
	if newID == nil {
		newID = uuid.NewString
	}

	r := Report{
		ID:             newID(),
		CreatedAt:      clock().UTC(),
		Nickname:       app.Nickname,
		Discord:        app.Discord,
		Age:            app.Age,
		TimeOnProject:  app.TimeOnProject,
		HoursDaily:     app.HoursDaily,
		ActiveTime:     app.ActiveTime,
		About:          app.About,
		PreviousModExp: app.PreviousModExp,
		Expectations:   app.Expectations,
		Duties:         app.Duties,
		MiniGame: MiniGame{
			Completed: app.PunishmentTestPassed,
			Mistakes:  app.PunishmentTestMistakes,
		},
		Analytics: analytics,
		settings:  a.Settings,
	}

	threshold := a.Settings.SuspiciousBelow
	if threshold <= 0 {
		threshold = DefaultSuspiciousBelow
	}
	r.Suspicious = time.Duration(analytics.TimeSpentSeconds)*time.Second < threshold

	for _, f := range model.QuizFields {
		expected := a.Settings.AnswerKey[f]
		given := app.Get(f)
		label := f.String()
		if q, ok := a.Catalog.Question(f); ok && q.Label != "" {
			label = q.Label
		}
		r.Quiz = append(r.Quiz, QuizResult{
			Field:    f,
			Label:    label,
			Expected: expected,
			Given:    given,
			Correct:  sameAnswer(given, expected),
		})
	}
	return r
}

func sameAnswer(given, expected string) bool {
	fold := cases.Fold()
	return fold.String(strings.TrimSpace(given)) == fold.String(strings.TrimSpace(expected))
}

// Duration renders seconds as "Xм Yс".
func Duration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%dм %dс", seconds/60, seconds%60)
}
