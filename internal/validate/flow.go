// Package validate defines the wizard's step list and the predicates that
// gate each step.
package validate

import (
	"fmt"
	"strings"

	"github.com/verte-zerg/staffapp/internal/format"
	"github.com/verte-zerg/staffapp/internal/model"
)

// Step IDs shared by the flows and the quiz catalog.
const (
	StepProfile   = "profile"
	StepActivity  = "activity"
	StepKnowledge = "knowledge"
	StepQuizA     = "quiz-a"
	StepQuizB     = "quiz-b"
	StepClosing   = "closing"
)

// Flow variant names accepted by ByName.
const (
	FlowFull    = "full"
	FlowClassic = "classic"
)

// Validator reports whether a step's requirements are met. Arguments are
// values so a validator cannot mutate wizard state.
type Validator func(app model.Application, side model.SideState) bool

// Step is one screen of the wizard.
type Step struct {
	ID     string
	Title  string
	Fields []model.Field
	// Quiz steps start the quiz timer when first entered.
	Quiz     bool
	MiniGame bool
	Captcha  bool
	Validate Validator
}

// HasField reports whether the step asks for field f.
func (s Step) HasField(f model.Field) bool {
	for _, sf := range s.Fields {
		if sf == f {
			return true
		}
	}
	return false
}

// Flow is the ordered list of steps. Step numbers are 1-based.
type Flow []Step

// Len returns the number of steps.
func (f Flow) Len() int {
	return len(f)
}

// Step returns step n (1-based).
func (f Flow) Step(n int) (Step, bool) {
	if n < 1 || n > len(f) {
		return Step{}, false
	}
	return f[n-1], true
}

// ValidateStep runs the validator of step n. Numbers outside the flow
// have no requirements.
func (f Flow) ValidateStep(n int, app model.Application, side model.SideState) bool {
	step, ok := f.Step(n)
	if !ok || step.Validate == nil {
		return true
	}
	return step.Validate(app, side)
}

// Complete reports whether every step validates.
func (f Flow) Complete(app model.Application, side model.SideState) bool {
	for n := 1; n <= len(f); n++ {
		if !f.ValidateStep(n, app, side) {
			return false
		}
	}
	return true
}

// FirstInvalid returns the first step that does not validate, or 0.
func (f Flow) FirstInvalid(app model.Application, side model.SideState) int {
	for n := 1; n <= len(f); n++ {
		if !f.ValidateStep(n, app, side) {
			return n
		}
	}
	return 0
}

// ByName returns the flow for a configured variant.
func ByName(name string) (Flow, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", FlowFull:
		return FullFlow(), nil
	case FlowClassic:
		return ClassicFlow(), nil
	default:
		return nil, fmt.Errorf("unknown flow %q (available: %s, %s)", name, FlowFull, FlowClassic)
	}
}

// FullFlow is the six-step flow with the punishment sorter.
func FullFlow() Flow {
	return Flow{
		profileStep(),
		activityStep(),
		{
			ID:       StepKnowledge,
			Title:    "Знание правил",
			MiniGame: true,
			Validate: Knowledge,
		},
		quizAStep(),
		quizBStep(),
		closingStep(),
	}
}

// ClassicFlow is the earlier five-step flow without the mini-game.
func ClassicFlow() Flow {
	return Flow{
		profileStep(),
		activityStep(),
		quizBStep(),
		quizAStep(),
		closingStep(),
	}
}

func profileStep() Step {
	return Step{
		ID:       StepProfile,
		Title:    "Профиль",
		Fields:   []model.Field{model.FieldNickname, model.FieldDiscord, model.FieldAge},
		Validate: Profile,
	}
}

func activityStep() Step {
	return Step{
		ID:       StepActivity,
		Title:    "Активность",
		Fields:   []model.Field{model.FieldTimeOnProject, model.FieldHoursDaily, model.FieldActiveTime, model.FieldAbout},
		Validate: Activity,
	}
}

func quizAStep() Step {
	return Step{
		ID:       StepQuizA,
		Title:    "Правила: часть 1",
		Fields:   []model.Field{model.FieldTeamLimit, model.FieldBetterPvpAllowed, model.FieldMultiAccountAllowed},
		Quiz:     true,
		Validate: QuizA,
	}
}

func quizBStep() Step {
	return Step{
		ID:       StepQuizB,
		Title:    "Правила: часть 2",
		Fields:   []model.Field{model.FieldWeaknessPunishment, model.FieldInsultModPunishment, model.FieldMentionAllowedProjects},
		Quiz:     true,
		Validate: QuizB,
	}
}

func closingStep() Step {
	return Step{
		ID:    StepClosing,
		Title: "Завершение",
		Fields: []model.Field{
			model.FieldPreviousModExp,
			model.FieldExpectations,
			model.FieldDuties,
			model.FieldDeanonPunishment,
		},
		Captcha:  true,
		Validate: Closing,
	}
}

// Profile requires nickname, discord and age.
func Profile(app model.Application, _ model.SideState) bool {
	return notBlank(app.Nickname) && notBlank(app.Discord) && notBlank(app.Age)
}

// Activity requires the availability answers and a complete active-time
// range.
func Activity(app model.Application, _ model.SideState) bool {
	return notBlank(app.TimeOnProject) &&
		notBlank(app.HoursDaily) &&
		len(app.ActiveTime) == format.ActiveTimeLen &&
		notBlank(app.About)
}

// Knowledge requires a passed punishment sorter.
func Knowledge(app model.Application, _ model.SideState) bool {
	return app.PunishmentTestPassed
}

// QuizA requires the first block of rule questions.
func QuizA(app model.Application, _ model.SideState) bool {
	return app.TeamLimit != "" && app.BetterPvpAllowed != "" && app.MultiAccountAllowed != ""
}

// QuizB requires the second block of rule questions.
func QuizB(app model.Application, _ model.SideState) bool {
	return app.WeaknessPunishment != "" && app.InsultModPunishment != "" && app.MentionAllowedProjects != ""
}

// Closing requires motivation answers, the deanon question and a verified
// CAPTCHA.
func Closing(app model.Application, side model.SideState) bool {
	return notBlank(app.Expectations) &&
		notBlank(app.Duties) &&
		app.DeanonPunishment != "" &&
		side.CaptchaVerified
}

func notBlank(s string) bool {
	return strings.TrimSpace(s) != ""
}
