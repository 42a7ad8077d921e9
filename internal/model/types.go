// Package model defines shared data structures.
package model

import "time"

// AboutMaxRunes caps the free-text "about" answer.
const AboutMaxRunes = 500

// HoursDailyMax is the upper bound for the hours-per-day answer.
const HoursDailyMax = 24

// Application is the record built by the wizard. JSON names are the
// storage keys of the draft snapshot.
type Application struct {
	Nickname string `json:"nickname"`
	Discord  string `json:"discord"`
	Age      string `json:"age"`

	TimeOnProject string `json:"timeOnProject"`
	HoursDaily    string `json:"hoursDaily"`
	ActiveTime    string `json:"activeTime"`

	About          string `json:"about"`
	PreviousModExp string `json:"previousModExp"`
	Expectations   string `json:"expectations"`
	Duties         string `json:"duties"`

	TeamLimit              string `json:"teamLimit"`
	BetterPvpAllowed       string `json:"betterPvpAllowed"`
	MultiAccountAllowed    string `json:"multiAccountAllowed"`
	RecordCheckAllowed     string `json:"recordCheckAllowed"`
	DeanonPunishment       string `json:"deanonPunishment"`
	WeaknessPunishment     string `json:"weaknessPunishment"`
	InsultModPunishment    string `json:"insultModPunishment"`
	MentionAllowedProjects string `json:"mentionAllowedProjects"`

	PunishmentTestPassed   bool `json:"punishmentTestPassed"`
	PunishmentTestMistakes int  `json:"punishmentTestMistakes"`
}

// DefaultApplication returns the initial record. recordCheckAllowed is
// never asked on any screen and starts as "no".
func DefaultApplication() Application {
	return Application{RecordCheckAllowed: "no"}
}

// SideState carries flags that gate steps but are not part of the
// application itself.
type SideState struct {
	CaptchaVerified bool
}

// Analytics is computed once, when the application is submitted.
type Analytics struct {
	TimeSpentSeconds int
	QuizTimeSeconds  int
	CaptchaAttempts  int
	UserAgent        string
}

// Submission is one delivery attempt recorded in the local journal.
type Submission struct {
	ID               string
	Nickname         string
	SubmittedAt      time.Time
	Delivered        bool
	TimeSpentSeconds int
	QuizCorrect      int
	QuizTotal        int
	Suspicious       bool
}
