package model

import "fmt"

// Field names one string answer of an Application.
type Field int

// Application fields, in form order.
const (
	FieldNickname Field = iota
	FieldDiscord
	FieldAge
	FieldTimeOnProject
	FieldHoursDaily
	FieldActiveTime
	FieldAbout
	FieldPreviousModExp
	FieldExpectations
	FieldDuties
	FieldTeamLimit
	FieldBetterPvpAllowed
	FieldMultiAccountAllowed
	FieldRecordCheckAllowed
	FieldDeanonPunishment
	FieldWeaknessPunishment
	FieldInsultModPunishment
	FieldMentionAllowedProjects
	fieldCount
)

// Kind selects how raw input for a field is normalized.
type Kind int

// Field kinds.
const (
	KindText Kind = iota
	KindDigits
	KindHours
	KindActiveTime
	KindLimitedText
	KindChoice
)

var fieldNames = [fieldCount]string{
	FieldNickname:               "nickname",
	FieldDiscord:                "discord",
	FieldAge:                    "age",
	FieldTimeOnProject:          "timeOnProject",
	FieldHoursDaily:             "hoursDaily",
	FieldActiveTime:             "activeTime",
	FieldAbout:                  "about",
	FieldPreviousModExp:         "previousModExp",
	FieldExpectations:           "expectations",
	FieldDuties:                 "duties",
	FieldTeamLimit:              "teamLimit",
	FieldBetterPvpAllowed:       "betterPvpAllowed",
	FieldMultiAccountAllowed:    "multiAccountAllowed",
	FieldRecordCheckAllowed:     "recordCheckAllowed",
	FieldDeanonPunishment:       "deanonPunishment",
	FieldWeaknessPunishment:     "weaknessPunishment",
	FieldInsultModPunishment:    "insultModPunishment",
	FieldMentionAllowedProjects: "mentionAllowedProjects",
}

// QuizFields lists the quiz answers in report order.
var QuizFields = []Field{
	FieldTeamLimit,
	FieldBetterPvpAllowed,
	FieldMultiAccountAllowed,
	FieldRecordCheckAllowed,
	FieldDeanonPunishment,
	FieldWeaknessPunishment,
	FieldInsultModPunishment,
	FieldMentionAllowedProjects,
}

// Fields returns every field in form order.
func Fields() []Field {
	out := make([]Field, 0, fieldCount)
	for f := Field(0); f < fieldCount; f++ {
		out = append(out, f)
	}
	return out
}

// String returns the JSON name of the field.
func (f Field) String() string {
	if !f.Valid() {
		return fmt.Sprintf("Field(%d)", int(f))
	}
	return fieldNames[f]
}

// Valid reports whether f is a known field.
func (f Field) Valid() bool {
	return f >= 0 && f < fieldCount
}

// Kind returns the normalization kind of the field.
func (f Field) Kind() Kind {
	switch f {
	case FieldAge:
		return KindDigits
	case FieldHoursDaily:
		return KindHours
	case FieldActiveTime:
		return KindActiveTime
	case FieldAbout:
		return KindLimitedText
	case FieldTeamLimit, FieldBetterPvpAllowed, FieldMultiAccountAllowed, FieldRecordCheckAllowed,
		FieldDeanonPunishment, FieldWeaknessPunishment, FieldInsultModPunishment, FieldMentionAllowedProjects:
		return KindChoice
	default:
		return KindText
	}
}

// ParseField maps a JSON field name back to its Field.
func ParseField(name string) (Field, error) {
	for f := Field(0); f < fieldCount; f++ {
		if fieldNames[f] == name {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown application field %q", name)
}

// Get returns the value of a string field.
func (a Application) Get(f Field) string {
	if p := a.ptr(f); p != nil {
		return *p
	}
	return ""
}

// Set stores value verbatim. Normalization is the caller's concern.
func (a *Application) Set(f Field, value string) error {
	p := a.ptr(f)
	if p == nil {
		return fmt.Errorf("unknown application field %d", int(f))
	}
	*p = value
	return nil
}

func (a *Application) ptr(f Field) *string {
	switch f {
	case FieldNickname:
		return &a.Nickname
	case FieldDiscord:
		return &a.Discord
	case FieldAge:
		return &a.Age
	case FieldTimeOnProject:
		return &a.TimeOnProject
	case FieldHoursDaily:
		return &a.HoursDaily
	case FieldActiveTime:
		return &a.ActiveTime
	case FieldAbout:
		return &a.About
	case FieldPreviousModExp:
		return &a.PreviousModExp
	case FieldExpectations:
		return &a.Expectations
	case FieldDuties:
		return &a.Duties
	case FieldTeamLimit:
		return &a.TeamLimit
	case FieldBetterPvpAllowed:
		return &a.BetterPvpAllowed
	case FieldMultiAccountAllowed:
		return &a.MultiAccountAllowed
	case FieldRecordCheckAllowed:
		return &a.RecordCheckAllowed
	case FieldDeanonPunishment:
		return &a.DeanonPunishment
	case FieldWeaknessPunishment:
		return &a.WeaknessPunishment
	case FieldInsultModPunishment:
		return &a.InsultModPunishment
	case FieldMentionAllowedProjects:
		return &a.MentionAllowedProjects
	default:
		return nil
	}
}
