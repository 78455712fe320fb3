package models

import "strconv"

// Record types
const (
	UserRecordType              = "User"
	MatchRecordType             = "Match"
	MatchParticipantsRecordType = "MatchParticipants"
	SubscriptionRecordType      = "Subscription"
)

// SkillLevel is an ordinal from 1 (beginner) to 4 (professional).
type SkillLevel int

const (
	SkillBeginner SkillLevel = iota + 1
	SkillIntermediate
	SkillAdvanced
	SkillProfessional
)

// Valid reports whether s is one of the defined levels.
func (s SkillLevel) Valid() bool {
	return s >= SkillBeginner && s <= SkillProfessional
}

func (s SkillLevel) String() string {
	switch s {
	case SkillBeginner:
		return "Beginner"
	case SkillIntermediate:
		return "Intermediate"
	case SkillAdvanced:
		return "Advanced"
	case SkillProfessional:
		return "Professional"
	default:
		return "SkillLevel(" + strconv.Itoa(int(s)) + ")"
	}
}

// ParseSkillLevel reads the stored ordinal form of a skill level. Values that
// are not numeric or out of range fall back to SkillBeginner.
//
// The fallback mirrors how existing records have always been read; it has not
// been confirmed as intended product behavior.
func ParseSkillLevel(raw string) SkillLevel {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return SkillBeginner
	}
	level := SkillLevel(n)
	if !level.Valid() {
		return SkillBeginner
	}
	return level
}

// FormatSkillLevel returns the stored form of s.
func FormatSkillLevel(s SkillLevel) string {
	return strconv.Itoa(int(s))
}

// Position is a preferred playing position.
type Position string

const (
	PositionGoalkeeper Position = "Goalkeeper"
	PositionDefender   Position = "Defender"
	PositionMidfielder Position = "Midfielder"
	PositionForward    Position = "Forward"
)

// ParsePosition returns false for anything but the four known positions.
func ParsePosition(raw string) (Position, bool) {
	switch p := Position(raw); p {
	case PositionGoalkeeper, PositionDefender, PositionMidfielder, PositionForward:
		return p, true
	default:
		return "", false
	}
}

// NotSpecified is the display text for an unset optional enum.
const NotSpecified = "Not Specified"
