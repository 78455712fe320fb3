package models

import (
	"errors"
	"fmt"
	"time"

	"field_mates_server/utils"

	"github.com/google/uuid"
)

// Match record fields
const (
	MatchFieldMatchDate    = "matchDate"
	MatchFieldLocation     = "location"
	MatchFieldLatitude     = "latitude"
	MatchFieldLongitude    = "longitude"
	MatchFieldMaxPlayers   = "maxPlayers"
	MatchFieldSkillLevel   = "skillLevel"
	MatchFieldOrganizerID  = "organizerID"
	MatchFieldParticipants = "participants"
)

// Match is a scheduled game that players can join.
type Match struct {
	ID           string     `json:"id"`
	RecordID     *RecordID  `json:"recordId,omitempty"`
	MatchDate    time.Time  `json:"matchDate"`
	Location     string     `json:"location"`
	Latitude     float64    `json:"latitude"`
	Longitude    float64    `json:"longitude"`
	MaxPlayers   int        `json:"maxPlayers"`
	SkillLevel   SkillLevel `json:"skillLevel"`
	OrganizerID  string     `json:"organizerId"`
	Participants []string   `json:"participants"` // user ids
}

// NewMatch returns a match with a fresh id and no participants.
func NewMatch(matchDate time.Time, location string, latitude, longitude float64, maxPlayers int, skill SkillLevel, organizerID string) Match {
	return Match{
		ID:           uuid.NewString(),
		MatchDate:    matchDate.UTC(),
		Location:     location,
		Latitude:     latitude,
		Longitude:    longitude,
		MaxPlayers:   maxPlayers,
		SkillLevel:   skill,
		OrganizerID:  organizerID,
		Participants: []string{},
	}
}

func (m *Match) RecordType() string     { return MatchRecordType }
func (m *Match) GetID() string          { return m.ID }
func (m *Match) GetRecordID() *RecordID { return m.RecordID }

// Decode fills m from rec. Every field except participants is required; an
// unreadable skill level decodes as SkillBeginner.
func (m *Match) Decode(rec *Record) bool {
	f := rec.Fields
	matchDate, ok := utils.ExtractTime(f, MatchFieldMatchDate)
	if !ok {
		return false
	}
	location, ok := utils.ExtractString(f, MatchFieldLocation)
	if !ok {
		return false
	}
	latitude, ok := utils.ExtractFloat(f, MatchFieldLatitude)
	if !ok {
		return false
	}
	longitude, ok := utils.ExtractFloat(f, MatchFieldLongitude)
	if !ok {
		return false
	}
	maxPlayers, ok := utils.ExtractInt(f, MatchFieldMaxPlayers)
	if !ok {
		return false
	}
	organizerID, ok := utils.ExtractString(f, MatchFieldOrganizerID)
	if !ok {
		return false
	}
	rawSkill, ok := utils.ExtractString(f, MatchFieldSkillLevel)
	if !ok {
		return false
	}

	participants, ok := utils.ExtractStringList(f, MatchFieldParticipants)
	if !ok {
		participants = []string{}
	}

	*m = Match{
		ID:           logicalID(rec, uuid.NewString),
		RecordID:     recordIDOf(rec),
		MatchDate:    matchDate,
		Location:     location,
		Latitude:     latitude,
		Longitude:    longitude,
		MaxPlayers:   maxPlayers,
		SkillLevel:   ParseSkillLevel(rawSkill),
		OrganizerID:  organizerID,
		Participants: participants,
	}
	return true
}

// Encode writes m into rec, or into a new Match record when rec is nil.
func (m *Match) Encode(rec *Record) *Record {
	if rec == nil {
		rec = NewRecord(MatchRecordType)
	}

	participants := m.Participants
	if participants == nil {
		participants = []string{}
	}

	rec.Set(UUIDField, utils.StringValue(m.ID))
	rec.Set(MatchFieldMatchDate, utils.TimeValue(m.MatchDate))
	rec.Set(MatchFieldLocation, utils.StringValue(m.Location))
	rec.Set(MatchFieldLatitude, utils.FloatValue(m.Latitude))
	rec.Set(MatchFieldLongitude, utils.FloatValue(m.Longitude))
	rec.Set(MatchFieldMaxPlayers, utils.IntValue(m.MaxPlayers))
	rec.Set(MatchFieldOrganizerID, utils.StringValue(m.OrganizerID))
	rec.Set(MatchFieldSkillLevel, utils.StringValue(FormatSkillLevel(m.SkillLevel)))
	rec.Set(MatchFieldParticipants, utils.StringListValue(participants))

	return rec
}

// InUTC moves the match date into UTC, the location it decodes with.
func (m *Match) InUTC() {
	m.MatchDate = m.MatchDate.UTC()
}

// IsFull reports whether no more participants can join.
func (m *Match) IsFull() bool {
	return len(m.Participants) >= m.MaxPlayers
}

// HasParticipant reports whether userID has joined.
func (m *Match) HasParticipant(userID string) bool {
	for _, p := range m.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// AddParticipant appends userID unless the match is full or the user already
// joined.
func (m *Match) AddParticipant(userID string) {
	if m.HasParticipant(userID) || m.IsFull() {
		return
	}
	m.Participants = append(m.Participants, userID)
}

// RemoveParticipant removes every occurrence of userID, keeping the order of
// the others.
func (m *Match) RemoveParticipant(userID string) {
	kept := make([]string, 0, len(m.Participants))
	for _, p := range m.Participants {
		if p != userID {
			kept = append(kept, p)
		}
	}
	m.Participants = kept
}

// Validate checks the invariants of a match submitted by a client.
func (m *Match) Validate() error {
	var errs []error
	if m.MaxPlayers <= 0 {
		errs = append(errs, fmt.Errorf("maxPlayers must be greater than 0, got %d", m.MaxPlayers))
	}
	if len(m.Participants) > m.MaxPlayers {
		errs = append(errs, fmt.Errorf("%d participants exceed maxPlayers %d", len(m.Participants), m.MaxPlayers))
	}
	seen := make(map[string]struct{}, len(m.Participants))
	for _, p := range m.Participants {
		if _, dup := seen[p]; dup {
			errs = append(errs, fmt.Errorf("participant %q listed more than once", p))
		}
		seen[p] = struct{}{}
	}
	if !m.SkillLevel.Valid() {
		errs = append(errs, fmt.Errorf("invalid skill level %d", int(m.SkillLevel)))
	}
	if m.OrganizerID == "" {
		errs = append(errs, errors.New("organizerId is required"))
	}
	return errors.Join(errs...)
}
