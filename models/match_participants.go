package models

import (
	"field_mates_server/utils"

	"github.com/google/uuid"
)

// MatchStatus is a player's standing in a match.
type MatchStatus string

const (
	MatchStatusJoined   MatchStatus = "joined"
	MatchStatusInvited  MatchStatus = "invited"
	MatchStatusDeclined MatchStatus = "declined"
	MatchStatusLeft     MatchStatus = "left"
)

// ParseMatchStatus returns false for unknown statuses.
func ParseMatchStatus(raw string) (MatchStatus, bool) {
	switch s := MatchStatus(raw); s {
	case MatchStatusJoined, MatchStatusInvited, MatchStatusDeclined, MatchStatusLeft:
		return s, true
	default:
		return "", false
	}
}

// MatchParticipants record fields
const (
	ParticipantsFieldMatchID = "matchID"
	ParticipantsFieldUserID  = "userID"
	ParticipantsFieldStatus  = "status"
)

// MatchParticipants links a user to a match.
type MatchParticipants struct {
	ID       string      `json:"id"`
	RecordID *RecordID   `json:"recordId,omitempty"`
	MatchID  string      `json:"matchId"`
	UserID   string      `json:"userId"`
	Status   MatchStatus `json:"status"`
}

// NewMatchParticipants returns a participation with a fresh id.
func NewMatchParticipants(matchID, userID string, status MatchStatus) MatchParticipants {
	return MatchParticipants{
		ID:      uuid.NewString(),
		MatchID: matchID,
		UserID:  userID,
		Status:  status,
	}
}

func (p *MatchParticipants) RecordType() string     { return MatchParticipantsRecordType }
func (p *MatchParticipants) GetID() string          { return p.ID }
func (p *MatchParticipants) GetRecordID() *RecordID { return p.RecordID }

// Decode fails if status is missing or not a known MatchStatus.
func (p *MatchParticipants) Decode(rec *Record) bool {
	matchID, ok := utils.ExtractString(rec.Fields, ParticipantsFieldMatchID)
	if !ok {
		return false
	}
	userID, ok := utils.ExtractString(rec.Fields, ParticipantsFieldUserID)
	if !ok {
		return false
	}
	rawStatus, ok := utils.ExtractString(rec.Fields, ParticipantsFieldStatus)
	if !ok {
		return false
	}
	status, ok := ParseMatchStatus(rawStatus)
	if !ok {
		return false
	}

	*p = MatchParticipants{
		ID:       logicalID(rec, uuid.NewString),
		RecordID: recordIDOf(rec),
		MatchID:  matchID,
		UserID:   userID,
		Status:   status,
	}
	return true
}

func (p *MatchParticipants) Encode(rec *Record) *Record {
	if rec == nil {
		rec = NewRecord(MatchParticipantsRecordType)
	}
	rec.Set(UUIDField, utils.StringValue(p.ID))
	rec.Set(ParticipantsFieldMatchID, utils.StringValue(p.MatchID))
	rec.Set(ParticipantsFieldUserID, utils.StringValue(p.UserID))
	rec.Set(ParticipantsFieldStatus, utils.StringValue(string(p.Status)))
	return rec
}
