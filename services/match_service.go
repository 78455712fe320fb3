package services

import (
	"context"

	"field_mates_server/models"
)

// MatchService manages Match records and the participations recorded for
// them.
type MatchService struct {
	Store *RecordStore
}

func (ms *MatchService) CreateMatch(ctx context.Context, match *models.Match) (*models.Match, error) {
	return Create(ctx, ms.Store, match)
}

// FetchMatch returns the match whose logical id is matchID.
func (ms *MatchService) FetchMatch(ctx context.Context, matchID string) (*models.Match, error) {
	matches, err := FetchAll[models.Match](ctx, ms.Store, Equal(models.UUIDField, matchID))
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, newError("no matching match found", ErrNotFound)
	}
	return &matches[0], nil
}

func (ms *MatchService) FetchAllMatches(ctx context.Context) ([]models.Match, error) {
	return FetchAll[models.Match](ctx, ms.Store, All())
}

func (ms *MatchService) UpdateMatch(ctx context.Context, match *models.Match) (*models.Match, error) {
	return Update(ctx, ms.Store, match)
}

func (ms *MatchService) DeleteMatch(ctx context.Context, match *models.Match) (models.RecordID, error) {
	return Delete(ctx, ms.Store, match)
}

// AddParticipant adds userID to a copy of match and stores it. Adding to a
// full match or adding a user twice stores the match unchanged.
func (ms *MatchService) AddParticipant(ctx context.Context, match models.Match, userID string) (*models.Match, error) {
	match.Participants = append([]string(nil), match.Participants...)
	match.AddParticipant(userID)
	return ms.UpdateMatch(ctx, &match)
}

// RemoveParticipant removes userID from a copy of match and stores it.
func (ms *MatchService) RemoveParticipant(ctx context.Context, match models.Match, userID string) (*models.Match, error) {
	match.RemoveParticipant(userID)
	return ms.UpdateMatch(ctx, &match)
}

// JoinMatch adds userID to the match and records the participation. A user
// who could not be added because the match is full gets no participation.
// Joining again reuses the user's participation, marking it joined if they
// had left.
func (ms *MatchService) JoinMatch(ctx context.Context, match models.Match, userID string) (*models.Match, *models.MatchParticipants, error) {
	updated, err := ms.AddParticipant(ctx, match, userID)
	if err != nil {
		return nil, nil, err
	}
	if !updated.HasParticipant(userID) {
		return updated, nil, nil
	}

	existing, err := ms.participationsOf(ctx, updated.ID, userID)
	if err != nil {
		return updated, nil, err
	}
	if len(existing) > 0 {
		p := existing[0]
		if p.Status == models.MatchStatusJoined {
			return updated, &p, nil
		}
		p.Status = models.MatchStatusJoined
		participation, err := Update(ctx, ms.Store, &p)
		if err != nil {
			return updated, nil, err
		}
		return updated, participation, nil
	}

	p := models.NewMatchParticipants(updated.ID, userID, models.MatchStatusJoined)
	participation, err := Create(ctx, ms.Store, &p)
	if err != nil {
		return updated, nil, err
	}
	return updated, participation, nil
}

// LeaveMatch removes userID from the match and marks their participations as
// left.
func (ms *MatchService) LeaveMatch(ctx context.Context, match models.Match, userID string) (*models.Match, error) {
	updated, err := ms.RemoveParticipant(ctx, match, userID)
	if err != nil {
		return nil, err
	}

	participations, err := ms.participationsOf(ctx, match.ID, userID)
	if err != nil {
		return updated, err
	}
	for i := range participations {
		p := participations[i]
		if p.Status == models.MatchStatusLeft {
			continue
		}
		p.Status = models.MatchStatusLeft
		if _, err := Update(ctx, ms.Store, &p); err != nil {
			return updated, err
		}
	}
	return updated, nil
}

func (ms *MatchService) participationsOf(ctx context.Context, matchID, userID string) ([]models.MatchParticipants, error) {
	return FetchAll[models.MatchParticipants](ctx, ms.Store, And(
		Equal(models.ParticipantsFieldMatchID, matchID),
		Equal(models.ParticipantsFieldUserID, userID),
	))
}

// ListParticipations returns the participations recorded for matchID.
func (ms *MatchService) ListParticipations(ctx context.Context, matchID string) ([]models.MatchParticipants, error) {
	return FetchAll[models.MatchParticipants](ctx, ms.Store, Equal(models.ParticipantsFieldMatchID, matchID))
}
