package services

import (
	"context"
	"testing"
	"time"

	"field_mates_server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestMatch(t *testing.T, ms *MatchService, maxPlayers int, participants ...string) *models.Match {
	t.Helper()
	match := models.NewMatch(time.Date(2025, time.April, 12, 17, 0, 0, 0, time.UTC), "Parcul Titan", 44.41, 26.16, maxPlayers, models.SkillIntermediate, "organizer")
	match.Participants = append(match.Participants, participants...)
	created, err := ms.CreateMatch(context.Background(), &match)
	require.NoError(t, err)
	return created
}

func Test_MatchService_AddParticipant(t *testing.T) {
	testCases := []struct {
		name         string
		maxPlayers   int
		participants []string
		add          string
		expect       []string
	}{
		{
			name:       "first player",
			maxPlayers: 2,
			add:        "u1",
			expect:     []string{"u1"},
		},
		{
			name:         "already joined",
			maxPlayers:   3,
			participants: []string{"u1"},
			add:          "u1",
			expect:       []string{"u1"},
		},
		{
			name:         "full match",
			maxPlayers:   2,
			participants: []string{"u1", "u2"},
			add:          "u3",
			expect:       []string{"u1", "u2"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			ctx := context.Background()
			store, _ := newTestStore(t)
			ms := &MatchService{Store: store}
			match := createTestMatch(t, ms, tc.maxPlayers, tc.participants...)
			before := append([]string{}, match.Participants...)

			updated, err := ms.AddParticipant(ctx, *match, tc.add)
			require.NoError(t, err)
			assert.Equal(tc.expect, updated.Participants)
			assert.Equal(before, match.Participants, "caller's match must not change")

			stored, err := ms.FetchMatch(ctx, match.ID)
			require.NoError(t, err)
			assert.Equal(tc.expect, stored.Participants)
		})
	}
}

func Test_MatchService_RemoveParticipant(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	ms := &MatchService{Store: store}
	match := createTestMatch(t, ms, 4, "u1", "u2", "u3")

	updated, err := ms.RemoveParticipant(ctx, *match, "u2")
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u3"}, updated.Participants)

	updated, err = ms.RemoveParticipant(ctx, *updated, "nobody")
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u3"}, updated.Participants)
}

func Test_MatchService_JoinAndLeave(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	store, _ := newTestStore(t)
	ms := &MatchService{Store: store}
	match := createTestMatch(t, ms, 2, "u1")

	joined, participation, err := ms.JoinMatch(ctx, *match, "u2")
	require.NoError(t, err)
	require.NotNil(t, participation)
	assert.Equal([]string{"u1", "u2"}, joined.Participants)
	assert.Equal(match.ID, participation.MatchID)
	assert.Equal(models.MatchStatusJoined, participation.Status)

	full, participation, err := ms.JoinMatch(ctx, *joined, "u3")
	require.NoError(t, err)
	assert.Nil(participation)
	assert.Equal([]string{"u1", "u2"}, full.Participants)

	left, err := ms.LeaveMatch(ctx, *full, "u2")
	require.NoError(t, err)
	assert.Equal([]string{"u1"}, left.Participants)

	participations, err := ms.ListParticipations(ctx, match.ID)
	require.NoError(t, err)
	require.Len(t, participations, 1)
	assert.Equal("u2", participations[0].UserID)
	assert.Equal(models.MatchStatusLeft, participations[0].Status)
}

func Test_MatchService_JoinMatch_Twice(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	store, _ := newTestStore(t)
	ms := &MatchService{Store: store}
	match := createTestMatch(t, ms, 4, "u1")

	rowsFor := func(userID string) []models.MatchParticipants {
		t.Helper()
		all, err := ms.ListParticipations(ctx, match.ID)
		require.NoError(t, err)
		var rows []models.MatchParticipants
		for _, p := range all {
			if p.UserID == userID {
				rows = append(rows, p)
			}
		}
		return rows
	}

	joined, first, err := ms.JoinMatch(ctx, *match, "u2")
	require.NoError(t, err)
	require.NotNil(t, first)
	joined, second, err := ms.JoinMatch(ctx, *joined, "u2")
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal([]string{"u1", "u2"}, joined.Participants)
	assert.Equal(first.ID, second.ID)
	assert.Len(rowsFor("u2"), 1)

	// u1 was listed when the match was created
	for i := 0; i < 2; i++ {
		_, p, err := ms.JoinMatch(ctx, *joined, "u1")
		require.NoError(t, err)
		require.NotNil(t, p)
	}
	assert.Len(rowsFor("u1"), 1)

	left, err := ms.LeaveMatch(ctx, *joined, "u2")
	require.NoError(t, err)
	rejoined, again, err := ms.JoinMatch(ctx, *left, "u2")
	require.NoError(t, err)
	require.NotNil(t, again)
	assert.Equal(first.ID, again.ID)
	assert.Equal(models.MatchStatusJoined, again.Status)
	assert.Equal([]string{"u1", "u2"}, rejoined.Participants)

	rows := rowsFor("u2")
	require.Len(t, rows, 1)
	assert.Equal(models.MatchStatusJoined, rows[0].Status)
}

func Test_MatchService_FetchMatch(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	ms := &MatchService{Store: store}
	match := createTestMatch(t, ms, 10)
	createTestMatch(t, ms, 6)

	got, err := ms.FetchMatch(ctx, match.ID)
	require.NoError(t, err)
	assert.Equal(t, match, got)

	all, err := ms.FetchAllMatches(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = ms.FetchMatch(ctx, "no-such-match")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = ms.DeleteMatch(ctx, match)
	require.NoError(t, err)
	_, err = ms.FetchMatch(ctx, match.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
