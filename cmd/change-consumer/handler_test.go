package main

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"field_mates_server/models"
	"field_mates_server/services"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsers struct {
	mu      sync.Mutex
	fetched []string
	errs    map[string]error
}

func (f *fakeUsers) FetchUser(ctx context.Context, userID string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetched = append(f.fetched, userID)
	if err := f.errs[userID]; err != nil {
		return nil, err
	}
	return &models.User{ID: userID, Username: "user-" + userID}, nil
}

func message(t *testing.T, id string, n models.Notification) events.SQSMessage {
	t.Helper()
	body, err := json.Marshal(n)
	require.NoError(t, err)
	return events.SQSMessage{MessageId: id, Body: string(body)}
}

func Test_consumer_handle(t *testing.T) {
	userChange := func(name string, kind models.ChangeKind) models.Notification {
		return models.Notification{
			SubscriptionID: models.UserChangesSubscriptionID,
			RecordType:     models.UserRecordType,
			RecordName:     name,
			Change:         kind,
		}
	}

	testCases := []struct {
		name          string
		records       func(t *testing.T) []events.SQSMessage
		errs          map[string]error
		expectFetched []string
		expectFailed  []string
	}{
		{
			name: "created and updated users are fetched",
			records: func(t *testing.T) []events.SQSMessage {
				return []events.SQSMessage{
					message(t, "m1", userChange("u1", models.ChangeCreated)),
					message(t, "m2", userChange("u2", models.ChangeUpdated)),
				}
			},
			expectFetched: []string{"u1", "u2"},
		},
		{
			name: "deletions and other record types are skipped",
			records: func(t *testing.T) []events.SQSMessage {
				other := userChange("m-1", models.ChangeUpdated)
				other.RecordType = models.MatchRecordType
				return []events.SQSMessage{
					message(t, "m1", userChange("u1", models.ChangeDeleted)),
					message(t, "m2", other),
				}
			},
		},
		{
			name: "malformed message is dropped",
			records: func(t *testing.T) []events.SQSMessage {
				return []events.SQSMessage{{MessageId: "m1", Body: "{not json"}}
			},
		},
		{
			name: "transport failure is reported for redelivery",
			records: func(t *testing.T) []events.SQSMessage {
				return []events.SQSMessage{
					message(t, "m1", userChange("u1", models.ChangeUpdated)),
					message(t, "m2", userChange("u2", models.ChangeUpdated)),
				}
			},
			errs: map[string]error{
				"u2": errors.Join(services.ErrTransport, errors.New("connection reset")),
			},
			expectFetched: []string{"u1", "u2"},
			expectFailed:  []string{"m2"},
		},
		{
			name: "user that no longer exists is not retried",
			records: func(t *testing.T) []events.SQSMessage {
				return []events.SQSMessage{message(t, "m1", userChange("gone", models.ChangeCreated))}
			},
			errs:          map[string]error{"gone": services.ErrNotFound},
			expectFetched: []string{"gone"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			users := &fakeUsers{errs: tc.errs}
			c := &consumer{users: users}

			resp, err := c.handle(context.Background(), events.SQSEvent{Records: tc.records(t)})
			assert.NoError(err)

			var failed []string
			for _, f := range resp.BatchItemFailures {
				failed = append(failed, f.ItemIdentifier)
			}
			assert.ElementsMatch(tc.expectFailed, failed)
			assert.ElementsMatch(tc.expectFetched, users.fetched)
		})
	}
}
