package main

import (
	"context"
	"encoding/json"
	"errors"

	"field_mates_server/logging"
	"field_mates_server/models"
	"field_mates_server/services"

	"github.com/aws/aws-lambda-go/events"
)

// userFetcher is the part of services.UserService the consumer uses.
type userFetcher interface {
	FetchUser(ctx context.Context, userID string) (*models.User, error)
}

type consumer struct {
	users userFetcher
	log   logging.Logger
}

// handle re-fetches every user named by a create or update notification in
// event. Fetches run concurrently; their completions are handled one at a
// time. Messages whose fetch failed, or did not finish before ctx ended, are
// reported back so SQS redelivers them.
func (c *consumer) handle(ctx context.Context, event events.SQSEvent) (events.SQSEventResponse, error) {
	log := logging.OrNoOp(c.log)
	log.Infof("received %d notifications", len(event.Records))

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	d := services.NewDispatcher(len(event.Records))

	// only touched before Run starts and from completions, which Run calls
	// on this goroutine
	finished := map[string]bool{}
	var failed []string
	pending := 0

	for _, msg := range event.Records {
		var n models.Notification
		if err := json.Unmarshal([]byte(msg.Body), &n); err != nil {
			// redelivery will not fix a malformed message
			log.Errorf("message %s is not a notification: %v", msg.MessageId, err)
			continue
		}
		if n.RecordType != models.UserRecordType || n.Change == models.ChangeDeleted {
			continue
		}

		messageID := msg.MessageId
		finished[messageID] = false
		pending++

		services.Go(runCtx, d, func(ctx context.Context) (*models.User, error) {
			return c.users.FetchUser(ctx, n.RecordName)
		}, func(user *models.User, err error) {
			finished[messageID] = true
			pending--
			switch {
			case errors.Is(err, services.ErrNotFound):
				log.Warnf("user %q from message %s no longer exists", n.RecordName, messageID)
			case err != nil:
				log.Errorf("refreshing user %q from message %s: %v", n.RecordName, messageID, err)
				failed = append(failed, messageID)
			default:
				log.Infof("refreshed user %s (%s, %s, %s) after %s", user.ID, user.Username, user.SkillString(), user.PositionString(), n.Change)
			}
			if pending == 0 {
				cancel()
			}
		})
	}

	if pending > 0 {
		d.Run(runCtx)
	}

	var resp events.SQSEventResponse
	for _, msg := range event.Records {
		done, tracked := finished[msg.MessageId]
		if tracked && !done {
			failed = append(failed, msg.MessageId)
		}
	}
	for _, id := range failed {
		resp.BatchItemFailures = append(resp.BatchItemFailures, events.SQSBatchItemFailure{ItemIdentifier: id})
	}
	return resp, nil
}
