package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"field_mates_server/logging"
	"field_mates_server/models"

	"golang.org/x/sync/errgroup"
)

// Pusher delivers a notification to the clients listening for it.
type Pusher interface {
	Push(ctx context.Context, n models.Notification) error
}

// SubscriptionService keeps change subscriptions and turns record changes into
// notifications for every Pusher. It is the ChangeNotifier of the record
// store.
type SubscriptionService struct {
	Store   *RecordStore
	Pushers []Pusher
	Log     logging.Logger

	mu     sync.Mutex
	subs   map[string]models.Subscription
	loaded bool
	now    func() time.Time
}

// Setup makes sure sub is stored. A subscription that already exists is left
// as it is, so calling Setup repeatedly is safe.
func (ss *SubscriptionService) Setup(ctx context.Context, sub models.Subscription) error {
	id := models.RecordID{RecordType: models.SubscriptionRecordType, Name: sub.ID}

	existing, err := Fetch[models.Subscription](ctx, ss.Store, id)
	if err == nil {
		ss.remember(*existing)
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}

	created, err := Create(ctx, ss.Store, &sub)
	if errors.Is(err, ErrAlreadyExists) {
		// someone else created it between the fetch and the create
		ss.remember(sub)
		return nil
	}
	if err != nil {
		return err
	}
	ss.remember(*created)
	return nil
}

// Reload drops the cached subscriptions; they are read again on the next
// change.
func (ss *SubscriptionService) Reload() {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.subs = nil
	ss.loaded = false
}

func (ss *SubscriptionService) remember(sub models.Subscription) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	if ss.subs == nil {
		ss.subs = map[string]models.Subscription{}
	}
	ss.subs[sub.ID] = sub
}

func (ss *SubscriptionService) subscriptions(ctx context.Context) ([]models.Subscription, error) {
	ss.mu.Lock()
	loaded := ss.loaded
	ss.mu.Unlock()

	if !loaded {
		stored, err := FetchAll[models.Subscription](ctx, ss.Store, All())
		if err != nil {
			return nil, err
		}
		ss.mu.Lock()
		if ss.subs == nil {
			ss.subs = map[string]models.Subscription{}
		}
		for _, sub := range stored {
			ss.subs[sub.ID] = sub
		}
		ss.loaded = true
		ss.mu.Unlock()
	}

	ss.mu.Lock()
	defer ss.mu.Unlock()
	out := make([]models.Subscription, 0, len(ss.subs))
	for _, sub := range ss.subs {
		out = append(out, sub)
	}
	return out, nil
}

// NotifyChange pushes a notification for every subscription that fires on
// change. Every pusher is tried even if others fail.
func (ss *SubscriptionService) NotifyChange(ctx context.Context, change models.Change) error {
	if change.RecordID.RecordType == models.SubscriptionRecordType {
		return nil
	}

	subs, err := ss.subscriptions(ctx)
	if err != nil {
		return err
	}

	sentAt := time.Now().UTC()
	if ss.now != nil {
		sentAt = ss.now()
	}

	var (
		mu   sync.Mutex
		errs []error
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, sub := range subs {
		if !sub.Fires(change) {
			continue
		}
		n := models.Notification{
			SubscriptionID:   sub.ID,
			RecordType:       change.RecordID.RecordType,
			RecordName:       change.RecordID.Name,
			Change:           change.Kind,
			ContentAvailable: sub.ContentAvailable,
			SentAt:           sentAt,
		}
		for _, p := range ss.Pushers {
			p := p
			g.Go(func() error {
				if err := p.Push(gctx, n); err != nil {
					logging.OrNoOp(ss.Log).Warnf("push of %s %s to subscription %q failed: %v", n.Change, change.RecordID, n.SubscriptionID, err)
					mu.Lock()
					errs = append(errs, err)
					mu.Unlock()
				}
				return nil
			})
		}
	}
	g.Wait()
	return errors.Join(errs...)
}
