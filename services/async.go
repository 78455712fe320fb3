package services

import (
	"context"
	"sync"

	"field_mates_server/models"
)

// Dispatcher runs record store calls in the background and delivers their
// completions one at a time on the goroutine that calls Run. Every
// completion is delivered at most once; completions still pending when Run
// returns are dropped.
type Dispatcher struct {
	completions chan func()
	stopped     chan struct{}
	stopOnce    sync.Once
}

// NewDispatcher returns a Dispatcher whose queue holds up to buffer
// completions before background calls wait for Run to catch up.
func NewDispatcher(buffer int) *Dispatcher {
	if buffer < 0 {
		buffer = 0
	}
	return &Dispatcher{
		completions: make(chan func(), buffer),
		stopped:     make(chan struct{}),
	}
}

// Run delivers completions until ctx is done.
func (d *Dispatcher) Run(ctx context.Context) error {
	defer d.stopOnce.Do(func() { close(d.stopped) })
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case f := <-d.completions:
			f()
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, f func()) {
	select {
	case d.completions <- f:
	case <-d.stopped:
	case <-ctx.Done():
	}
}

// Go runs work in the background and hands its result to done on the Run
// goroutine.
func Go[R any](ctx context.Context, d *Dispatcher, work func(ctx context.Context) (R, error), done func(R, error)) {
	go func() {
		result, err := work(ctx)
		d.deliver(ctx, func() { done(result, err) })
	}()
}

// CreateAsync is Create with a completion. entity must not be modified until
// done is called.
func CreateAsync[T any, PT models.Decodable[T]](ctx context.Context, d *Dispatcher, s *RecordStore, entity PT, done func(*T, error)) {
	Go(ctx, d, func(ctx context.Context) (*T, error) {
		return Create[T, PT](ctx, s, entity)
	}, done)
}

// FetchAllAsync is FetchAll with a completion.
func FetchAllAsync[T any, PT models.Decodable[T]](ctx context.Context, d *Dispatcher, s *RecordStore, pred Predicate, done func([]T, error)) {
	Go(ctx, d, func(ctx context.Context) ([]T, error) {
		return FetchAll[T, PT](ctx, s, pred)
	}, done)
}

// UpdateAsync is Update with a completion. entity must not be modified until
// done is called.
func UpdateAsync[T any, PT models.Decodable[T]](ctx context.Context, d *Dispatcher, s *RecordStore, entity PT, done func(*T, error)) {
	Go(ctx, d, func(ctx context.Context) (*T, error) {
		return Update[T, PT](ctx, s, entity)
	}, done)
}

// DeleteAsync is Delete with a completion.
func DeleteAsync(ctx context.Context, d *Dispatcher, s *RecordStore, entity models.RecordConvertible, done func(models.RecordID, error)) {
	Go(ctx, d, func(ctx context.Context) (models.RecordID, error) {
		return Delete(ctx, s, entity)
	}, done)
}
