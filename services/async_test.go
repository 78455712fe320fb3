package services

import (
	"context"
	"testing"
	"time"

	"field_mates_server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Dispatcher_DeliversOnRunGoroutine(t *testing.T) {
	assert := assert.New(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	store, _ := newTestStore(t)
	d := NewDispatcher(4)

	// only touched from completions
	var (
		created *models.User
		users   []models.User
		deleted models.RecordID
		errs    []error
	)

	CreateAsync(ctx, d, store, testUser("u1", "one"), func(u *models.User, err error) {
		created = u
		errs = append(errs, err)

		FetchAllAsync[models.User](ctx, d, store, nil, func(all []models.User, err error) {
			users = all
			errs = append(errs, err)

			DeleteAsync(ctx, d, store, created, func(id models.RecordID, err error) {
				deleted = id
				errs = append(errs, err)
				cancel()
			})
		})
	})

	err := d.Run(ctx)
	assert.ErrorIs(err, context.Canceled)

	require.Len(t, errs, 3)
	for _, e := range errs {
		assert.NoError(e)
	}
	require.NotNil(t, created)
	assert.Equal("one", created.Username)
	require.Len(t, users, 1)
	assert.Equal(models.RecordID{RecordType: models.UserRecordType, Name: "u1"}, deleted)
}

func Test_UpdateAsync_Error(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	store, _ := newTestStore(t)
	d := NewDispatcher(0)

	var got error
	UpdateAsync(ctx, d, store, testUser("u1", "one"), func(u *models.User, err error) {
		assert.Nil(t, u)
		got = err
		cancel()
	})

	d.Run(ctx)
	assert.ErrorIs(t, got, ErrMissingIdentifier)
}

func Test_Dispatcher_DropsCompletionsAfterRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	d := NewDispatcher(0)

	cancel()
	d.Run(ctx)

	finished := make(chan struct{})
	Go(context.Background(), d, func(ctx context.Context) (int, error) {
		defer close(finished)
		return 1, nil
	}, func(int, error) {
		t.Error("completion delivered after Run returned")
	})

	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatal("background work did not finish")
	}
}
