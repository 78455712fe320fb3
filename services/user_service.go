package services

import (
	"context"
	"errors"

	"field_mates_server/models"
)

// ErrNotSignedIn is returned when an operation needs the signed-in user and
// nobody is signed in.
var ErrNotSignedIn = errors.New("no user is signed in")

// CurrentUserSource tells who is signed in.
type CurrentUserSource interface {
	AppleUserID(ctx context.Context) (string, error)
}

// UserService manages User records.
type UserService struct {
	Store         *RecordStore
	Session       CurrentUserSource
	Subscriptions *SubscriptionService
}

// FetchUser returns the user whose logical id is userID.
func (us *UserService) FetchUser(ctx context.Context, userID string) (*models.User, error) {
	users, err := FetchAll[models.User](ctx, us.Store, Equal(models.UUIDField, userID))
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, newError("no matching user found", ErrNotFound)
	}
	return &users[0], nil
}

// FetchUserByUsername returns a user other than userID that has username.
func (us *UserService) FetchUserByUsername(ctx context.Context, userID, username string) (*models.User, error) {
	users, err := FetchAll[models.User](ctx, us.Store, And(
		NotEqual(models.UUIDField, userID),
		Equal(models.UserFieldUsername, username),
	))
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, newError("no matching user found", ErrNotFound)
	}
	return &users[0], nil
}

// IsUsernameTaken reports whether a user other than userID already has
// username.
func (us *UserService) IsUsernameTaken(ctx context.Context, userID, username string) (bool, error) {
	_, err := us.FetchUserByUsername(ctx, userID, username)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (us *UserService) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	return Create(ctx, us.Store, user)
}

func (us *UserService) UpdateUser(ctx context.Context, user *models.User) (*models.User, error) {
	return Update(ctx, us.Store, user)
}

func (us *UserService) DeleteUser(ctx context.Context, user *models.User) (models.RecordID, error) {
	return Delete(ctx, us.Store, user)
}

// FetchCurrentUser returns the user record of whoever is signed in.
func (us *UserService) FetchCurrentUser(ctx context.Context) (*models.User, error) {
	if us.Session == nil {
		return nil, ErrNotSignedIn
	}
	id, err := us.Session.AppleUserID(ctx)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, ErrNotSignedIn
	}
	return us.FetchUser(ctx, id)
}

// SetupSubscription makes sure the UserChanges subscription exists.
func (us *UserService) SetupSubscription(ctx context.Context) error {
	return us.Subscriptions.Setup(ctx, models.UserChangesSubscription())
}
