package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"field_mates_server/identity"
	"field_mates_server/logging"
	"field_mates_server/models"
	"field_mates_server/settings"
)

// ErrUsernameTaken is returned when an account would reuse another user's
// username.
var ErrUsernameTaken = errors.New("username is already taken")

// TokenVerifier checks an identity token.
type TokenVerifier interface {
	Verify(tok string) (identity.Identity, error)
}

// SessionSettings is the settings storage a SessionService needs.
type SessionSettings interface {
	CurrentUserSource
	SetAppleUserID(ctx context.Context, id string) error
	SetLoggedIn(ctx context.Context, v bool) error
	SetSeenOnboarding(ctx context.Context, v bool) error
	Email(ctx context.Context) (string, error)
	SetEmail(ctx context.Context, email string) error
	Snapshot(ctx context.Context) (settings.Values, error)
}

// SignInResult tells the caller where sign-in leaves them.
type SignInResult struct {
	Identity identity.Identity `json:"identity"`

	// AccountExists is true when a User record already exists for the
	// identity; otherwise the client should go on to create one.
	AccountExists bool         `json:"accountExists"`
	User          *models.User `json:"user,omitempty"`
}

// AccountInput is what a user fills in to create or modify their account.
type AccountInput struct {
	Username          string             `json:"username"`
	FirstName         string             `json:"firstName"`
	LastName          string             `json:"lastName"`
	PhoneNumber       *string            `json:"phoneNumber,omitempty"`
	Bio               *string            `json:"bio,omitempty"`
	ProfilePicture    []byte             `json:"profilePicture,omitempty"`
	DateOfBirth       *time.Time         `json:"dateOfBirth,omitempty"`
	SkillLevel        *models.SkillLevel `json:"skillLevel,omitempty"`
	PreferredPosition *models.Position   `json:"preferredPosition,omitempty"`
	City              *string            `json:"city,omitempty"`
	Country           *string            `json:"country,omitempty"`
}

// SessionService signs users in and out and manages the signed-in user's
// account.
type SessionService struct {
	Settings SessionSettings
	Verifier TokenVerifier
	Users    *UserService
	Log      logging.Logger
}

// SignIn verifies tok, remembers the identity and reports whether the user
// already has an account. A failed account lookup counts as no account.
func (ss *SessionService) SignIn(ctx context.Context, tok string) (SignInResult, error) {
	if ss.Verifier == nil {
		return SignInResult{}, fmt.Errorf("sign-in is not configured")
	}
	id, err := ss.Verifier.Verify(tok)
	if err != nil {
		return SignInResult{}, err
	}

	if err := ss.Settings.SetAppleUserID(ctx, id.UserID); err != nil {
		return SignInResult{}, err
	}
	if err := ss.Settings.SetSeenOnboarding(ctx, true); err != nil {
		return SignInResult{}, err
	}
	if err := ss.Settings.SetLoggedIn(ctx, true); err != nil {
		return SignInResult{}, err
	}
	if err := ss.Settings.SetEmail(ctx, id.Email); err != nil {
		return SignInResult{}, err
	}

	result := SignInResult{Identity: id}
	user, err := ss.Users.FetchUser(ctx, id.UserID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			logging.OrNoOp(ss.Log).Warnf("account lookup for %q failed: %v", id.UserID, err)
		}
		return result, nil
	}

	if err := ss.Settings.SetEmail(ctx, user.Email); err != nil {
		return SignInResult{}, err
	}
	result.AccountExists = true
	result.User = user
	return result, nil
}

// SaveAccount creates the signed-in user's account, or updates it if it
// already exists.
func (ss *SessionService) SaveAccount(ctx context.Context, in AccountInput) (*models.User, error) {
	userID, err := ss.Settings.AppleUserID(ctx)
	if err != nil {
		return nil, err
	}
	if userID == "" {
		return nil, ErrNotSignedIn
	}
	if in.Username == "" || in.FirstName == "" || in.LastName == "" {
		return nil, fmt.Errorf("%w: username, firstName and lastName are required", ErrInvalidInput)
	}

	taken, err := ss.Users.IsUsernameTaken(ctx, userID, in.Username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrUsernameTaken
	}

	email, err := ss.Settings.Email(ctx)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:                userID,
		Email:             email,
		PhoneNumber:       in.PhoneNumber,
		Username:          in.Username,
		FirstName:         in.FirstName,
		LastName:          in.LastName,
		Bio:               in.Bio,
		ProfilePicture:    in.ProfilePicture,
		DateOfBirth:       in.DateOfBirth,
		SkillLevel:        in.SkillLevel,
		PreferredPosition: in.PreferredPosition,
		City:              in.City,
		Country:           in.Country,
	}
	user.InUTC()

	existing, err := ss.Users.FetchUser(ctx, userID)
	switch {
	case err == nil:
		user.RecordID = existing.RecordID
		user.SignupDate = existing.SignupDate
		return ss.Users.UpdateUser(ctx, user)
	case errors.Is(err, ErrNotFound):
		signup := time.Now().UTC()
		user.SignupDate = &signup
		return ss.Users.CreateUser(ctx, user)
	default:
		return nil, err
	}
}

// SignOut forgets the signed-in identity.
func (ss *SessionService) SignOut(ctx context.Context) error {
	if err := ss.Settings.SetAppleUserID(ctx, ""); err != nil {
		return err
	}
	if err := ss.Settings.SetSeenOnboarding(ctx, false); err != nil {
		return err
	}
	return ss.Settings.SetLoggedIn(ctx, false)
}

func (ss *SessionService) CompleteOnboarding(ctx context.Context) error {
	return ss.Settings.SetSeenOnboarding(ctx, true)
}

// Status returns the current settings.
func (ss *SessionService) Status(ctx context.Context) (settings.Values, error) {
	return ss.Settings.Snapshot(ctx)
}
