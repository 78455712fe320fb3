// Package settings keeps the small set of session values the app remembers
// between launches: whether the user is signed in, whether onboarding was
// seen, and the identity the user signed in with.
package settings

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Setting names
const (
	KeyIsLoggedIn     = "isLoggedIn"
	KeySeenOnboarding = "seenOnboarding"
	KeyAppleUserID    = "appleUserID"
	KeyEmail          = "email"
)

// Setting is one stored name/value pair.
type Setting struct {
	Name  string `gorm:"primaryKey"`
	Value string
}

// Values is a snapshot of every setting.
type Values struct {
	IsLoggedIn     bool   `json:"isLoggedIn"`
	SeenOnboarding bool   `json:"seenOnboarding"`
	AppleUserID    string `json:"appleUserId,omitempty"`
	Email          string `json:"email,omitempty"`
}

// Store reads and writes settings in a SQL database.
type Store struct {
	db *gorm.DB
}

// Open opens (creating if needed) the SQLite database at path. ":memory:"
// gives a store that lives as long as the process.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open settings database: %w", err)
	}

	// every connection to ":memory:" is its own database
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying SQL DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	return New(db)
}

// New returns a Store using db, creating the settings table if it is missing.
func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&Setting{}); err != nil {
		return nil, fmt.Errorf("failed to migrate settings table: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) get(ctx context.Context, name string) (string, bool, error) {
	var setting Setting
	err := s.db.WithContext(ctx).Where("name = ?", name).Take(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read setting %q: %w", name, err)
	}
	return setting.Value, true, nil
}

func (s *Store) set(ctx context.Context, name, value string) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&Setting{Name: name, Value: value}).Error
	if err != nil {
		return fmt.Errorf("failed to write setting %q: %w", name, err)
	}
	return nil
}

func (s *Store) getBool(ctx context.Context, name string) (bool, error) {
	raw, ok, err := s.get(ctx, name)
	if err != nil || !ok {
		return false, err
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, nil
	}
	return b, nil
}

func (s *Store) IsLoggedIn(ctx context.Context) (bool, error) {
	return s.getBool(ctx, KeyIsLoggedIn)
}

func (s *Store) SetLoggedIn(ctx context.Context, v bool) error {
	return s.set(ctx, KeyIsLoggedIn, strconv.FormatBool(v))
}

func (s *Store) SetSeenOnboarding(ctx context.Context, v bool) error {
	return s.set(ctx, KeySeenOnboarding, strconv.FormatBool(v))
}

// AppleUserID returns the external id the user signed in with, or "" if
// there is none.
func (s *Store) AppleUserID(ctx context.Context) (string, error) {
	v, _, err := s.get(ctx, KeyAppleUserID)
	return v, err
}

func (s *Store) SetAppleUserID(ctx context.Context, id string) error {
	return s.set(ctx, KeyAppleUserID, id)
}

// Email returns the stored email, or "" if there is none.
func (s *Store) Email(ctx context.Context) (string, error) {
	v, _, err := s.get(ctx, KeyEmail)
	return v, err
}

func (s *Store) SetEmail(ctx context.Context, email string) error {
	return s.set(ctx, KeyEmail, email)
}

// Snapshot reads every setting at once.
func (s *Store) Snapshot(ctx context.Context) (Values, error) {
	var rows []Setting
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return Values{}, fmt.Errorf("failed to read settings: %w", err)
	}

	var v Values
	for _, row := range rows {
		switch row.Name {
		case KeyIsLoggedIn:
			v.IsLoggedIn, _ = strconv.ParseBool(row.Value)
		case KeySeenOnboarding:
			v.SeenOnboarding, _ = strconv.ParseBool(row.Value)
		case KeyAppleUserID:
			v.AppleUserID = row.Value
		case KeyEmail:
			v.Email = row.Value
		}
	}
	return v, nil
}
