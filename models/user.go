package models

import (
	"os"
	"time"

	"field_mates_server/utils"

	"github.com/google/uuid"
)

// User record fields
const (
	UserFieldEmail             = "email"
	UserFieldPhoneNumber       = "phoneNumber"
	UserFieldUsername          = "username"
	UserFieldFirstName         = "firstName"
	UserFieldLastName          = "lastName"
	UserFieldBio               = "bio"
	UserFieldProfilePicture    = "profilePicture"
	UserFieldDateOfBirth       = "dateOfBirth"
	UserFieldSkillLevel        = "skillLevel"
	UserFieldPreferredPosition = "preferredPosition"
	UserFieldSignupDate        = "signupDate"
	UserFieldCity              = "city"
	UserFieldCountry           = "country"
)

// User is a player profile.
type User struct {
	ID                string      `json:"id"`
	RecordID          *RecordID   `json:"recordId,omitempty"`
	Email             string      `json:"email"`
	PhoneNumber       *string     `json:"phoneNumber,omitempty"`
	Username          string      `json:"username"`
	FirstName         string      `json:"firstName"`
	LastName          string      `json:"lastName"`
	Bio               *string     `json:"bio,omitempty"`
	ProfilePicture    []byte      `json:"profilePicture,omitempty"` // JPEG bytes
	DateOfBirth       *time.Time  `json:"dateOfBirth,omitempty"`
	SkillLevel        *SkillLevel `json:"skillLevel,omitempty"`
	PreferredPosition *Position   `json:"preferredPosition,omitempty"`
	SignupDate        *time.Time  `json:"signupDate,omitempty"`
	City              *string     `json:"city,omitempty"`
	Country           *string     `json:"country,omitempty"`
}

func (u *User) RecordType() string     { return UserRecordType }
func (u *User) GetID() string          { return u.ID }
func (u *User) GetRecordID() *RecordID { return u.RecordID }

// Decode fills u from rec. email, username, firstName and lastName are
// required.
func (u *User) Decode(rec *Record) bool {
	f := rec.Fields
	email, ok := utils.ExtractString(f, UserFieldEmail)
	if !ok {
		return false
	}
	firstName, ok := utils.ExtractString(f, UserFieldFirstName)
	if !ok {
		return false
	}
	lastName, ok := utils.ExtractString(f, UserFieldLastName)
	if !ok {
		return false
	}
	username, ok := utils.ExtractString(f, UserFieldUsername)
	if !ok {
		return false
	}

	decoded := User{
		ID:          logicalID(rec, uuid.NewString),
		RecordID:    recordIDOf(rec),
		Email:       email,
		PhoneNumber: utils.ExtractOptionalString(f, UserFieldPhoneNumber),
		Username:    username,
		FirstName:   firstName,
		LastName:    lastName,
		Bio:         utils.ExtractOptionalString(f, UserFieldBio),
		DateOfBirth: utils.ExtractOptionalTime(f, UserFieldDateOfBirth),
		SignupDate:  utils.ExtractOptionalTime(f, UserFieldSignupDate),
		City:        utils.ExtractOptionalString(f, UserFieldCity),
		Country:     utils.ExtractOptionalString(f, UserFieldCountry),
	}

	if raw, ok := utils.ExtractString(f, UserFieldSkillLevel); ok {
		level := ParseSkillLevel(raw)
		decoded.SkillLevel = &level
	}
	if raw, ok := utils.ExtractString(f, UserFieldPreferredPosition); ok {
		if p, ok := ParsePosition(raw); ok {
			decoded.PreferredPosition = &p
		}
	}

	if asset := rec.Asset(UserFieldProfilePicture); asset != nil && asset.FilePath != "" {
		if data, err := os.ReadFile(asset.FilePath); err == nil {
			decoded.ProfilePicture = data
		}
	}

	*u = decoded
	return true
}

// Encode writes u into rec, or into a new User record when rec is nil.
func (u *User) Encode(rec *Record) *Record {
	if rec == nil {
		rec = NewRecord(UserRecordType)
	}

	rec.Set(UUIDField, utils.StringValue(u.ID))
	rec.Set(UserFieldEmail, utils.StringValue(u.Email))
	rec.Set(UserFieldFirstName, utils.StringValue(u.FirstName))
	rec.Set(UserFieldLastName, utils.StringValue(u.LastName))
	rec.Set(UserFieldUsername, utils.StringValue(u.Username))
	rec.Set(UserFieldPhoneNumber, utils.OptionalStringValue(u.PhoneNumber))
	rec.Set(UserFieldBio, utils.OptionalStringValue(u.Bio))
	rec.Set(UserFieldCity, utils.OptionalStringValue(u.City))
	rec.Set(UserFieldCountry, utils.OptionalStringValue(u.Country))
	rec.Set(UserFieldDateOfBirth, utils.OptionalTimeValue(u.DateOfBirth))
	rec.Set(UserFieldSignupDate, utils.OptionalTimeValue(u.SignupDate))

	if u.SkillLevel != nil {
		rec.Set(UserFieldSkillLevel, utils.StringValue(FormatSkillLevel(*u.SkillLevel)))
	} else {
		rec.Clear(UserFieldSkillLevel)
	}

	if u.PreferredPosition != nil {
		rec.Set(UserFieldPreferredPosition, utils.StringValue(string(*u.PreferredPosition)))
	} else {
		rec.Clear(UserFieldPreferredPosition)
	}

	if u.ProfilePicture != nil {
		// a picture that cannot be staged on disk is dropped from the record
		path, err := utils.WriteTempFile(u.ProfilePicture, "jpg")
		if err != nil {
			rec.Clear(UserFieldProfilePicture)
		} else {
			rec.SetAsset(UserFieldProfilePicture, &Asset{FilePath: path})
		}
	} else {
		rec.Clear(UserFieldProfilePicture)
	}

	return rec
}

// InUTC moves the user's timestamps into UTC, the location they decode with.
func (u *User) InUTC() {
	u.DateOfBirth = utcPtr(u.DateOfBirth)
	u.SignupDate = utcPtr(u.SignupDate)
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	utc := t.UTC()
	return &utc
}

// SkillString is the display text of the skill level.
func (u *User) SkillString() string {
	if u.SkillLevel == nil {
		return NotSpecified
	}
	return u.SkillLevel.String()
}

// PositionString is the display text of the preferred position.
func (u *User) PositionString() string {
	if u.PreferredPosition == nil {
		return NotSpecified
	}
	return string(*u.PreferredPosition)
}
