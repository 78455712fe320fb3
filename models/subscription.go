package models

import (
	"time"

	"field_mates_server/utils"
)

// ChangeKind is the kind of mutation applied to a record.
type ChangeKind string

const (
	ChangeCreated ChangeKind = "create"
	ChangeUpdated ChangeKind = "update"
	ChangeDeleted ChangeKind = "delete"
)

// Change describes a successful mutation of one record.
type Change struct {
	Kind     ChangeKind
	RecordID RecordID
}

// UserChangesSubscriptionID names the subscription that watches every User
// record.
const UserChangesSubscriptionID = "UserChanges"

// Subscription record fields
const (
	SubscriptionFieldRecordType       = "recordType"
	SubscriptionFieldFiresOn          = "firesOn"
	SubscriptionFieldContentAvailable = "contentAvailable"
)

// Subscription asks for a notification whenever a record of WatchedType sees
// one of the FiresOn changes.
type Subscription struct {
	ID          string       `json:"id"`
	RecordID    *RecordID    `json:"recordId,omitempty"`
	WatchedType string       `json:"recordType"`
	FiresOn     []ChangeKind `json:"firesOn"`

	// ContentAvailable marks notifications as silent background fetch
	// requests rather than user-visible alerts.
	ContentAvailable bool `json:"contentAvailable"`
}

// UserChangesSubscription watches creation, update and deletion of users.
func UserChangesSubscription() Subscription {
	return Subscription{
		ID:               UserChangesSubscriptionID,
		WatchedType:      UserRecordType,
		FiresOn:          []ChangeKind{ChangeCreated, ChangeUpdated, ChangeDeleted},
		ContentAvailable: true,
	}
}

// Fires reports whether s wants a notification for c.
func (s *Subscription) Fires(c Change) bool {
	if s.WatchedType != c.RecordID.RecordType {
		return false
	}
	for _, k := range s.FiresOn {
		if k == c.Kind {
			return true
		}
	}
	return false
}

func (s *Subscription) RecordType() string     { return SubscriptionRecordType }
func (s *Subscription) GetID() string          { return s.ID }
func (s *Subscription) GetRecordID() *RecordID { return s.RecordID }

func (s *Subscription) Decode(rec *Record) bool {
	recordType, ok := utils.ExtractString(rec.Fields, SubscriptionFieldRecordType)
	if !ok {
		return false
	}
	rawKinds, ok := utils.ExtractStringList(rec.Fields, SubscriptionFieldFiresOn)
	if !ok {
		return false
	}
	contentAvailable, _ := utils.ExtractBool(rec.Fields, SubscriptionFieldContentAvailable)

	id := logicalID(rec, func() string { return "" })
	if id == "" {
		return false
	}

	kinds := make([]ChangeKind, 0, len(rawKinds))
	for _, k := range rawKinds {
		kinds = append(kinds, ChangeKind(k))
	}

	*s = Subscription{
		ID:               id,
		RecordID:         recordIDOf(rec),
		WatchedType:      recordType,
		FiresOn:          kinds,
		ContentAvailable: contentAvailable,
	}
	return true
}

func (s *Subscription) Encode(rec *Record) *Record {
	if rec == nil {
		rec = NewRecord(SubscriptionRecordType)
	}
	kinds := make([]string, 0, len(s.FiresOn))
	for _, k := range s.FiresOn {
		kinds = append(kinds, string(k))
	}
	rec.Set(UUIDField, utils.StringValue(s.ID))
	rec.Set(SubscriptionFieldRecordType, utils.StringValue(s.WatchedType))
	rec.Set(SubscriptionFieldFiresOn, utils.StringListValue(kinds))
	rec.Set(SubscriptionFieldContentAvailable, utils.BoolValue(s.ContentAvailable))
	return rec
}

// Notification is delivered to clients when a subscription fires.
type Notification struct {
	SubscriptionID   string     `json:"subscriptionId"`
	RecordType       string     `json:"recordType"`
	RecordName       string     `json:"recordName"`
	Change           ChangeKind `json:"change"`
	ContentAvailable bool       `json:"contentAvailable"`
	SentAt           time.Time  `json:"sentAt"`
}
