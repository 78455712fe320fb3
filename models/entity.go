package models

import "field_mates_server/utils"

// RecordConvertible is implemented by every persisted model type.
type RecordConvertible interface {
	// RecordType is the constant record type name of the model.
	RecordType() string

	// GetID returns the logical identifier assigned by the caller. It is
	// stored in the record under the "uuid" field.
	GetID() string

	// GetRecordID returns the store identifier, or nil if the entity has not
	// been persisted yet.
	GetRecordID() *RecordID

	// Encode writes every known field into rec, creating a new record when
	// rec is nil, and clears optional fields that are absent locally.
	// Timestamps are stored as UTC instants, so a decoded entity equals the
	// encoded one only once its times are in UTC.
	Encode(rec *Record) *Record
}

// Decodable is the pointer form of a RecordConvertible model that can be
// filled from a record. Decode reports false, leaving the receiver unchanged,
// if a required field is missing or has the wrong type.
type Decodable[T any] interface {
	*T
	RecordConvertible
	Decode(rec *Record) bool
}

// Decode builds a T from rec.
func Decode[T any, PT Decodable[T]](rec *Record) (*T, bool) {
	if rec == nil {
		return nil, false
	}
	var v T
	if !PT(&v).Decode(rec) {
		return nil, false
	}
	return &v, true
}

// RecordTypeOf returns the record type of T without needing a value.
func RecordTypeOf[T any, PT Decodable[T]]() string {
	var v T
	return PT(&v).RecordType()
}

// UUIDField is the record field that carries an entity's logical id.
const UUIDField = "uuid"

// logicalID resolves the logical id of a decoded record. Records missing the
// uuid field fall back to their record name, then to newID.
func logicalID(rec *Record, newID func() string) string {
	if s, ok := utils.ExtractString(rec.Fields, UUIDField); ok {
		return s
	}
	if rec.ID != nil && rec.ID.Name != "" {
		return rec.ID.Name
	}
	return newID()
}

func recordIDOf(rec *Record) *RecordID {
	if rec.ID == nil {
		return nil
	}
	id := *rec.ID
	return &id
}
