package services

import (
	"context"

	"field_mates_server/models"
)

// Database is the remote record store the RecordStore talks to. Errors it
// returns are raw; the RecordStore classifies them.
type Database interface {
	// CreateRecord stores a new record under rec.ID. It fails with an error
	// wrapping ErrAlreadyExists if a record with that id is already stored.
	CreateRecord(ctx context.Context, rec *models.Record) (*models.Record, error)

	// QueryRecords returns up to limit records of recordType that match pred.
	// A record that could not be loaded is reported through its QueryResult
	// without failing the whole query.
	QueryRecords(ctx context.Context, recordType string, pred Predicate, limit int32) ([]QueryResult, error)

	// FetchRecord returns the record stored under id, or nil and no error if
	// there is none.
	FetchRecord(ctx context.Context, id models.RecordID) (*models.Record, error)

	// SaveRecord stores rec, replacing whatever was stored under rec.ID.
	SaveRecord(ctx context.Context, rec *models.Record) (*models.Record, error)

	// DeleteRecord removes the record stored under id. It fails with an error
	// wrapping ErrNotFound if there is none.
	DeleteRecord(ctx context.Context, id models.RecordID) (models.RecordID, error)
}

// QueryResult is one entry of a query: either a record or the error that kept
// it from being loaded.
type QueryResult struct {
	Record *models.Record
	ID     models.RecordID
	Err    error
}
