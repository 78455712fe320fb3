package services

import (
	"context"
	"sync"

	"field_mates_server/logging"
	"field_mates_server/models"
)

// DefaultMaxResults bounds fetch-all queries when no limit is configured.
const DefaultMaxResults = 100

// ChangeNotifier is told about every record the RecordStore successfully
// creates, updates or deletes.
type ChangeNotifier interface {
	NotifyChange(ctx context.Context, change models.Change) error
}

// RecordStore is the typed client over a Database. It is created once and
// handed to every service that needs persistence.
type RecordStore struct {
	db         Database
	log        logging.Logger
	maxResults int32

	mu       sync.RWMutex
	notifier ChangeNotifier
}

// NewRecordStore returns a RecordStore over db. maxResults caps every
// fetch-all; zero or less uses DefaultMaxResults.
func NewRecordStore(db Database, log logging.Logger, maxResults int32) *RecordStore {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	return &RecordStore{
		db:         db,
		log:        logging.OrNoOp(log),
		maxResults: maxResults,
	}
}

// SetChangeNotifier replaces the notifier told about changes. nil disables
// notification.
func (s *RecordStore) SetChangeNotifier(n ChangeNotifier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifier = n
}

func (s *RecordStore) notify(ctx context.Context, kind models.ChangeKind, id models.RecordID) {
	s.mu.RLock()
	n := s.notifier
	s.mu.RUnlock()
	if n == nil {
		return
	}
	if err := n.NotifyChange(ctx, models.Change{Kind: kind, RecordID: id}); err != nil {
		s.log.Warnf("change notification for %s (%s) failed: %v", id, kind, err)
	}
}

// Create stores entity as a new record named after its logical id and
// returns the entity decoded from what was stored.
func Create[T any, PT models.Decodable[T]](ctx context.Context, s *RecordStore, entity PT) (*T, error) {
	recordType := entity.RecordType()
	op := "create " + recordType
	if entity.GetID() == "" {
		return nil, newError(op, ErrMissingIdentifier)
	}

	rec := entity.Encode(nil)
	rec.Type = recordType
	rec.ID = &models.RecordID{RecordType: recordType, Name: entity.GetID()}

	created, err := s.db.CreateRecord(ctx, rec)
	if err != nil {
		return nil, storeError(op, err)
	}
	s.notify(ctx, models.ChangeCreated, *created.ID)

	out, ok := models.Decode[T, PT](created)
	if !ok {
		return nil, newError(op, ErrDecodeFailure)
	}
	return out, nil
}

// FetchAll returns the records of T's type matching pred, or every record of
// the type if pred is nil. At most the store's maxResults records are returned; records
// that cannot be loaded or decoded are logged and left out.
func FetchAll[T any, PT models.Decodable[T]](ctx context.Context, s *RecordStore, pred Predicate) ([]T, error) {
	recordType := models.RecordTypeOf[T, PT]()
	if pred == nil {
		pred = All()
	}

	results, err := s.db.QueryRecords(ctx, recordType, pred, s.maxResults)
	if err != nil {
		return nil, storeError("fetch all "+recordType, err)
	}

	out := make([]T, 0, len(results))
	for _, r := range results {
		if r.Err != nil {
			s.log.Warnf("skipping %s record %q: %v", recordType, r.ID.Name, r.Err)
			continue
		}
		v, ok := models.Decode[T, PT](r.Record)
		if !ok {
			s.log.Warnf("skipping %s record %q: %v", recordType, r.ID.Name, ErrDecodeFailure)
			continue
		}
		out = append(out, *v)
	}
	return out, nil
}

// Fetch returns the entity stored under id.
func Fetch[T any, PT models.Decodable[T]](ctx context.Context, s *RecordStore, id models.RecordID) (*T, error) {
	op := "fetch " + id.String()
	rec, err := s.db.FetchRecord(ctx, id)
	if err != nil {
		return nil, storeError(op, err)
	}
	if rec == nil {
		return nil, newError(op, ErrNotFound)
	}
	out, ok := models.Decode[T, PT](rec)
	if !ok {
		return nil, newError(op, ErrDecodeFailure)
	}
	return out, nil
}

// Update writes entity over its stored record and returns the entity decoded
// from the result. The stored record is fetched first so that fields the
// entity does not know about are kept. The last write wins.
func Update[T any, PT models.Decodable[T]](ctx context.Context, s *RecordStore, entity PT) (*T, error) {
	op := "update " + entity.RecordType()
	id := entity.GetRecordID()
	if id == nil {
		return nil, newError(op, ErrMissingIdentifier)
	}

	existing, err := s.db.FetchRecord(ctx, *id)
	if err != nil {
		return nil, storeError(op, err)
	}
	if existing == nil {
		return nil, newError(op, ErrNotFound)
	}

	saved, err := s.db.SaveRecord(ctx, entity.Encode(existing))
	if err != nil {
		return nil, storeError(op, err)
	}
	s.notify(ctx, models.ChangeUpdated, *saved.ID)

	out, ok := models.Decode[T, PT](saved)
	if !ok {
		return nil, newError(op, ErrDecodeFailure)
	}
	return out, nil
}

// Delete removes the stored record of entity and returns its identifier.
func Delete(ctx context.Context, s *RecordStore, entity models.RecordConvertible) (models.RecordID, error) {
	op := "delete " + entity.RecordType()
	id := entity.GetRecordID()
	if id == nil {
		return models.RecordID{}, newError(op, ErrMissingIdentifier)
	}

	deleted, err := s.db.DeleteRecord(ctx, *id)
	if err != nil {
		return models.RecordID{}, storeError(op, err)
	}
	s.notify(ctx, models.ChangeDeleted, deleted)
	return deleted, nil
}
