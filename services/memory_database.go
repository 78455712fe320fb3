package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"field_mates_server/models"
)

// MemoryDatabase is a Database kept in process memory. It is safe for
// concurrent use. Records are copied on the way in and out.
type MemoryDatabase struct {
	mu      sync.Mutex
	records map[models.RecordID]*models.Record
	now     func() time.Time
}

// NewMemoryDatabase returns an empty MemoryDatabase.
func NewMemoryDatabase() *MemoryDatabase {
	return &MemoryDatabase{
		records: map[models.RecordID]*models.Record{},
		now:     time.Now,
	}
}

// Put stores rec as-is, bypassing every check. It is meant for seeding.
func (m *MemoryDatabase) Put(rec *models.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[*rec.ID] = rec.Clone()
}

// Len returns the number of stored records.
func (m *MemoryDatabase) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

func (m *MemoryDatabase) CreateRecord(ctx context.Context, rec *models.Record) (*models.Record, error) {
	if err := checkRecordID(rec); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[*rec.ID]; ok {
		return nil, fmt.Errorf("record %s: %w", rec.ID, ErrAlreadyExists)
	}
	return m.store(rec), nil
}

func (m *MemoryDatabase) QueryRecords(ctx context.Context, recordType string, pred Predicate, limit int32) ([]QueryResult, error) {
	if pred == nil {
		pred = All()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, 0, len(m.records))
	for id := range m.records {
		if id.RecordType == recordType {
			names = append(names, id.Name)
		}
	}
	sort.Strings(names)

	var results []QueryResult
	for _, name := range names {
		if limit > 0 && int32(len(results)) >= limit {
			break
		}
		rec := m.records[models.RecordID{RecordType: recordType, Name: name}]
		if !pred.Matches(rec.Fields) {
			continue
		}
		results = append(results, QueryResult{Record: rec.Clone(), ID: *rec.ID})
	}
	return results, nil
}

func (m *MemoryDatabase) FetchRecord(ctx context.Context, id models.RecordID) (*models.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[id]
	if !ok {
		return nil, nil
	}
	return rec.Clone(), nil
}

func (m *MemoryDatabase) SaveRecord(ctx context.Context, rec *models.Record) (*models.Record, error) {
	if err := checkRecordID(rec); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store(rec), nil
}

func (m *MemoryDatabase) DeleteRecord(ctx context.Context, id models.RecordID) (models.RecordID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[id]; !ok {
		return models.RecordID{}, fmt.Errorf("record %s: %w", id, ErrNotFound)
	}
	delete(m.records, id)
	return id, nil
}

// store must be called with m.mu held.
func (m *MemoryDatabase) store(rec *models.Record) *models.Record {
	stored := rec.Clone()
	stored.ModifiedAt = m.now()
	m.records[*stored.ID] = stored
	return stored.Clone()
}

func checkRecordID(rec *models.Record) error {
	if rec == nil || rec.ID == nil || rec.ID.Name == "" {
		return fmt.Errorf("record has no identifier")
	}
	if rec.ID.RecordType != rec.Type {
		return fmt.Errorf("record of type %q has identifier of type %q", rec.Type, rec.ID.RecordType)
	}
	return nil
}
