package services

import (
	"context"
	"sync"
	"testing"

	"field_mates_server/models"
)

// countingDatabase wraps a Database and counts the calls made to it.
type countingDatabase struct {
	Database

	mu    sync.Mutex
	calls map[string]int
}

func newCountingDatabase(db Database) *countingDatabase {
	return &countingDatabase{Database: db, calls: map[string]int{}}
}

func (c *countingDatabase) count(op string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls[op]++
}

func (c *countingDatabase) total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, v := range c.calls {
		n += v
	}
	return n
}

func (c *countingDatabase) CreateRecord(ctx context.Context, rec *models.Record) (*models.Record, error) {
	c.count("create")
	return c.Database.CreateRecord(ctx, rec)
}

func (c *countingDatabase) QueryRecords(ctx context.Context, recordType string, pred Predicate, limit int32) ([]QueryResult, error) {
	c.count("query")
	return c.Database.QueryRecords(ctx, recordType, pred, limit)
}

func (c *countingDatabase) FetchRecord(ctx context.Context, id models.RecordID) (*models.Record, error) {
	c.count("fetch")
	return c.Database.FetchRecord(ctx, id)
}

func (c *countingDatabase) SaveRecord(ctx context.Context, rec *models.Record) (*models.Record, error) {
	c.count("save")
	return c.Database.SaveRecord(ctx, rec)
}

func (c *countingDatabase) DeleteRecord(ctx context.Context, id models.RecordID) (models.RecordID, error) {
	c.count("delete")
	return c.Database.DeleteRecord(ctx, id)
}

// recordingNotifier keeps every change it is told about.
type recordingNotifier struct {
	mu      sync.Mutex
	changes []models.Change
	err     error
}

func (n *recordingNotifier) NotifyChange(ctx context.Context, change models.Change) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changes = append(n.changes, change)
	return n.err
}

// recordingPusher keeps every notification pushed to it.
type recordingPusher struct {
	mu   sync.Mutex
	sent []models.Notification
	err  error
}

func (p *recordingPusher) Push(ctx context.Context, n models.Notification) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, n)
	return p.err
}

func (p *recordingPusher) notifications() []models.Notification {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.Notification(nil), p.sent...)
}

func newTestStore(t *testing.T) (*RecordStore, *MemoryDatabase) {
	t.Helper()
	mem := NewMemoryDatabase()
	return NewRecordStore(mem, nil, 0), mem
}

func strPtr(s string) *string {
	return &s
}

func testUser(id, username string) *models.User {
	return &models.User{
		ID:        id,
		Email:     username + "@example.com",
		Username:  username,
		FirstName: "First " + username,
		LastName:  "Last " + username,
	}
}
