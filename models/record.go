package models

import (
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// RecordID identifies a stored record: the record type plus the record name
// chosen when the record was first created.
type RecordID struct {
	RecordType string `json:"recordType"`
	Name       string `json:"recordName"`
}

func (id RecordID) String() string {
	return id.RecordType + "/" + id.Name
}

// Asset is a binary field kept outside the record itself. FilePath points at a
// local copy of the bytes; Key is the remote object key once uploaded.
type Asset struct {
	Key      string
	FilePath string
}

// Record is a schemaless container of named, tagged values. Binary assets are
// held in Assets rather than Fields; a name is present in at most one of the
// two.
type Record struct {
	Type       string
	ID         *RecordID
	Fields     map[string]types.AttributeValue
	Assets     map[string]*Asset
	ModifiedAt time.Time
}

// NewRecord returns an empty record of the given type with no identifier.
func NewRecord(recordType string) *Record {
	return &Record{
		Type:   recordType,
		Fields: map[string]types.AttributeValue{},
		Assets: map[string]*Asset{},
	}
}

// Set stores v under name. A nil v clears the field.
func (r *Record) Set(name string, v types.AttributeValue) {
	r.Clear(name)
	if v == nil {
		return
	}
	if r.Fields == nil {
		r.Fields = map[string]types.AttributeValue{}
	}
	r.Fields[name] = v
}

// Get returns the value stored under name, if any.
func (r *Record) Get(name string) (types.AttributeValue, bool) {
	v, ok := r.Fields[name]
	return v, ok
}

// SetAsset stores a under name. A nil a clears the field.
func (r *Record) SetAsset(name string, a *Asset) {
	r.Clear(name)
	if a == nil {
		return
	}
	if r.Assets == nil {
		r.Assets = map[string]*Asset{}
	}
	r.Assets[name] = a
}

// Asset returns the asset stored under name or nil.
func (r *Record) Asset(name string) *Asset {
	return r.Assets[name]
}

// Clear removes name from the record.
func (r *Record) Clear(name string) {
	delete(r.Fields, name)
	delete(r.Assets, name)
}

// Has reports whether the record holds a value or asset under name.
func (r *Record) Has(name string) bool {
	if _, ok := r.Fields[name]; ok {
		return true
	}
	_, ok := r.Assets[name]
	return ok
}

// Clone returns a copy of the record that can be modified without affecting r.
// Attribute values themselves are shared; they are treated as immutable.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := &Record{
		Type:       r.Type,
		Fields:     make(map[string]types.AttributeValue, len(r.Fields)),
		Assets:     make(map[string]*Asset, len(r.Assets)),
		ModifiedAt: r.ModifiedAt,
	}
	if r.ID != nil {
		id := *r.ID
		c.ID = &id
	}
	for k, v := range r.Fields {
		c.Fields[k] = v
	}
	for k, v := range r.Assets {
		a := *v
		c.Assets[k] = &a
	}
	return c
}
