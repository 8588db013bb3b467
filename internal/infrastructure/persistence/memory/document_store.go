package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/hashicorp/go-memdb"

	"github.com/crewrelief/crewrelief/internal/application/ports"
)

const (
	documentsTable  = "documents"
	pkIndex         = "id"
	collectionIndex = "collection"
)

type record struct {
	Collection string
	ID         string
	Data       map[string]any
	CreateTime time.Time
	UpdateTime time.Time
}

func schema() *memdb.DBSchema {
	return &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			documentsTable: {
				Name: documentsTable,
				Indexes: map[string]*memdb.IndexSchema{
					pkIndex: {
						Name:   pkIndex,
						Unique: true,
						Indexer: &memdb.CompoundIndex{
							Indexes: []memdb.Indexer{
								&memdb.StringFieldIndex{Field: "Collection"},
								&memdb.StringFieldIndex{Field: "ID"},
							},
						},
					},
					collectionIndex: {
						Name:    collectionIndex,
						Indexer: &memdb.StringFieldIndex{Field: "Collection"},
					},
				},
			},
		},
	}
}

// DocumentStore is a ports.DocumentStore backed by go-memdb. Used in dev mode
// (no DATABASE_URL) and as the persistence double in tests.
type DocumentStore struct {
	db  *memdb.MemDB
	now func() time.Time
}

// NewDocumentStore creates an empty store.
func NewDocumentStore() (*DocumentStore, error) {
	db, err := memdb.NewMemDB(schema())
	if err != nil {
		return nil, fmt.Errorf("create memdb: %w", err)
	}
	return &DocumentStore{db: db, now: func() time.Time { return time.Now().UTC() }}, nil
}

// WithClock overrides the clock used for create/update times.
func (s *DocumentStore) WithClock(now func() time.Time) *DocumentStore {
	s.now = now
	return s
}

func (s *DocumentStore) Get(ctx context.Context, collection, id string) (*ports.Document, error) {
	txn := s.db.Txn(false)
	defer txn.Abort()
	raw, err := txn.First(documentsTable, pkIndex, collection, id)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, ports.ErrDocumentNotFound
	}
	return toDocument(raw.(*record)), nil
}

func (s *DocumentStore) Set(ctx context.Context, collection, id string, data map[string]any) error {
	if id == "" {
		return errors.New("document id is required")
	}
	txn := s.db.Txn(true)
	defer txn.Abort()
	now := s.now()
	created := now
	raw, err := txn.First(documentsTable, pkIndex, collection, id)
	if err != nil {
		return err
	}
	if raw != nil {
		created = raw.(*record).CreateTime
	}
	rec := &record{Collection: collection, ID: id, Data: normalize(data), CreateTime: created, UpdateTime: now}
	if err := txn.Insert(documentsTable, rec); err != nil {
		return err
	}
	txn.Commit()
	return nil
}

func (s *DocumentStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	txn := s.db.Txn(true)
	defer txn.Abort()
	raw, err := txn.First(documentsTable, pkIndex, collection, id)
	if err != nil {
		return err
	}
	if raw == nil {
		return ports.ErrDocumentNotFound
	}
	old := raw.(*record)
	merged := copyMap(old.Data)
	for k, v := range normalize(fields) {
		merged[k] = v
	}
	rec := &record{Collection: collection, ID: id, Data: merged, CreateTime: old.CreateTime, UpdateTime: s.now()}
	if err := txn.Insert(documentsTable, rec); err != nil {
		return err
	}
	txn.Commit()
	return nil
}

func (s *DocumentStore) Delete(ctx context.Context, collection, id string) error {
	txn := s.db.Txn(true)
	defer txn.Abort()
	if _, err := txn.DeleteAll(documentsTable, pkIndex, collection, id); err != nil {
		return err
	}
	txn.Commit()
	return nil
}

func (s *DocumentStore) Query(ctx context.Context, collection string, filters ...ports.Filter) ([]*ports.Document, error) {
	txn := s.db.Txn(false)
	defer txn.Abort()
	iter, err := txn.Get(documentsTable, collectionIndex, collection)
	if err != nil {
		return nil, err
	}
	want := make([]ports.Filter, len(filters))
	for i, f := range filters {
		want[i] = ports.Filter{Field: f.Field, Value: normalizeValue(f.Value)}
	}
	var out []*ports.Document
	for raw := iter.Next(); raw != nil; raw = iter.Next() {
		rec := raw.(*record)
		if matches(rec.Data, want) {
			out = append(out, toDocument(rec))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreateTime.Before(out[j].CreateTime) })
	return out, nil
}

func (s *DocumentStore) BatchDelete(ctx context.Context, collection string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	txn := s.db.Txn(true)
	defer txn.Abort()
	for _, id := range ids {
		if _, err := txn.DeleteAll(documentsTable, pkIndex, collection, id); err != nil {
			return err
		}
	}
	txn.Commit()
	return nil
}

func (s *DocumentStore) Ping(ctx context.Context) error { return nil }

func toDocument(r *record) *ports.Document {
	return &ports.Document{ID: r.ID, Data: copyMap(r.Data), CreateTime: r.CreateTime, UpdateTime: r.UpdateTime}
}

func matches(data map[string]any, filters []ports.Filter) bool {
	for _, f := range filters {
		v, ok := data[f.Field]
		if !ok || v != f.Value {
			return false
		}
	}
	return true
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// normalize mirrors what a JSON-backed store hands back: all numbers become float64.
func normalize(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case float32:
		return float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return n.String()
		}
		return f
	}
	return v
}

var _ ports.DocumentStore = (*DocumentStore)(nil)
