package postgres

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crewrelief/crewrelief/internal/application/ports"
)

const (
	getDocumentSQL = `SELECT data, create_time, update_time FROM documents WHERE collection = $1 AND id = $2`
	setDocumentSQL = `
INSERT INTO documents (collection, id, data, create_time, update_time)
VALUES ($1, $2, $3::jsonb, NOW(), NOW())
ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data, update_time = NOW()`
	updateDocumentSQL      = `UPDATE documents SET data = data || $3::jsonb, update_time = NOW() WHERE collection = $1 AND id = $2`
	deleteDocumentSQL      = `DELETE FROM documents WHERE collection = $1 AND id = $2`
	queryDocumentsSQL      = `SELECT id, data, create_time, update_time FROM documents WHERE collection = $1 AND data @> $2::jsonb ORDER BY create_time, id`
	batchDeleteDocumentSQL = `DELETE FROM documents WHERE collection = $1 AND id = ANY($2)`
)

// DocumentStore implements ports.DocumentStore on a single JSONB table.
// Equality queries use JSONB containment so the GIN index serves them.
type DocumentStore struct {
	pool *pgxpool.Pool
}

func NewDocumentStore(pool *pgxpool.Pool) *DocumentStore {
	return &DocumentStore{pool: pool}
}

func (s *DocumentStore) Get(ctx context.Context, collection, id string) (*ports.Document, error) {
	var (
		raw                []byte
		created, updated time.Time
	)
	err := s.pool.QueryRow(ctx, getDocumentSQL, collection, id).Scan(&raw, &created, &updated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ports.ErrDocumentNotFound
		}
		return nil, err
	}
	data, err := decodeData(raw)
	if err != nil {
		return nil, err
	}
	return &ports.Document{ID: id, Data: data, CreateTime: created, UpdateTime: updated}, nil
}

func (s *DocumentStore) Set(ctx context.Context, collection, id string, data map[string]any) error {
	if id == "" {
		return errors.New("document id is required")
	}
	body, err := json.Marshal(data)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, setDocumentSQL, collection, id, body)
	return err
}

func (s *DocumentStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	body, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, updateDocumentSQL, collection, id, body)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ports.ErrDocumentNotFound
	}
	return nil
}

func (s *DocumentStore) Delete(ctx context.Context, collection, id string) error {
	_, err := s.pool.Exec(ctx, deleteDocumentSQL, collection, id)
	return err
}

func (s *DocumentStore) Query(ctx context.Context, collection string, filters ...ports.Filter) ([]*ports.Document, error) {
	match := make(map[string]any, len(filters))
	for _, f := range filters {
		match[f.Field] = f.Value
	}
	body, err := json.Marshal(match)
	if err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, queryDocumentsSQL, collection, body)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*ports.Document
	for rows.Next() {
		var (
			id               string
			raw              []byte
			created, updated time.Time
		)
		if err := rows.Scan(&id, &raw, &created, &updated); err != nil {
			return nil, err
		}
		data, err := decodeData(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, &ports.Document{ID: id, Data: data, CreateTime: created, UpdateTime: updated})
	}
	return out, rows.Err()
}

// BatchDelete removes all ids in one statement, so the delete set is atomic.
func (s *DocumentStore) BatchDelete(ctx context.Context, collection string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.pool.Exec(ctx, batchDeleteDocumentSQL, collection, ids)
	return err
}

func (s *DocumentStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func decodeData(raw []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	data := map[string]any{}
	if err := dec.Decode(&data); err != nil {
		return nil, err
	}
	return data, nil
}

var _ ports.DocumentStore = (*DocumentStore)(nil)
