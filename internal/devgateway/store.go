// Package devgateway is a local stand-in for the managed data backend,
// implementing its public contract: list with equality filters and
// continuation tokens, get by id, field-patch updates, and a snapshot change
// feed. Records live in Postgres as JSON documents.
package devgateway

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS records (
	entity     text        NOT NULL,
	id         text        NOT NULL,
	data       jsonb       NOT NULL,
	updated_at timestamptz NOT NULL DEFAULT now(),
	PRIMARY KEY (entity, id)
);
`

const (
	defaultLimit = 100
	maxLimit     = 500
)

var ErrNotFound = errors.New("record not found")

type Store struct {
	DB *pgxpool.Pool
}

func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.DB.Exec(ctx, schema)
	return err
}

// List returns one page ordered by id. The continuation token is the last id
// of the previous page; a token comes back only while the page is full.
func (s *Store) List(ctx context.Context, entity string, filter map[string]string, limit int, token string) ([]json.RawMessage, string, error) {
	if limit <= 0 || limit > maxLimit {
		limit = defaultLimit
	}
	after, err := decodeToken(token)
	if err != nil {
		return nil, "", err
	}

	query := `SELECT id, data FROM records WHERE entity = $1 AND id > $2`
	args := []any{entity, after}
	for field, value := range filter {
		args = append(args, field, value)
		query += fmt.Sprintf(" AND data->>$%d = $%d", len(args)-1, len(args))
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY id LIMIT $%d", len(args))

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()

	var out []json.RawMessage
	lastID := ""
	for rows.Next() {
		var id string
		var data json.RawMessage
		if err := rows.Scan(&id, &data); err != nil {
			return nil, "", err
		}
		out = append(out, data)
		lastID = id
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}

	next := ""
	if len(out) == limit {
		next = encodeToken(lastID)
	}
	return out, next, nil
}

// ListAll walks every page; the relay uses it to build snapshots.
func (s *Store) ListAll(ctx context.Context, entity string) ([]json.RawMessage, error) {
	var all []json.RawMessage
	token := ""
	for {
		page, next, err := s.List(ctx, entity, nil, defaultLimit, token)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if next == "" {
			return all, nil
		}
		token = next
	}
}

// Get returns nil without error when the record is absent; "not found" is
// not an error condition in the contract.
func (s *Store) Get(ctx context.Context, entity, id string) (json.RawMessage, error) {
	var data json.RawMessage
	err := s.DB.QueryRow(ctx,
		`SELECT data FROM records WHERE entity = $1 AND id = $2`, entity, id).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Update merges the patch into the stored document.
func (s *Store) Update(ctx context.Context, entity, id string, patch map[string]any) (json.RawMessage, error) {
	b, err := json.Marshal(patch)
	if err != nil {
		return nil, err
	}
	var data json.RawMessage
	err = s.DB.QueryRow(ctx, `
		UPDATE records SET data = data || $3, updated_at = now()
		WHERE entity = $1 AND id = $2
		RETURNING data`, entity, id, b).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Create inserts a full document. The admin frontend never creates records
// (checkout lives elsewhere); this exists so a local sandbox can be seeded
// and exercised end to end.
func (s *Store) Create(ctx context.Context, entity, id string, data map[string]any) (json.RawMessage, error) {
	data["id"] = id
	b, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var out json.RawMessage
	err = s.DB.QueryRow(ctx, `
		INSERT INTO records (entity, id, data) VALUES ($1, $2, $3)
		RETURNING data`, entity, id, b).Scan(&out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func encodeToken(id string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(id))
}

func decodeToken(token string) (string, error) {
	if token == "" {
		return "", nil
	}
	b, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return "", fmt.Errorf("bad continuation token: %w", err)
	}
	return string(b), nil
}
