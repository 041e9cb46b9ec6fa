package criterion

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"merx/internal/criteria"
	"merx/pkg/domain"
	"merx/pkg/platform/tx"
)

// Schema is the table this store expects. EnsureSchema applies it;
// production deployments run it through their migration tooling
// instead.
const Schema = `
CREATE TABLE IF NOT EXISTS criteria (
    id           UUID PRIMARY KEY,
    owner_kind   TEXT NOT NULL,
    owner_id     TEXT NOT NULL,
    position     INT  NOT NULL,
    content_type TEXT NOT NULL,
    operator     TEXT NOT NULL,
    value        DOUBLE PRECISION NOT NULL DEFAULT 0,
    refs         JSONB,
    compositions JSONB
);
CREATE INDEX IF NOT EXISTS criteria_owner_idx ON criteria (owner_kind, owner_id, position);
`

// PostgresStore persists criteria in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed criterion store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the criteria table when it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("ensure criteria schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListForOwner(ctx context.Context, owner domain.OwnerRef) ([]criteria.Criterion, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, position, content_type, operator, value, refs, compositions
		FROM criteria
		WHERE owner_kind = $1 AND owner_id = $2
		ORDER BY position`,
		string(owner.Kind), owner.ID)
	if err != nil {
		return nil, fmt.Errorf("list criteria: %w", err)
	}
	defer rows.Close()

	var set []criteria.Criterion
	for rows.Next() {
		var (
			c            criteria.Criterion
			rawID        string
			refs         []byte
			compositions []byte
		)
		if err := rows.Scan(&rawID, &c.Position, &c.ContentType, &c.Operator, &c.Value, &refs, &compositions); err != nil {
			return nil, fmt.Errorf("scan criterion: %w", err)
		}
		c.ID, err = uuid.Parse(rawID)
		if err != nil {
			return nil, fmt.Errorf("parse criterion id %q: %w", rawID, err)
		}
		c.Owner = owner
		if len(refs) > 0 {
			if err := json.Unmarshal(refs, &c.Refs); err != nil {
				return nil, fmt.Errorf("decode criterion refs: %w", err)
			}
		}
		if len(compositions) > 0 {
			if err := json.Unmarshal(compositions, &c.Compositions); err != nil {
				return nil, fmt.Errorf("decode criterion compositions: %w", err)
			}
		}
		set = append(set, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list criteria: %w", err)
	}
	return set, nil
}

// executor is the subset of *sql.DB and *sql.Tx the write paths use.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// ReplaceForOwner swaps the owner's criteria set atomically: the
// previous set is deleted and the new one inserted with its
// positions. When the context carries a caller transaction (a shop
// deleting a discount together with its criteria), the swap joins it;
// otherwise the store opens its own.
func (s *PostgresStore) ReplaceForOwner(ctx context.Context, owner domain.OwnerRef, set []criteria.Criterion) error {
	if ambient, ok := tx.From(ctx); ok {
		return replaceOn(ctx, ambient, owner, set)
	}

	own, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace criteria: %w", err)
	}
	defer own.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if err := replaceOn(ctx, own, owner, set); err != nil {
		return err
	}
	if err := own.Commit(); err != nil {
		return fmt.Errorf("commit replace criteria: %w", err)
	}
	return nil
}

func replaceOn(ctx context.Context, exec executor, owner domain.OwnerRef, set []criteria.Criterion) error {
	if _, err := exec.ExecContext(ctx,
		`DELETE FROM criteria WHERE owner_kind = $1 AND owner_id = $2`,
		string(owner.Kind), owner.ID); err != nil {
		return fmt.Errorf("delete previous criteria: %w", err)
	}

	for _, c := range set {
		refs, compositions, err := encodeValues(c)
		if err != nil {
			return err
		}
		if _, err := exec.ExecContext(ctx, `
			INSERT INTO criteria (id, owner_kind, owner_id, position, content_type, operator, value, refs, compositions)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			c.ID.String(), string(owner.Kind), owner.ID, c.Position,
			c.ContentType, string(c.Operator), c.Value, refs, compositions); err != nil {
			return fmt.Errorf("insert criterion %s: %w", c.ID, err)
		}
	}
	return nil
}

func (s *PostgresStore) DeleteForOwner(ctx context.Context, owner domain.OwnerRef) error {
	var exec executor = s.db
	if ambient, ok := tx.From(ctx); ok {
		exec = ambient
	}
	if _, err := exec.ExecContext(ctx,
		`DELETE FROM criteria WHERE owner_kind = $1 AND owner_id = $2`,
		string(owner.Kind), owner.ID); err != nil {
		return fmt.Errorf("delete criteria: %w", err)
	}
	return nil
}

func encodeValues(c criteria.Criterion) (refs, compositions []byte, err error) {
	if len(c.Refs) > 0 {
		refs, err = json.Marshal(c.Refs)
		if err != nil {
			return nil, nil, fmt.Errorf("encode criterion refs: %w", err)
		}
	}
	if len(c.Compositions) > 0 {
		compositions, err = json.Marshal(c.Compositions)
		if err != nil {
			return nil, nil, fmt.Errorf("encode criterion compositions: %w", err)
		}
	}
	return refs, compositions, nil
}
