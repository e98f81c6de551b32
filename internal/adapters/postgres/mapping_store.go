package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chainreport/indexerd/internal/domain"
)

// dbConn is the slice of pgxpool.Pool the store needs; tests substitute
// a scripted implementation.
type dbConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// MappingStore is the persistent relation from composite registration
// keys to generated indexer identifiers. Entries are created once and
// never reassigned or deleted.
type MappingStore struct {
	db dbConn
}

func NewMappingStore(pool *pgxpool.Pool) *MappingStore {
	return &MappingStore{db: pool}
}

// ResolveOrCreate returns the indexer ID for a composite key, minting
// and persisting one on first sight. The uniqueness constraint on
// name_uuid arbitrates races: the losing inserter re-reads and returns
// the winner's ID instead of failing the caller.
func (s *MappingStore) ResolveOrCreate(ctx context.Context, compositeKey string) (string, bool, error) {
	id, err := s.lookup(ctx, compositeKey)
	if err == nil {
		return id, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return "", false, &domain.StorageError{Op: "mapping lookup", Err: err}
	}

	fresh := newIndexerID()
	tag, err := s.db.Exec(ctx,
		`INSERT INTO contract_registry (name_uuid, indexer_id)
		 VALUES ($1, $2)
		 ON CONFLICT (name_uuid) DO NOTHING`,
		compositeKey, fresh)
	if err != nil {
		return "", false, &domain.StorageError{Op: "mapping insert", Err: err}
	}
	if tag.RowsAffected() == 1 {
		return fresh, true, nil
	}

	// Lost the race: another caller created the mapping first.
	id, err = s.lookup(ctx, compositeKey)
	if err != nil {
		return "", false, &domain.StorageError{Op: "mapping re-read", Err: err}
	}
	return id, false, nil
}

func (s *MappingStore) lookup(ctx context.Context, compositeKey string) (string, error) {
	var id string
	err := s.db.QueryRow(ctx,
		`SELECT indexer_id FROM contract_registry WHERE name_uuid = $1`,
		compositeKey).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

// newIndexerID mints a fixed-length identifier from a restricted
// alphabet: a leading letter plus 32 lowercase hex chars, safe to embed
// in filenames and Postgres schema identifiers.
func newIndexerID() string {
	return "c" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
