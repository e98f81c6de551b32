package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chainreport/indexerd/internal/domain"
)

// EventReader serves the templated read path over the event tables the
// indexer populates, one schema per registered contract.
type EventReader struct {
	pool *pgxpool.Pool
}

func NewEventReader(pool *pgxpool.Pool) *EventReader {
	return &EventReader{pool: pool}
}

// LatestEvents returns up to limit rows of schema.table, newest blocks
// first. Identifiers are sanitized through pgx; the caller has already
// restricted them to bare lowercase identifiers.
func (r *EventReader) LatestEvents(ctx context.Context, schema, table string, limit int) ([]domain.Event, error) {
	ident := pgx.Identifier{schema, table}.Sanitize()
	query := fmt.Sprintf(`SELECT * FROM %s ORDER BY block_number DESC LIMIT $1`, ident)

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, &domain.StorageError{Op: "event query", Err: err}
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	events := make([]domain.Event, 0, limit)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, &domain.StorageError{Op: "event scan", Err: err}
		}
		ev := make(domain.Event, len(fields))
		for i, f := range fields {
			ev[string(f.Name)] = values[i]
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.StorageError{Op: "event query", Err: err}
	}
	return events, nil
}
