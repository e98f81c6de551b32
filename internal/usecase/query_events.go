package usecase

import (
	"context"
	"fmt"
	"regexp"

	"github.com/chainreport/indexerd/internal/domain"
)

// identRe bounds event table names to bare lowercase identifiers; the
// schema and table are interpolated into SQL, so nothing else may pass.
var identRe = regexp.MustCompile(`^[a-z][a-z0-9_]{0,62}$`)

const defaultEventLimit = 100

// QueryEvents serves the read path: latest indexed events for one
// registered contract, from the schema the indexer writes for it.
type QueryEvents struct {
	manifest ManifestStore
	reader   EventReader
}

// NewQueryEvents creates the event query use case.
func NewQueryEvents(manifest ManifestStore, reader EventReader) *QueryEvents {
	return &QueryEvents{manifest: manifest, reader: reader}
}

// QueryEventsParams identifies the contract and event table to read.
type QueryEventsParams struct {
	IndexerID string
	Event     string
	Limit     int
}

// Execute resolves the contract's schema from the cached project name
// and returns the latest rows of the requested event table.
func (u *QueryEvents) Execute(ctx context.Context, params QueryEventsParams) ([]domain.Event, error) {
	if !identRe.MatchString(params.Event) {
		return nil, &domain.ValidationError{Field: "event", Reason: "must be a lowercase identifier"}
	}
	if !identRe.MatchString(params.IndexerID) {
		return nil, &domain.ValidationError{Field: "id", Reason: "must be a lowercase identifier"}
	}

	limit := params.Limit
	if limit <= 0 || limit > 1000 {
		limit = defaultEventLimit
	}

	project, err := u.manifest.ProjectName(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read project name: %w", err)
	}

	schema := domain.SchemaName(project, params.IndexerID)
	return u.reader.LatestEvents(ctx, schema, params.Event, limit)
}
