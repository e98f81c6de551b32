package usecase

import (
	"context"

	"github.com/chainreport/indexerd/internal/domain"
)

// MappingStore durably maps a composite registration key to its internal
// identifier. ResolveOrCreate returns the stable identifier for the key,
// creating one on first sight; created reports whether this call minted
// it. Concurrent calls for one unseen key must converge on a single
// identifier.
type MappingStore interface {
	ResolveOrCreate(ctx context.Context, compositeKey string) (id string, created bool, err error)
}

// ManifestStore owns the persisted configuration document. Merge is a
// serialized full read-modify-write: entries replace existing ones with
// the same name and append otherwise, so the document never carries two
// entries for one identifier.
type ManifestStore interface {
	ProjectName(ctx context.Context) (string, error)
	Contracts(ctx context.Context) ([]domain.ManifestContract, error)
	Merge(ctx context.Context, entries []domain.ManifestContract) error
}

// ArtifactStore persists per-identifier ABI files under the project's
// abis directory. Writes are idempotent overwrites.
type ArtifactStore interface {
	WriteAll(ctx context.Context, artifacts []domain.AbiArtifact) error
}

// IndexerSupervisor owns the external indexer process handle.
type IndexerSupervisor interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	// Restart performs graceful-then-forced termination of any held
	// process, waits for exit plus a settle delay, then starts fresh.
	// Overlapping restarts serialize.
	Restart(ctx context.Context) error
	Running() bool
}

// EventReader serves templated reads against the per-contract event
// schemas the indexer writes.
type EventReader interface {
	LatestEvents(ctx context.Context, schema, table string, limit int) ([]domain.Event, error)
}
