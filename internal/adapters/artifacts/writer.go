// Package artifacts persists the per-identifier ABI files referenced by
// manifest entries.
package artifacts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chainreport/indexerd/internal/config"
	"github.com/chainreport/indexerd/internal/domain"
)

// Writer writes ABI artifacts into the project's abis directory.
type Writer struct {
	dir string
}

func NewWriter(cfg *config.RuntimeConfig) *Writer {
	return &Writer{dir: cfg.AbisDir}
}

// WriteAll persists every artifact to its deterministic path,
// overwriting existing files. Writes are independent: a failure surfaces
// as an error but records already written stay on disk.
func (w *Writer) WriteAll(ctx context.Context, records []domain.AbiArtifact) error {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return &domain.StorageError{Op: "abi directory create", Err: err}
	}

	for _, rec := range records {
		path := filepath.Join(w.dir, domain.AbiFileName(rec.IndexerID))
		if err := os.WriteFile(path, rec.JSON, 0644); err != nil {
			return &domain.StorageError{
				Op:  fmt.Sprintf("abi write for %s", rec.IndexerID),
				Err: err,
			}
		}
	}
	return nil
}
