// Package manifest owns the indexer's YAML configuration document. All
// mutation goes through Store.Merge, which serializes read-modify-write
// cycles so concurrent batches cannot drop each other's entries.
package manifest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	gocache "github.com/patrickmn/go-cache"
	"gopkg.in/yaml.v3"

	"github.com/chainreport/indexerd/internal/config"
	"github.com/chainreport/indexerd/internal/domain"
)

const projectNameKey = "project_name"

// Store reads and writes the manifest file.
type Store struct {
	path  string
	mu    sync.Mutex
	cache *gocache.Cache
}

// NewStore opens the manifest and validates it. An unusable document is
// a ConfigError: the daemon must not start against it.
func NewStore(cfg *config.RuntimeConfig) (*Store, error) {
	s := &Store{
		path:  cfg.ManifestPath,
		cache: gocache.New(gocache.NoExpiration, 0),
	}

	m, err := s.load()
	if err != nil {
		return nil, err
	}
	if err := validate(m); err != nil {
		return nil, err
	}

	return s, nil
}

// validate enforces the startup contract on the document.
func validate(m *domain.Manifest) error {
	if m.Name == "" {
		return &domain.ConfigError{Reason: "manifest name is empty"}
	}
	if len(m.Name) > domain.MaxProjectNameLen {
		return &domain.ConfigError{
			Reason: fmt.Sprintf("manifest name exceeds %d characters", domain.MaxProjectNameLen),
		}
	}
	if !m.Storage.Postgres.Enabled {
		return &domain.ConfigError{Reason: "postgres storage must be enabled in the manifest"}
	}
	return nil
}

func (s *Store) load() (*domain.Manifest, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &domain.ConfigError{Reason: fmt.Sprintf("manifest not found at %s", s.path), Err: err}
		}
		return nil, &domain.StorageError{Op: "manifest read", Err: err}
	}

	var m domain.Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, &domain.ConfigError{Reason: "manifest does not parse as YAML", Err: err}
	}
	return &m, nil
}

// save marshals the whole document and replaces the file atomically.
func (s *Store) save(m *domain.Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return &domain.StorageError{Op: "manifest marshal", Err: err}
	}

	// Write to temp file first, then atomic rename.
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return &domain.StorageError{Op: "manifest write", Err: err}
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return &domain.StorageError{Op: "manifest rename", Err: err}
	}
	return nil
}

// ProjectName returns the manifest's top-level name, read lazily once
// and cached until the next merge invalidates it.
func (s *Store) ProjectName(ctx context.Context) (string, error) {
	if v, ok := s.cache.Get(projectNameKey); ok {
		return v.(string), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.load()
	if err != nil {
		return "", err
	}
	s.cache.Set(projectNameKey, m.Name, gocache.NoExpiration)
	return m.Name, nil
}

// Contracts returns a copy of the document's entries.
func (s *Store) Contracts(ctx context.Context) ([]domain.ManifestContract, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.load()
	if err != nil {
		return nil, err
	}
	out := make([]domain.ManifestContract, len(m.Contracts))
	copy(out, m.Contracts)
	return out, nil
}

// Merge overlays entries onto the persisted document by name: replace if
// present, append if absent. The whole cycle holds the store mutex, and
// the result never carries two entries for one identifier.
func (s *Store) Merge(ctx context.Context, entries []domain.ManifestContract) error {
	if len(entries) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.load()
	if err != nil {
		// The document passed startup validation; if it has vanished
		// since, rebuild it rather than losing the batch.
		var cfgErr *domain.ConfigError
		if name, ok := s.cache.Get(projectNameKey); ok && errors.As(err, &cfgErr) {
			m = &domain.Manifest{
				Name:    name.(string),
				Storage: domain.StorageConfig{Postgres: domain.PostgresStorage{Enabled: true}},
			}
		} else {
			return err
		}
	}

	index := make(map[string]int, len(m.Contracts))
	for i, c := range m.Contracts {
		index[c.Name] = i
	}

	for _, e := range entries {
		if i, ok := index[e.Name]; ok {
			m.Contracts[i] = e
		} else {
			index[e.Name] = len(m.Contracts)
			m.Contracts = append(m.Contracts, e)
		}
	}

	if err := s.save(m); err != nil {
		return err
	}

	// Readers must never observe stale project metadata after a merge.
	s.cache.Delete(projectNameKey)
	return nil
}
