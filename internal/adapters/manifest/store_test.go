package manifest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainreport/indexerd/internal/config"
	"github.com/chainreport/indexerd/internal/domain"
)

const validManifest = `name: myproject
storage:
  postgres:
    enabled: true
contracts: []
`

func writeManifest(t *testing.T, dir, content string) *config.RuntimeConfig {
	t.Helper()
	path := filepath.Join(dir, "rindexer.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return &config.RuntimeConfig{ProjectRoot: dir, ManifestPath: path}
}

func entry(id, network string) domain.ManifestContract {
	return domain.ManifestContract{
		Name: id,
		Details: []domain.NetworkDetail{{
			Network:    network,
			Address:    "0x" + strings.Repeat("a", 40),
			StartBlock: "0",
		}},
		Abi: "./abis/" + id + ".abi.json",
	}
}

func TestNewStore_MissingManifest(t *testing.T) {
	cfg := &config.RuntimeConfig{ManifestPath: filepath.Join(t.TempDir(), "rindexer.yaml")}
	_, err := NewStore(cfg)
	require.Error(t, err)
	var cfgErr *domain.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestNewStore_RefusesInvalidManifest(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
	}{
		{"empty name", "name: \"\"\nstorage:\n  postgres:\n    enabled: true\n"},
		{"postgres disabled", "name: myproject\nstorage:\n  postgres:\n    enabled: false\n"},
		{"name too long", "name: " + strings.Repeat("x", 51) + "\nstorage:\n  postgres:\n    enabled: true\n"},
		{"not yaml", "{{{{"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := writeManifest(t, t.TempDir(), tt.manifest)
			_, err := NewStore(cfg)
			require.Error(t, err)
			var cfgErr *domain.ConfigError
			assert.ErrorAs(t, err, &cfgErr)
		})
	}
}

func TestMerge_InsertAndReplace(t *testing.T) {
	ctx := context.Background()
	cfg := writeManifest(t, t.TempDir(), validManifest)
	store, err := NewStore(cfg)
	require.NoError(t, err)

	require.NoError(t, store.Merge(ctx, []domain.ManifestContract{entry("c1", "eth"), entry("c2", "eth")}))

	contracts, err := store.Contracts(ctx)
	require.NoError(t, err)
	require.Len(t, contracts, 2)

	// Re-merging c1 replaces it in place, never duplicates it.
	require.NoError(t, store.Merge(ctx, []domain.ManifestContract{entry("c1", "polygon")}))

	contracts, err = store.Contracts(ctx)
	require.NoError(t, err)
	require.Len(t, contracts, 2)
	assert.Equal(t, "c1", contracts[0].Name)
	assert.Equal(t, "polygon", contracts[0].Details[0].Network)
	assert.Equal(t, "c2", contracts[1].Name)
}

func TestMerge_RepeatedMergesKeepOneEntryPerID(t *testing.T) {
	ctx := context.Background()
	cfg := writeManifest(t, t.TempDir(), validManifest)
	store, err := NewStore(cfg)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Merge(ctx, []domain.ManifestContract{entry("c1", "eth")}))
	}

	contracts, err := store.Contracts(ctx)
	require.NoError(t, err)
	assert.Len(t, contracts, 1)
}

func TestMerge_PreservesTopLevelMetadata(t *testing.T) {
	ctx := context.Background()
	cfg := writeManifest(t, t.TempDir(), validManifest)
	store, err := NewStore(cfg)
	require.NoError(t, err)

	require.NoError(t, store.Merge(ctx, []domain.ManifestContract{entry("c1", "eth")}))

	name, err := store.ProjectName(ctx)
	require.NoError(t, err)
	assert.Equal(t, "myproject", name)
}

func TestProjectName_CacheInvalidatedByMerge(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	cfg := writeManifest(t, dir, validManifest)
	store, err := NewStore(cfg)
	require.NoError(t, err)

	name, err := store.ProjectName(ctx)
	require.NoError(t, err)
	assert.Equal(t, "myproject", name)

	// An out-of-band rename is not observed while the cache holds.
	writeManifest(t, dir, strings.Replace(validManifest, "myproject", "renamed", 1))
	name, err = store.ProjectName(ctx)
	require.NoError(t, err)
	assert.Equal(t, "myproject", name)

	// A merge writes the document and drops the cache.
	require.NoError(t, store.Merge(ctx, []domain.ManifestContract{entry("c1", "eth")}))
	name, err = store.ProjectName(ctx)
	require.NoError(t, err)
	assert.Equal(t, "renamed", name)
}

func TestMerge_ConcurrentMergesLoseNothing(t *testing.T) {
	ctx := context.Background()
	cfg := writeManifest(t, t.TempDir(), validManifest)
	store, err := NewStore(cfg)
	require.NoError(t, err)

	done := make(chan error, 10)
	for i := 0; i < 10; i++ {
		id := string(rune('a' + i))
		go func() {
			done <- store.Merge(ctx, []domain.ManifestContract{entry("c_"+id, "eth")})
		}()
	}
	for i := 0; i < 10; i++ {
		require.NoError(t, <-done)
	}

	contracts, err := store.Contracts(ctx)
	require.NoError(t, err)
	assert.Len(t, contracts, 10)
}
