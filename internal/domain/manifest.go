package domain

// MaxProjectNameLen bounds the manifest's top-level name. The name feeds
// Postgres schema identifiers, so it has to stay well under the 63-byte
// identifier limit even with an internal ID appended.
const MaxProjectNameLen = 50

// Manifest is the persisted configuration document consumed by the
// external indexer. indexerd owns all mutation of this document.
type Manifest struct {
	Name      string             `yaml:"name"`
	Storage   StorageConfig      `yaml:"storage"`
	Contracts []ManifestContract `yaml:"contracts"`
}

// StorageConfig mirrors the indexer's storage block. Postgres must be
// enabled or the service refuses to start.
type StorageConfig struct {
	Postgres PostgresStorage `yaml:"postgres"`
}

type PostgresStorage struct {
	Enabled bool `yaml:"enabled"`
}

// ManifestContract is one configuration entry, keyed by the internal
// identifier. The document holds at most one entry per identifier.
type ManifestContract struct {
	Name    string          `yaml:"name"`
	Details []NetworkDetail `yaml:"details"`
	Abi     string          `yaml:"abi"`
}

// NetworkDetail pins a contract to a network, address and start block.
type NetworkDetail struct {
	Network    string `yaml:"network"`
	Address    string `yaml:"address"`
	StartBlock string `yaml:"start_block"`
}
