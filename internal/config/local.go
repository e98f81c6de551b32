package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// LocalFile is an optional per-project settings file living next to the
// manifest. Values here override environment defaults.
const LocalFile = "indexerd.toml"

// localTOML is the raw indexerd.toml structure.
type localTOML struct {
	Indexer struct {
		Binary       string `toml:"binary"`
		LogFile      string `toml:"log_file"`
		Port         int    `toml:"port"`
		GraceTimeout string `toml:"grace_timeout"`
		SettleDelay  string `toml:"settle_delay"`
	} `toml:"indexer"`
	Server struct {
		RESTPort  int `toml:"rest_port"`
		ProxyPort int `toml:"proxy_port"`
	} `toml:"server"`
}

// applyLocalFile merges indexerd.toml into cfg when the file exists.
func applyLocalFile(cfg *RuntimeConfig) error {
	path := filepath.Join(cfg.ProjectRoot, LocalFile)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	var raw localTOML
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return fmt.Errorf("failed to parse %s: %w", LocalFile, err)
	}

	if raw.Indexer.Binary != "" {
		cfg.IndexerBinary = raw.Indexer.Binary
	}
	if raw.Indexer.LogFile != "" {
		cfg.IndexerLogFile = raw.Indexer.LogFile
		if !filepath.IsAbs(cfg.IndexerLogFile) {
			cfg.IndexerLogFile = filepath.Join(cfg.ProjectRoot, cfg.IndexerLogFile)
		}
	}
	if raw.Indexer.Port != 0 {
		cfg.IndexerPort = raw.Indexer.Port
	}
	if raw.Indexer.GraceTimeout != "" {
		d, err := time.ParseDuration(raw.Indexer.GraceTimeout)
		if err != nil {
			return fmt.Errorf("invalid grace_timeout in %s: %w", LocalFile, err)
		}
		cfg.GraceTimeout = d
	}
	if raw.Indexer.SettleDelay != "" {
		d, err := time.ParseDuration(raw.Indexer.SettleDelay)
		if err != nil {
			return fmt.Errorf("invalid settle_delay in %s: %w", LocalFile, err)
		}
		cfg.SettleDelay = d
	}
	if raw.Server.RESTPort != 0 {
		cfg.RESTPort = raw.Server.RESTPort
	}
	if raw.Server.ProxyPort != 0 {
		cfg.ProxyPort = raw.Server.ProxyPort
	}

	return nil
}
