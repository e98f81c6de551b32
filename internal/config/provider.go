package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/chainreport/indexerd/internal/domain"
)

// ManifestFile is the configuration document consumed by the indexer.
const ManifestFile = "rindexer.yaml"

// Provider builds the RuntimeConfig for Wire dependency injection.
func Provider(v *viper.Viper) (*RuntimeConfig, error) {
	projectRoot := v.GetString("project_root")
	if projectRoot == "" {
		var err error
		projectRoot, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve project root: %w", err)
		}
	}
	if !filepath.IsAbs(projectRoot) {
		abs, err := filepath.Abs(projectRoot)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve project root: %w", err)
		}
		projectRoot = abs
	}

	origins, err := parseAllowedOrigins(v.GetString("allowed_origins"))
	if err != nil {
		return nil, err
	}

	cfg := &RuntimeConfig{
		ProjectRoot:    projectRoot,
		ManifestPath:   filepath.Join(projectRoot, ManifestFile),
		AbisDir:        filepath.Join(projectRoot, "abis"),
		IndexerBinary:  v.GetString("indexer_binary"),
		IndexerLogFile: v.GetString("indexer_log_file"),
		IndexerPort:    v.GetInt("indexer_port"),
		GraceTimeout:   v.GetDuration("grace_timeout"),
		SettleDelay:    v.GetDuration("settle_delay"),
		RESTPort:       v.GetInt("rest_port"),
		ProxyPort:      v.GetInt("proxy_port"),
		AllowedOrigins: origins,
		Database: DatabaseConfig{
			Host:     v.GetString("postgres_host"),
			Port:     v.GetInt("postgres_port"),
			User:     v.GetString("postgres_user"),
			Password: v.GetString("postgres_password"),
			Name:     v.GetString("postgres_db"),
		},
		Debug: v.GetBool("debug"),
	}

	// Local indexerd.toml overrides, if present.
	if err := applyLocalFile(cfg); err != nil {
		return nil, err
	}

	if cfg.IndexerLogFile == "" {
		cfg.IndexerLogFile = filepath.Join(cfg.ProjectRoot, "indexer.log")
	}

	return cfg, nil
}

// parseAllowedOrigins enforces the contract that ALLOWED_ORIGINS is a
// JSON string array. Its absence or any other shape refuses startup.
func parseAllowedOrigins(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, &domain.ConfigError{Reason: "ALLOWED_ORIGINS is required"}
	}
	var origins []string
	if err := json.Unmarshal([]byte(raw), &origins); err != nil {
		return nil, &domain.ConfigError{Reason: "ALLOWED_ORIGINS must be a JSON array of strings", Err: err}
	}
	return origins, nil
}

// SetupViper creates and configures the viper instance backing Provider.
// Database and origin variables bind to their documented bare names; the
// rest live under the INDEXERD_ prefix.
func SetupViper() *viper.Viper {
	// .env is a convenience for local runs; absence is fine.
	for _, envFile := range []string{".env", ".env.local"} {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to load %s: %v\n", envFile, err)
			}
		}
	}

	v := viper.New()
	v.SetEnvPrefix("INDEXERD")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	// Documented variables keep their bare names.
	for _, key := range []string{
		"postgres_host", "postgres_port", "postgres_user",
		"postgres_password", "postgres_db", "allowed_origins",
		"rest_port", "proxy_port",
	} {
		_ = v.BindEnv(key, strings.ToUpper(key))
	}

	v.SetDefault("postgres_host", "localhost")
	v.SetDefault("postgres_port", 5432)
	v.SetDefault("rest_port", 8080)
	v.SetDefault("proxy_port", 8081)
	v.SetDefault("indexer_binary", "rindexer")
	v.SetDefault("indexer_port", 3001)
	v.SetDefault("grace_timeout", "5s")
	v.SetDefault("settle_delay", "1s")
	v.SetDefault("debug", false)

	return v
}
