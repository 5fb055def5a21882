package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment overrides. Secrets such as the database DSN are expected to
// come from here rather than furrow.yaml.
const (
	EnvLogLevel      = "FURROW_LOG_LEVEL"
	EnvLogFormat     = "FURROW_LOG_FORMAT"
	EnvRedisAddress  = "FURROW_REDIS_ADDR"
	EnvRedisPassword = "FURROW_REDIS_PASSWORD"
	EnvRedisDB       = "FURROW_REDIS_DB"
	EnvDatabaseDSN   = "FURROW_DATABASE_DSN"
)

// LoadDotEnv loads <repoRoot>/.env into the process environment without
// overriding variables that are already set. A missing file is not an error.
func LoadDotEnv(repoRoot string) error {
	path := filepath.Join(repoRoot, ".env")
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays environment variables onto cfg.
func ApplyEnv(cfg *Config) error {
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv(EnvRedisAddress); v != "" {
		cfg.Cache.Address = v
	}
	if v := os.Getenv(EnvRedisPassword); v != "" {
		cfg.Cache.Password = v
	}
	if v := os.Getenv(EnvRedisDB); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvRedisDB, err)
		}
		cfg.Cache.DB = db
	}
	if v := os.Getenv(EnvDatabaseDSN); v != "" {
		cfg.Database.DSN = v
	}
	return nil
}
