/*
Package config loads process configuration for the server and the CLI.

SOURCES (later wins):
  1. Defaults below
  2. An optional .env file (never overrides variables already set)
  3. MIRAGE_* environment variables
  4. Command-line flags, applied by each cmd/ main

VARIABLES:
  MIRAGE_PORT             HTTP port (8080)
  MIRAGE_DB               SQLite path, ":memory:" for none (mirage.db)
  MIRAGE_EDITION          default edition name (classic)
  MIRAGE_EDITION_FILE     extra edition file registered at startup
  MIRAGE_RETENTION        archive age before purge, Go duration; 0 keeps forever (720h)
  MIRAGE_RETENTION_EVERY  purge interval (1h)
  MIRAGE_CORS_ORIGINS     comma-separated allowed origins (http://localhost:3000)
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Prefix is prepended to every variable name.
const Prefix = "MIRAGE_"

// Config holds process settings.
type Config struct {
	Port           int
	DBPath         string
	DefaultEdition string
	EditionFile    string
	Retention      time.Duration
	RetentionEvery time.Duration
	CORSOrigins    []string
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Port:           8080,
		DBPath:         "mirage.db",
		DefaultEdition: "classic",
		Retention:      30 * 24 * time.Hour,
		RetentionEvery: time.Hour,
		CORSOrigins:    []string{"http://localhost:3000"},
	}
}

// Load reads the given .env files (".env" when none is named), then the
// environment. A missing .env file is not an error.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from a variable lookup such as os.LookupEnv.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	get := func(name string) (string, bool) {
		v, ok := lookup(Prefix + name)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get("PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return Config{}, fmt.Errorf("%sPORT: invalid port %q", Prefix, v)
		}
		cfg.Port = port
	}
	if v, ok := get("DB"); ok {
		cfg.DBPath = v
	}
	if v, ok := get("EDITION"); ok {
		cfg.DefaultEdition = v
	}
	if v, ok := get("EDITION_FILE"); ok {
		cfg.EditionFile = v
	}
	var err error
	if v, ok := get("RETENTION"); ok {
		if cfg.Retention, err = parseDuration("RETENTION", v); err != nil {
			return Config{}, err
		}
	}
	if v, ok := get("RETENTION_EVERY"); ok {
		if cfg.RetentionEvery, err = parseDuration("RETENTION_EVERY", v); err != nil {
			return Config{}, err
		}
		if cfg.RetentionEvery == 0 {
			return Config{}, fmt.Errorf("%sRETENTION_EVERY: must be positive", Prefix)
		}
	}
	if v, ok := get("CORS_ORIGINS"); ok {
		cfg.CORSOrigins = nil
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
			}
		}
	}
	return cfg, nil
}

func parseDuration(name, v string) (time.Duration, error) {
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s%s: %w", Prefix, name, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s%s: must not be negative", Prefix, name)
	}
	return d, nil
}

// Addr returns the listen address for the configured port.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
