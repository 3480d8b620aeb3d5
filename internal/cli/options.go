package cli

import (
	"fmt"
	"strconv"
	"strings"
)

// Environment variables consulted when the matching flag is not set.
const (
	EnvDir           = "AUTHFLOW_DIR"
	EnvStore         = "AUTHFLOW_STORE"
	EnvRedisAddr     = "AUTHFLOW_REDIS_ADDR"
	EnvRedisPassword = "AUTHFLOW_REDIS_PASSWORD"
	EnvRedisDB       = "AUTHFLOW_REDIS_DB"
	EnvLogFormat     = "AUTHFLOW_LOG_FORMAT"
	// EnvEncryptionKey seals persisted runs with AES-256-GCM. It has no flag
	// so the key never shows up in process listings.
	EnvEncryptionKey = "AUTHFLOW_ENCRYPTION_KEY"
)

// Store kinds accepted by --store.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// Definition formats accepted by --format.
const (
	FormatAuto = "auto"
	FormatLoam = "loam"
	FormatYAML = "yaml"
)

// Options contains the configuration shared by every command.
type Options struct {
	// Dir holds the automaton definitions. Empty serves the built-in catalog.
	Dir string
	// Format selects the definition loader for Dir.
	Format string
	// Store selects where runs are persisted.
	Store string
	// StorePath overrides the directory of the file store.
	StorePath     string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	EncryptionKey string
	Strict        bool
	Debug         bool
	LogFormat     string
}

// ApplyEnv fills unset fields from AUTHFLOW_* variables. Flags win over the
// environment, so callers pass only the fields the user left untouched.
func (o *Options) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvDir); ok && o.Dir == "" {
		o.Dir = v
	}
	if v, ok := lookup(EnvStore); ok && o.Store == "" {
		o.Store = v
	}
	if v, ok := lookup(EnvRedisAddr); ok && o.RedisAddr == "" {
		o.RedisAddr = v
	}
	if v, ok := lookup(EnvRedisPassword); ok && o.RedisPassword == "" {
		o.RedisPassword = v
	}
	if v, ok := lookup(EnvRedisDB); ok && o.RedisDB == 0 {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvRedisDB, v, err)
		}
		o.RedisDB = db
	}
	if v, ok := lookup(EnvLogFormat); ok && o.LogFormat == "" {
		o.LogFormat = v
	}
	if v, ok := lookup(EnvEncryptionKey); ok && o.EncryptionKey == "" {
		o.EncryptionKey = v
	}
	return nil
}

// Normalize applies defaults and rejects unknown enum values.
func (o *Options) Normalize() error {
	o.Store = strings.ToLower(strings.TrimSpace(o.Store))
	if o.Store == "" {
		o.Store = StoreFile
	}
	switch o.Store {
	case StoreMemory, StoreFile, StoreRedis:
	default:
		return fmt.Errorf("unknown store %q (want memory, file or redis)", o.Store)
	}

	o.Format = strings.ToLower(strings.TrimSpace(o.Format))
	if o.Format == "" {
		o.Format = FormatAuto
	}
	switch o.Format {
	case FormatAuto, FormatLoam, FormatYAML:
	default:
		return fmt.Errorf("unknown format %q (want auto, loam or yaml)", o.Format)
	}

	if o.Store == StoreRedis && o.RedisAddr == "" {
		o.RedisAddr = "localhost:6379"
	}
	return nil
}
