package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/authflow"
	"github.com/aretw0/authflow/internal/adapters/file"
	"github.com/aretw0/authflow/pkg/adapters/memory"
	redisAdapter "github.com/aretw0/authflow/pkg/adapters/redis"
	"github.com/aretw0/authflow/pkg/domain"
	"github.com/aretw0/authflow/pkg/observability"
	"github.com/aretw0/authflow/pkg/persistence/middleware"
	"github.com/aretw0/authflow/pkg/ports"
)

// redisKeyPrefix namespaces run and lock keys shared by CLI and server replicas.
const redisKeyPrefix = "authflow:"

// createEngine initializes an authflow Engine with standard CLI conventions.
// Extra hooks (metrics) are composed with the debug logging hooks.
// The returned cleanup releases store connections and is never nil.
func createEngine(opts Options, logger *slog.Logger, hooks ...domain.LifecycleHooks) (*authflow.Engine, func() error, error) {
	engineOpts := []authflow.Option{authflow.WithLogger(logger)}
	if opts.Debug {
		hooks = append(hooks, observability.LoggingHooks(logger))
	}
	if len(hooks) > 0 {
		engineOpts = append(engineOpts, authflow.WithLifecycleHooks(domain.ComposeHooks(hooks...)))
	}
	if opts.Strict {
		engineOpts = append(engineOpts, authflow.WithStrictAlphabet())
	}

	store, locker, cleanup := newStore(opts)
	if opts.EncryptionKey != "" {
		key, err := middleware.ParseKey(opts.EncryptionKey)
		if err != nil {
			_ = cleanup()
			return nil, func() error { return nil }, fmt.Errorf("invalid %s: %w", EnvEncryptionKey, err)
		}
		store = middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})(store)
	}
	engineOpts = append(engineOpts, authflow.WithStore(store))
	if locker != nil {
		engineOpts = append(engineOpts, authflow.WithLocker(locker))
	}

	repoPath := opts.Dir
	if repoPath != "" {
		loader, err := definitionLoader(opts)
		if err != nil {
			_ = cleanup()
			return nil, func() error { return nil }, err
		}
		if loader != nil {
			engineOpts = append(engineOpts, authflow.WithLoader(loader))
		}
	}

	engine, err := authflow.New(repoPath, engineOpts...)
	if err != nil {
		_ = cleanup()
		return nil, func() error { return nil }, fmt.Errorf("error initializing engine: %w", err)
	}
	return engine, cleanup, nil
}

// newStore builds the run store selected by opts. Redis stores come with a
// locker sharing their connection, so replicas never tick one run concurrently.
func newStore(opts Options) (ports.RunStore, ports.DistributedLocker, func() error) {
	switch opts.Store {
	case StoreMemory:
		return memory.NewStore(), nil, func() error { return nil }
	case StoreRedis:
		store := redisAdapter.New(opts.RedisAddr, opts.RedisPassword, opts.RedisDB,
			redisAdapter.WithPrefix(redisKeyPrefix+"run:"))
		return store, redisAdapter.NewLocker(store.Client(), redisKeyPrefix), store.Close
	default:
		return file.NewStore(runsPath(opts)), nil, func() error { return nil }
	}
}

// definitionLoader returns the loader for a YAML directory, or nil to let the
// engine open a Loam repository.
func definitionLoader(opts Options) (ports.DefinitionLoader, error) {
	info, err := os.Stat(opts.Dir)
	if err != nil {
		return nil, fmt.Errorf("invalid definitions directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("invalid definitions directory: %s is not a directory", opts.Dir)
	}

	format := opts.Format
	if format == FormatAuto || format == "" {
		format = detectFormat(opts.Dir)
	}
	if format == FormatYAML {
		return file.NewLoader(opts.Dir), nil
	}
	return nil, nil
}

// detectFormat picks Loam when the directory holds any Markdown document and
// the plain YAML loader when it only holds YAML files.
func detectFormat(dir string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return FormatLoam
	}
	hasYAML := false
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".md":
			return FormatLoam
		case ".yaml", ".yml":
			hasYAML = true
		}
	}
	if hasYAML {
		return FormatYAML
	}
	return FormatLoam
}

// runsPath is where the file store keeps runs: <dir>/.authflow/runs, or the
// working directory when serving the catalog.
func runsPath(opts Options) string {
	if opts.StorePath != "" {
		return opts.StorePath
	}
	base := opts.Dir
	if base == "" {
		base = "."
	}
	return filepath.Join(base, ".authflow", "runs")
}
