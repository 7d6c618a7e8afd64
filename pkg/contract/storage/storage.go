package storage

import (
	"context"
	"fmt"
	"log/slog"

	"mercator-hq/clausewatch/pkg/contract"
)

// Backend names accepted by Config.Backend.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Writer is a contract store that also accepts writes. The memory and
// SQLite backends implement it; the file backend is read-only.
type Writer interface {
	contract.Store

	// Put inserts a contract or replaces the one with the same ID.
	Put(ctx context.Context, c *contract.Contract) error
}

// Config selects and configures a contract store backend.
type Config struct {
	// Backend is one of "memory", "file" or "sqlite".
	// Default: "memory"
	Backend string

	// Path is the contract document file or directory for the file
	// backend. For the memory backend it is optional and seeds the store.
	Path string

	// SQLite configures the sqlite backend.
	SQLite *SQLiteConfig
}

// New creates the contract store described by cfg.
func New(cfg Config, logger *slog.Logger) (contract.Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Backend {
	case BackendMemory, "":
		var seed []*contract.Contract
		if cfg.Path != "" {
			cs, err := LoadContracts(cfg.Path)
			if err != nil {
				return nil, err
			}
			seed = cs
		}
		return NewMemoryStore(seed)

	case BackendFile:
		if cfg.Path == "" {
			return nil, fmt.Errorf("file backend requires a path")
		}
		return NewFileStore(cfg.Path, logger)

	case BackendSQLite:
		sc := cfg.SQLite
		if sc == nil {
			sc = DefaultSQLiteConfig()
		}
		return NewSQLiteStore(sc, logger)

	default:
		return nil, fmt.Errorf("unknown contract storage backend %q", cfg.Backend)
	}
}

// Import copies every contract from src into dst and returns the number
// copied.
func Import(ctx context.Context, dst Writer, src []*contract.Contract) (int, error) {
	n := 0
	for _, c := range src {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		if err := dst.Put(ctx, c); err != nil {
			return n, fmt.Errorf("import contract %s: %w", c.ID, err)
		}
		n++
	}
	return n, nil
}
