// Package storage provides contract.Store backends.
//
// Three backends are available:
//
//   - MemoryStore keeps contracts in process and hands out deep copies.
//   - FileStore reads YAML or JSON contract documents once at startup.
//   - SQLiteStore persists contracts and clauses in a SQLite database,
//     using either the pure Go modernc.org/sqlite driver ("sqlite") or
//     github.com/mattn/go-sqlite3 ("sqlite3").
//
// All backends order Recent results newest DateAdded first with ties
// broken by ascending ID, and return an empty clause list for unknown
// contract IDs.
//
// # Usage
//
//	store, err := storage.New(storage.Config{
//	    Backend: storage.BackendSQLite,
//	    SQLite:  &storage.SQLiteConfig{Path: "contracts.db"},
//	}, logger)
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	recent, err := store.Recent(ctx, 0)
package storage
