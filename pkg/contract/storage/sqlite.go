package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite" // pure Go SQLite driver

	"mercator-hq/clausewatch/pkg/contract"
)

// SQLite driver names accepted by SQLiteConfig.Driver.
const (
	// DriverSQLite is the pure Go driver from modernc.org/sqlite.
	DriverSQLite = "sqlite"

	// DriverSQLite3 is the cgo driver from github.com/mattn/go-sqlite3.
	DriverSQLite3 = "sqlite3"
)

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteConfig contains configuration for the SQLite contract store.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// Driver selects the database/sql driver: "sqlite" or "sqlite3".
	// Default: "sqlite"
	Driver string

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:        "data/contracts.db",
		Driver:      DriverSQLite,
		BusyTimeout: 5 * time.Second,
	}
}

// dsn builds the data source name in the form each driver expects.
func (c *SQLiteConfig) dsn() (string, error) {
	ms := c.BusyTimeout.Milliseconds()
	switch c.Driver {
	case DriverSQLite, "":
		return fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", c.Path, ms), nil
	case DriverSQLite3:
		return fmt.Sprintf("file:%s?_busy_timeout=%d&_journal_mode=WAL&_foreign_keys=on", c.Path, ms), nil
	default:
		return "", fmt.Errorf("unknown sqlite driver %q (want %q or %q)", c.Driver, DriverSQLite, DriverSQLite3)
	}
}

// SQLiteStore implements contract.Store on a SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStore opens the database and creates the schema if needed.
func NewSQLiteStore(config *SQLiteConfig, logger *slog.Logger) (*SQLiteStore, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}
	if config.Path == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}
	if config.Driver == "" {
		config.Driver = DriverSQLite
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "contract.storage.sqlite")

	if dir := filepath.Dir(config.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, contract.NewStorageError("sqlite", "mkdir", err)
		}
	}

	dsn, err := config.dsn()
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(config.Driver, dsn)
	if err != nil {
		return nil, contract.NewStorageError("sqlite", "open", err)
	}

	// SQLite only supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &SQLiteStore{db: db, config: config, logger: logger}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite contract store initialized",
		"path", config.Path,
		"driver", config.Driver,
	)
	return s, nil
}

func (s *SQLiteStore) initialize() error {
	if _, err := s.db.Exec(Schema); err != nil {
		return contract.NewStorageError("sqlite", "create_schema", err)
	}
	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return contract.NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	if err := s.db.QueryRow(GetSchemaVersion).Scan(&version); err != nil {
		return contract.NewStorageError("sqlite", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return contract.NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}
	return nil
}

// Put inserts a contract or replaces the one with the same ID, keeping its
// position. The contract's clauses replace any stored ones.
func (s *SQLiteStore) Put(ctx context.Context, c *contract.Contract) error {
	if c == nil || c.ID == "" {
		return fmt.Errorf("contract id cannot be empty")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return contract.NewStorageError("sqlite", "begin", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var position int64
	err = tx.QueryRowContext(ctx, `SELECT position FROM contracts WHERE id = ?`, c.ID).Scan(&position)
	if errors.Is(err, sql.ErrNoRows) {
		err = tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(position), 0) + 1 FROM contracts`).Scan(&position)
	}
	if err != nil {
		return contract.NewStorageError("sqlite", "position", err)
	}

	parties, err := json.Marshal(c.Parties)
	if err != nil {
		return contract.NewStorageError("sqlite", "encode_parties", err)
	}
	versions, err := json.Marshal(c.Versions)
	if err != nil {
		return contract.NewStorageError("sqlite", "encode_versions", err)
	}
	var expiry, value interface{}
	if c.ExpiryDate != nil {
		expiry = c.ExpiryDate.UTC().Format(timeLayout)
	}
	if c.Value != nil {
		value = *c.Value
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO contracts (position, `+contractColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			type = excluded.type,
			date_added = excluded.date_added,
			status = excluded.status,
			compliance = excluded.compliance,
			parties = excluded.parties,
			expiry_date = excluded.expiry_date,
			value = excluded.value,
			content = excluded.content,
			versions = excluded.versions`,
		position, c.ID, c.Name, c.Type, c.DateAdded.UTC().Format(timeLayout), c.Status, c.Compliance,
		string(parties), expiry, value, c.Content, string(versions),
	)
	if err != nil {
		return contract.NewStorageError("sqlite", "put_contract", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM clauses WHERE contract_id = ?`, c.ID); err != nil {
		return contract.NewStorageError("sqlite", "delete_clauses", err)
	}

	for i, clause := range c.Clauses {
		issues, tags, refs, err := encodeClause(clause)
		if err != nil {
			return contract.NewStorageError("sqlite", "encode_clause", fmt.Errorf("clause %s: %w", clause.ID, err))
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO clauses (position, `+clauseColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			i, c.ID, clause.ID, clause.Title, clause.Type, clause.Text, clause.HasIssues, string(clause.Severity),
			string(issues), clause.SuggestedRevision, string(tags), string(refs),
		)
		if err != nil {
			return contract.NewStorageError("sqlite", "put_clause", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return contract.NewStorageError("sqlite", "commit", err)
	}
	return nil
}

// encodeClause marshals the JSON columns of a clause row.
func encodeClause(c contract.Clause) (issues, tags, refs []byte, err error) {
	if issues, err = json.Marshal(c.Issues); err != nil {
		return nil, nil, nil, err
	}
	if tags, err = json.Marshal(c.Tags); err != nil {
		return nil, nil, nil, err
	}
	if refs, err = json.Marshal(c.References); err != nil {
		return nil, nil, nil, err
	}
	return issues, tags, refs, nil
}

// List implements contract.Store.
func (s *SQLiteStore) List(ctx context.Context) ([]*contract.Contract, error) {
	return s.queryContracts(ctx, `SELECT `+contractColumns+` FROM contracts ORDER BY position`)
}

// Recent implements contract.Store.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]*contract.Contract, error) {
	return s.queryContracts(ctx,
		`SELECT `+contractColumns+` FROM contracts ORDER BY date_added DESC, id ASC LIMIT ?`,
		RecentLimit(limit))
}

// Get implements contract.Store.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*contract.Contract, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+contractColumns+` FROM contracts WHERE id = ?`, id)
	c, err := scanContract(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, contract.NewNotFoundError("contract", id)
	}
	if err != nil {
		return nil, contract.NewStorageError("sqlite", "get", err)
	}

	clauses, err := s.Clauses(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(clauses) > 0 {
		c.Clauses = clauses
	}
	return c, nil
}

// Clauses implements contract.Store.
func (s *SQLiteStore) Clauses(ctx context.Context, contractID string) ([]contract.Clause, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+clauseColumns+` FROM clauses WHERE contract_id = ? ORDER BY position`, contractID)
	if err != nil {
		return nil, contract.NewStorageError("sqlite", "clauses", err)
	}
	defer rows.Close()

	out := []contract.Clause{}
	for rows.Next() {
		_, clause, err := scanClause(rows)
		if err != nil {
			return nil, contract.NewStorageError("sqlite", "scan_clause", err)
		}
		out = append(out, clause)
	}
	if err := rows.Err(); err != nil {
		return nil, contract.NewStorageError("sqlite", "clauses", err)
	}
	return out, nil
}

// Close implements contract.Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// DB returns the underlying database handle.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

func (s *SQLiteStore) queryContracts(ctx context.Context, query string, args ...interface{}) ([]*contract.Contract, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, contract.NewStorageError("sqlite", "query", err)
	}

	var out []*contract.Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			rows.Close()
			return nil, contract.NewStorageError("sqlite", "scan_contract", err)
		}
		out = append(out, c)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, contract.NewStorageError("sqlite", "query", err)
	}

	if err := s.attachClauses(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// attachClauses loads the clauses of every contract in one query.
func (s *SQLiteStore) attachClauses(ctx context.Context, cs []*contract.Contract) error {
	if len(cs) == 0 {
		return nil
	}

	byID := make(map[string]*contract.Contract, len(cs))
	placeholders := make([]string, len(cs))
	args := make([]interface{}, len(cs))
	for i, c := range cs {
		byID[c.ID] = c
		placeholders[i] = "?"
		args[i] = c.ID
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+clauseColumns+` FROM clauses WHERE contract_id IN (`+strings.Join(placeholders, ", ")+`)
		 ORDER BY contract_id, position`, args...)
	if err != nil {
		return contract.NewStorageError("sqlite", "clauses", err)
	}
	defer rows.Close()

	for rows.Next() {
		contractID, clause, err := scanClause(rows)
		if err != nil {
			return contract.NewStorageError("sqlite", "scan_clause", err)
		}
		if c, ok := byID[contractID]; ok {
			c.Clauses = append(c.Clauses, clause)
		}
	}
	if err := rows.Err(); err != nil {
		return contract.NewStorageError("sqlite", "clauses", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanContract(r rowScanner) (*contract.Contract, error) {
	var (
		c                 contract.Contract
		dateAdded         string
		parties, versions string
		expiry            sql.NullString
		value             sql.NullFloat64
	)
	err := r.Scan(&c.ID, &c.Name, &c.Type, &dateAdded, &c.Status, &c.Compliance,
		&parties, &expiry, &value, &c.Content, &versions)
	if err != nil {
		return nil, err
	}

	if c.DateAdded, err = time.Parse(timeLayout, dateAdded); err != nil {
		return nil, fmt.Errorf("contract %s: date_added: %w", c.ID, err)
	}
	if expiry.Valid {
		t, err := time.Parse(timeLayout, expiry.String)
		if err != nil {
			return nil, fmt.Errorf("contract %s: expiry_date: %w", c.ID, err)
		}
		c.ExpiryDate = &t
	}
	if value.Valid {
		v := value.Float64
		c.Value = &v
	}
	if err := json.Unmarshal([]byte(parties), &c.Parties); err != nil {
		return nil, fmt.Errorf("contract %s: parties: %w", c.ID, err)
	}
	if err := json.Unmarshal([]byte(versions), &c.Versions); err != nil {
		return nil, fmt.Errorf("contract %s: versions: %w", c.ID, err)
	}
	return &c, nil
}

func scanClause(r rowScanner) (string, contract.Clause, error) {
	var (
		contractID         string
		clause             contract.Clause
		severity           string
		issues, tags, refs string
	)
	err := r.Scan(&contractID, &clause.ID, &clause.Title, &clause.Type, &clause.Text, &clause.HasIssues,
		&severity, &issues, &clause.SuggestedRevision, &tags, &refs)
	if err != nil {
		return "", clause, err
	}

	clause.Severity = contract.Severity(severity)
	if err := json.Unmarshal([]byte(issues), &clause.Issues); err != nil {
		return "", clause, fmt.Errorf("clause %s: issues: %w", clause.ID, err)
	}
	if err := json.Unmarshal([]byte(tags), &clause.Tags); err != nil {
		return "", clause, fmt.Errorf("clause %s: tags: %w", clause.ID, err)
	}
	if err := json.Unmarshal([]byte(refs), &clause.References); err != nil {
		return "", clause, fmt.Errorf("clause %s: references: %w", clause.ID, err)
	}
	return contractID, clause, nil
}
