package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements that create the contract database.
// Timestamps are stored as fixed-width UTC text so they sort lexically.
// List-valued fields are stored as JSON arrays.
const Schema = `
CREATE TABLE IF NOT EXISTS contracts (
    id TEXT PRIMARY KEY,
    position INTEGER NOT NULL,
    name TEXT NOT NULL,
    type TEXT NOT NULL DEFAULT '',
    date_added TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT '',
    compliance TEXT NOT NULL DEFAULT '',
    parties TEXT NOT NULL DEFAULT '[]',
    expiry_date TEXT,
    value REAL,
    content TEXT NOT NULL DEFAULT '',
    versions TEXT NOT NULL DEFAULT '[]'
);

CREATE INDEX IF NOT EXISTS idx_contracts_position ON contracts(position);
CREATE INDEX IF NOT EXISTS idx_contracts_date_added ON contracts(date_added);

CREATE TABLE IF NOT EXISTS clauses (
    contract_id TEXT NOT NULL REFERENCES contracts(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    id TEXT NOT NULL,
    title TEXT NOT NULL DEFAULT '',
    type TEXT NOT NULL DEFAULT '',
    text TEXT NOT NULL,
    has_issues INTEGER NOT NULL DEFAULT 0,
    severity TEXT NOT NULL DEFAULT '',
    issues TEXT NOT NULL DEFAULT '[]',
    suggested_revision TEXT NOT NULL DEFAULT '',
    tags TEXT NOT NULL DEFAULT '[]',
    refs TEXT NOT NULL DEFAULT '[]',
    PRIMARY KEY (contract_id, id)
);

CREATE INDEX IF NOT EXISTS idx_clauses_position ON clauses(contract_id, position);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
);
`

// InsertSchemaVersion records the schema version once.
const InsertSchemaVersion = `INSERT OR IGNORE INTO schema_version (version) VALUES (?)`

// GetSchemaVersion returns the highest applied schema version.
const GetSchemaVersion = `SELECT MAX(version) FROM schema_version`

const contractColumns = `id, name, type, date_added, status, compliance, parties, expiry_date, value, content, versions`

const clauseColumns = `contract_id, id, title, type, text, has_issues, severity, issues, suggested_revision, tags, refs`
