package store

// schemaVersion is bumped whenever the tables change shape. A mismatch drops
// the cached rows; the CSV files remain the only source of truth.
const schemaVersion = 1

const schemaSQL = `
CREATE TABLE IF NOT EXISTS meta (
    key                  TEXT PRIMARY KEY,
    value                TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS file_tracker (
    file_path            TEXT PRIMARY KEY,
    mtime_ns             INTEGER NOT NULL,
    size_bytes           INTEGER NOT NULL,
    header_json          TEXT NOT NULL,
    parsed_at            TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS transactions (
    file_path            TEXT NOT NULL REFERENCES file_tracker(file_path) ON DELETE CASCADE,
    line                 INTEGER NOT NULL,
    date                 TEXT NOT NULL,
    category             TEXT NOT NULL,
    amount               TEXT NOT NULL,
    PRIMARY KEY (file_path, line)
);

CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date);
`

const dropSQL = `
DROP TABLE IF EXISTS transactions;
DROP TABLE IF EXISTS file_tracker;
`
