// Package store provides a SQLite-backed cache of parsed ledger files.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/theirongolddev/fburn/internal/model"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // register sqlite driver
)

const dateLayout = "2006-01-02"

// ErrNotCached is returned by LoadFile for a path with no cached rows.
var ErrNotCached = errors.New("file not cached")

// Cache provides SQLite-backed parse caching.
type Cache struct {
	db *sql.DB
}

// Open opens or creates the cache database at the given path.
func Open(dbPath string) (*Cache, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Cache{db: db}, nil
}

func migrate(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return err
	}

	var v string
	err := db.QueryRow("SELECT value FROM meta WHERE key = 'schema_version'").Scan(&v)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	if v == strconv.Itoa(schemaVersion) {
		return nil
	}

	if v != "" {
		if _, err := db.Exec(dropSQL); err != nil {
			return err
		}
		if _, err := db.Exec(schemaSQL); err != nil {
			return err
		}
	}
	_, err = db.Exec("INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?)", strconv.Itoa(schemaVersion))
	return err
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// FileInfo holds the tracked mtime and size for a file.
type FileInfo struct {
	MtimeNs   int64
	SizeBytes int64
}

// Matches reports whether info describes the same file contents as fi.
func (fi FileInfo) Matches(info os.FileInfo) bool {
	return fi.MtimeNs == info.ModTime().UnixNano() && fi.SizeBytes == info.Size()
}

// GetTrackedFiles returns a map of file_path -> FileInfo for all tracked files.
func (c *Cache) GetTrackedFiles() (map[string]FileInfo, error) {
	rows, err := c.db.Query("SELECT file_path, mtime_ns, size_bytes FROM file_tracker")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]FileInfo)
	for rows.Next() {
		var path string
		var fi FileInfo
		if err := rows.Scan(&path, &fi.MtimeNs, &fi.SizeBytes); err != nil {
			return nil, err
		}
		result[path] = fi
	}
	return result, rows.Err()
}

// SaveFile replaces the cached rows of one ledger file.
func (c *Cache) SaveFile(path string, fi FileInfo, header model.Columns, txs []model.Transaction) error {
	headerJSON, err := json.Marshal(header)
	if err != nil {
		return err
	}

	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	// Cascades to transactions.
	if _, err := tx.Exec("DELETE FROM file_tracker WHERE file_path = ?", path); err != nil {
		return err
	}

	_, err = tx.Exec(`INSERT INTO file_tracker (file_path, mtime_ns, size_bytes, header_json, parsed_at)
		VALUES (?, ?, ?, ?, ?)`,
		path, fi.MtimeNs, fi.SizeBytes, string(headerJSON), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO transactions (file_path, line, date, category, amount)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for _, t := range txs {
		if _, err := stmt.Exec(path, t.Line, t.Date.Format(dateLayout), t.Category, t.Amount.String()); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// LoadFile reads the cached rows of one ledger file in line order.
func (c *Cache) LoadFile(path string) ([]model.Transaction, model.Columns, error) {
	var headerJSON string
	err := c.db.QueryRow("SELECT header_json FROM file_tracker WHERE file_path = ?", path).Scan(&headerJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.Columns{}, ErrNotCached
	}
	if err != nil {
		return nil, model.Columns{}, err
	}

	var header model.Columns
	if err := json.Unmarshal([]byte(headerJSON), &header); err != nil {
		return nil, model.Columns{}, fmt.Errorf("decoding header: %w", err)
	}

	rows, err := c.db.Query(`SELECT line, date, category, amount
		FROM transactions WHERE file_path = ? ORDER BY line`, path)
	if err != nil {
		return nil, header, err
	}
	defer func() { _ = rows.Close() }()

	var txs []model.Transaction
	for rows.Next() {
		var t model.Transaction
		var dateStr, amountStr string
		if err := rows.Scan(&t.Line, &dateStr, &t.Category, &amountStr); err != nil {
			return nil, header, err
		}
		if t.Date, err = time.Parse(dateLayout, dateStr); err != nil {
			return nil, header, fmt.Errorf("cached date %q: %w", dateStr, err)
		}
		if t.Amount, err = decimal.NewFromString(amountStr); err != nil {
			return nil, header, fmt.Errorf("cached amount %q: %w", amountStr, err)
		}
		t.File = path
		txs = append(txs, t)
	}
	return txs, header, rows.Err()
}

// DeleteFile removes a tracked file and its rows.
func (c *Cache) DeleteFile(path string) error {
	_, err := c.db.Exec("DELETE FROM file_tracker WHERE file_path = ?", path)
	return err
}

// TransactionCount returns the number of cached rows.
func (c *Cache) TransactionCount() (int, error) {
	var count int
	err := c.db.QueryRow("SELECT COUNT(*) FROM transactions").Scan(&count)
	return count, err
}
