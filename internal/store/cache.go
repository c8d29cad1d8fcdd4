// Package store provides a SQLite-backed cache for parsed message records.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/theirongolddev/ocstats/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// Cache provides SQLite-backed message caching keyed by file path.
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

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// FileInfo holds the tracked mtime and size for a file, and whether the file
// held a valid message when it was last parsed.
type FileInfo struct {
	MtimeNs   int64
	SizeBytes int64
	Valid     bool
}

// FileEntry is one parsed file to persist. Message is nil for files that
// did not contain a valid assistant message.
type FileEntry struct {
	Path      string
	MtimeNs   int64
	SizeBytes int64
	Message   *model.Message
}

// GetTrackedFiles returns a map of file_path -> FileInfo for all tracked files.
func (c *Cache) GetTrackedFiles() (map[string]FileInfo, error) {
	rows, err := c.db.Query("SELECT file_path, mtime_ns, size_bytes, valid FROM file_tracker")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]FileInfo)
	for rows.Next() {
		var path string
		var fi FileInfo
		var valid int
		if err := rows.Scan(&path, &fi.MtimeNs, &fi.SizeBytes, &valid); err != nil {
			return nil, err
		}
		fi.Valid = valid != 0
		result[path] = fi
	}
	return result, rows.Err()
}

// SaveFiles stores parse outcomes and their file tracking info in one transaction.
func (c *Cache) SaveFiles(entries []FileEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, e := range entries {
		valid := 0
		if e.Message != nil {
			valid = 1
		}

		_, err = tx.Exec(`INSERT INTO file_tracker (file_path, mtime_ns, size_bytes, valid)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(file_path) DO UPDATE SET
				mtime_ns = excluded.mtime_ns,
				size_bytes = excluded.size_bytes,
				valid = excluded.valid`,
			e.Path, e.MtimeNs, e.SizeBytes, valid)
		if err != nil {
			return err
		}

		// Drop any stale message for this file before writing the new one
		if _, err = tx.Exec("DELETE FROM messages WHERE file_path = ?", e.Path); err != nil {
			return err
		}
		if e.Message == nil {
			continue
		}

		m := e.Message
		var t model.Tokens
		hasTokens := 0
		if m.Tokens != nil {
			t = *m.Tokens
			hasTokens = 1
		}

		_, err = tx.Exec(`INSERT INTO messages
			(file_path, id, session_id, created_ms, provider_id, model_id, cost, has_tokens,
			 input_tokens, output_tokens, reasoning_tokens, cache_read_tokens, cache_write_tokens)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			e.Path, m.ID, m.SessionID, m.Created, m.ProviderID, m.ModelID, m.Cost, hasTokens,
			t.Input, t.Output, t.Reasoning, t.Cache.Read, t.Cache.Write,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// LoadMessages reads all cached messages keyed by file path.
func (c *Cache) LoadMessages() (map[string]model.Message, error) {
	rows, err := c.db.Query(`SELECT
		file_path, id, session_id, created_ms, provider_id, model_id, cost, has_tokens,
		input_tokens, output_tokens, reasoning_tokens, cache_read_tokens, cache_write_tokens
		FROM messages`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]model.Message)
	for rows.Next() {
		var path string
		var m model.Message
		var t model.Tokens
		var hasTokens int

		err := rows.Scan(
			&path, &m.ID, &m.SessionID, &m.Created, &m.ProviderID, &m.ModelID, &m.Cost, &hasTokens,
			&t.Input, &t.Output, &t.Reasoning, &t.Cache.Read, &t.Cache.Write,
		)
		if err != nil {
			return nil, err
		}
		if hasTokens != 0 {
			m.Tokens = &t
		}
		result[path] = m
	}
	return result, rows.Err()
}

// DeleteFiles removes tracking entries (and their messages) for the given paths.
func (c *Cache) DeleteFiles(paths []string) error {
	if len(paths) == 0 {
		return nil
	}

	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, p := range paths {
		if _, err := tx.Exec("DELETE FROM file_tracker WHERE file_path = ?", p); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// MessageCount returns the number of cached messages.
func (c *Cache) MessageCount() (int, error) {
	var count int
	err := c.db.QueryRow("SELECT COUNT(*) FROM messages").Scan(&count)
	return count, err
}
