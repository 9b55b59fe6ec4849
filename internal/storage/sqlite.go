package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS slots (
	namespace TEXT PRIMARY KEY,
	blob BLOB NOT NULL,
	updated_at INTEGER NOT NULL
);
`

// SQLiteSlot persists blobs in a local SQLite file, one row per namespace.
type SQLiteSlot struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the slot database at path.
func OpenSQLite(path string) (*SQLiteSlot, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &SQLiteSlot{db: db}, nil
}

func (s *SQLiteSlot) Read(namespace string) ([]byte, error) {
	var blob []byte
	err := s.db.QueryRow(`SELECT blob FROM slots WHERE namespace = ?`, namespace).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAbsent
	}
	if err != nil {
		return nil, fmt.Errorf("read slot %s: %w", namespace, err)
	}
	return blob, nil
}

func (s *SQLiteSlot) Write(namespace string, blob []byte) error {
	_, err := s.db.Exec(`
		INSERT INTO slots (namespace, blob, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(namespace) DO UPDATE SET blob = excluded.blob, updated_at = excluded.updated_at`,
		namespace, blob, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("write slot %s: %w", namespace, err)
	}
	return nil
}

func (s *SQLiteSlot) Close() error {
	return s.db.Close()
}
