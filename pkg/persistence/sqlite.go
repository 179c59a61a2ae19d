package persistence

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	pkgerrors "github.com/pkg/errors"
	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

const lastFullChargeKey = "lastFullChargeDate"

var _ Gateway = &SQLite{}

// SQLite stores the timestamp in a single-row key/value table.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite creates or opens the database at path.
func OpenSQLite(path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to create data dir for %s", path)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to open sqlite database %s", path)
	}
	// SQLite is single-writer.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, pkgerrors.Wrapf(err, "failed to ping sqlite database %s", path)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS kv (
		key   TEXT PRIMARY KEY,
		value INTEGER NOT NULL
	)`)
	if err != nil {
		_ = db.Close()
		return nil, pkgerrors.Wrap(err, "failed to migrate sqlite database")
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) LastFullCharge() (time.Time, bool, error) {
	var nanos int64
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, lastFullChargeKey).Scan(&nanos)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, pkgerrors.Wrapf(ErrUnavailable, "failed to query last full charge: %v", err)
	}
	return time.Unix(0, nanos), true, nil
}

func (s *SQLite) SetLastFullCharge(t time.Time) error {
	_, err := s.db.Exec(
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		lastFullChargeKey, t.UnixNano(),
	)
	if err != nil {
		return pkgerrors.Wrapf(ErrUnavailable, "failed to store last full charge: %v", err)
	}
	return nil
}

// Clear removes the stored timestamp.
func (s *SQLite) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, lastFullChargeKey); err != nil {
		return pkgerrors.Wrapf(ErrUnavailable, "failed to clear last full charge: %v", err)
	}
	return nil
}
