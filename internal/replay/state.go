package replay

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS replayed_files (
	path        TEXT PRIMARY KEY,
	size        INTEGER NOT NULL,
	hash        TEXT NOT NULL,
	reps        INTEGER NOT NULL DEFAULT 0,
	avg_score   REAL NOT NULL DEFAULT 0,
	replayed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
)`

// StateDB remembers the score of every recording already replayed, keyed by
// its path relative to the recordings root. A recording whose size or hash
// changed since is treated as new.
type StateDB struct {
	db *sql.DB
}

// OpenStateDB opens (or creates) the SQLite state database at dir/state.db.
func OpenStateDB(dir string) (*StateDB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state dir %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "state.db"))
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating state table: %w", err)
	}
	return &StateDB{db: db}, nil
}

// Lookup returns the reps and average score stored for an identical copy of
// the recording. ok is false when the recording was never replayed or has
// changed since.
func (s *StateDB) Lookup(relPath string, size int64, hash string) (reps int, avg float64, ok bool, err error) {
	err = s.db.QueryRow(
		`SELECT reps, avg_score FROM replayed_files WHERE path = ? AND size = ? AND hash = ?`,
		relPath, size, hash,
	).Scan(&reps, &avg)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return 0, 0, false, nil
	case err != nil:
		return 0, 0, false, fmt.Errorf("looking up %s: %w", relPath, err)
	}
	return reps, avg, true, nil
}

// MarkReplayed stores the score of a recording, replacing any earlier entry
// for the same path.
func (s *StateDB) MarkReplayed(relPath string, size int64, hash string, reps int, avgScore float64) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO replayed_files (path, size, hash, reps, avg_score) VALUES (?, ?, ?, ?, ?)`,
		relPath, size, hash, reps, avgScore,
	)
	if err != nil {
		return fmt.Errorf("marking %s replayed: %w", relPath, err)
	}
	return nil
}

// Close closes the state database.
func (s *StateDB) Close() error {
	return s.db.Close()
}

// HashFile returns the hex SHA-256 of the file at path.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
