// Package store provides the session response cache for rickdex.
//
// Raw response bodies are kept in SQLite keyed by request URL. The default
// database is in-memory so nothing outlives the process.
package store

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// DefaultTTL matches how long the API's data is treated as fresh.
const DefaultTTL = 5 * time.Minute

// Store is a TTL cache of response bodies. NOT an interface - concrete type.
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Store struct {
	db  *sql.DB
	mu  sync.RWMutex // Protects all database operations
	ttl time.Duration
	now func() time.Time
}

// Open creates a new Store with the given database path and entry lifetime.
// Creates tables if they don't exist. A ttl of 0 selects DefaultTTL.
// Uses WAL mode for better concurrent read performance (file-based DBs only).
func Open(dbPath string, ttl time.Duration) (*Store, error) {
	if dbPath == "" {
		dbPath = ":memory:"
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	// Build connection string based on database type
	connStr := dbPath
	if dbPath == ":memory:" {
		// For in-memory databases, use shared cache mode so all connections
		// in the pool see the same database
		connStr = "file::memory:?cache=shared"
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// For in-memory databases, limit to 1 connection to avoid issues
	// with multiple connections getting different databases
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Enable WAL mode for file-based databases (not :memory:)
	if dbPath != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	s := &Store{db: db, ttl: ttl, now: time.Now}

	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return s, nil
}

// createTables creates the required tables and indexes if they don't exist.
func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS responses (
		key TEXT PRIMARY KEY,
		body BLOB NOT NULL,
		stored_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_responses_stored ON responses(stored_at);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
// Thread-safe: acquires write lock to prevent closing during in-flight operations.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// TTL is the lifetime of an entry.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Get returns the body stored under key if it is younger than the TTL.
// Any database error is reported as a miss.
// Thread-safe: acquires read lock.
func (s *Store) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cutoff := s.now().Add(-s.ttl).UnixNano()

	var body []byte
	err := s.db.QueryRow(
		"SELECT body FROM responses WHERE key = ? AND stored_at > ?", key, cutoff,
	).Scan(&body)
	if err != nil {
		return nil, false
	}
	return body, true
}

// Put stores body under key, replacing any previous entry.
// Thread-safe: acquires write lock.
func (s *Store) Put(key string, body []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO responses (key, body, stored_at) VALUES (?, ?, ?)",
		key, body, s.now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// Purge deletes expired entries and returns how many were removed.
// Thread-safe: acquires write lock.
func (s *Store) Purge() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.ttl).UnixNano()
	result, err := s.db.Exec("DELETE FROM responses WHERE stored_at <= ?", cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// Len returns the number of stored entries, fresh or not.
// Thread-safe: acquires read lock.
func (s *Store) Len() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM responses").Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
