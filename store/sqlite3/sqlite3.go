// Package sqlite3 implements a backend on a SQLite database.
package sqlite3

import (
	"context"
	"database/sql"
	stderrs "errors"

	"github.com/bobg/sqlutil"
	_ "github.com/mattn/go-sqlite3" // register the sqlite3 type for sql.Open
	"github.com/pkg/errors"
	_ "modernc.org/sqlite" // register the pure-Go sqlite type for sql.Open

	"github.com/ooici/cas/store"
)

var _ store.Backend = &Store{}

// Store is a SQLite-based backend.
type Store struct {
	db *sql.DB
}

// Schema is the SQL that New executes.
// It creates the `kv` table if it does not exist.
// (If it does exist, it must have the columns and constraints described here.)
const Schema = `
CREATE TABLE IF NOT EXISTS kv (
  key TEXT PRIMARY KEY NOT NULL,
  value BLOB NOT NULL
);
`

// New produces a new Store using `db` for storage.
// Either the cgo driver ("sqlite3") or the pure-Go driver ("sqlite") may have opened db.
func New(ctx context.Context, db *sql.DB) (*Store, error) {
	_, err := db.ExecContext(ctx, Schema)
	return &Store{db: db}, errors.Wrap(err, "creating schema")
}

// Get gets the value stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	const q = `SELECT value FROM kv WHERE key = ?`

	var val []byte
	err := s.db.QueryRowContext(ctx, q, key).Scan(&val)
	if stderrs.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return val, errors.Wrapf(err, "getting %s", key)
}

// Put stores a value under key.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	const q = `INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT (key) DO UPDATE SET value = excluded.value`

	if value == nil {
		value = []byte{}
	}
	_, err := s.db.ExecContext(ctx, q, key, value)
	return errors.Wrapf(err, "storing %s", key)
}

// Remove deletes the value under key, if any.
func (s *Store) Remove(ctx context.Context, key string) error {
	const q = `DELETE FROM kv WHERE key = ?`

	_, err := s.db.ExecContext(ctx, q, key)
	return errors.Wrapf(err, "removing %s", key)
}

// Query produces the keys matching pattern, in lexicographic order.
func (s *Store) Query(ctx context.Context, pattern string) ([]string, error) {
	m, err := store.Compile(pattern)
	if err != nil {
		return nil, err
	}

	const q = `SELECT key FROM kv WHERE substr(key, 1, length(?)) = ? ORDER BY key`

	var keys []string
	err = sqlutil.ForQueryRows(ctx, s.db, q, m.Prefix, m.Prefix, func(key string) {
		if m.Match(key) {
			keys = append(keys, key)
		}
	})
	return keys, errors.Wrap(err, "querying keys")
}

func init() {
	store.Register("sqlite3", func(ctx context.Context, conf map[string]interface{}) (store.Backend, error) {
		conn, err := store.ConfString(conf, "conn")
		if err != nil {
			return nil, err
		}
		driver, ok := conf["driver"].(string)
		if !ok {
			driver = "sqlite3"
		}
		db, err := sql.Open(driver, conn)
		if err != nil {
			return nil, errors.Wrap(err, "opening db")
		}
		return New(ctx, db)
	})
}
