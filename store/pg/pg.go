// Package pg implements a backend on a PostgreSQL database.
package pg

import (
	"context"
	"database/sql"
	stderrs "errors"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // register the postgres type for sqlx.Open
	"github.com/pkg/errors"

	"github.com/ooici/cas/store"
)

var _ store.Backend = &Store{}

// Store is a Postgresql-based backend.
type Store struct {
	db *sqlx.DB
}

// Schema is the SQL that New executes.
// It creates the `kv` table if it does not exist.
// (If it does exist, it must have the columns and constraints described here.)
const Schema = `
CREATE TABLE IF NOT EXISTS kv (
  key TEXT PRIMARY KEY NOT NULL,
  value BYTEA NOT NULL
);
`

// New produces a new Store using `db` for storage.
// It expects to create table `kv`,
// or for that table already to exist with the correct schema.
// (See variable Schema.)
func New(ctx context.Context, db *sqlx.DB) (*Store, error) {
	_, err := db.ExecContext(ctx, Schema)
	return &Store{db: db}, errors.Wrap(err, "creating schema")
}

// Get gets the value stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	const q = `SELECT value FROM kv WHERE key = $1`

	var val []byte
	err := s.db.GetContext(ctx, &val, q, key)
	if stderrs.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return val, errors.Wrapf(err, "getting %s", key)
}

// Put stores a value under key.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	const q = `INSERT INTO kv (key, value) VALUES ($1, $2) ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`

	if value == nil {
		value = []byte{}
	}
	_, err := s.db.ExecContext(ctx, q, key, value)
	return errors.Wrapf(err, "storing %s", key)
}

// Remove deletes the value under key, if any.
func (s *Store) Remove(ctx context.Context, key string) error {
	const q = `DELETE FROM kv WHERE key = $1`

	_, err := s.db.ExecContext(ctx, q, key)
	return errors.Wrapf(err, "removing %s", key)
}

// Query produces the keys matching pattern, in lexicographic order.
// Postgres narrows the scan to the pattern's literal prefix;
// the pattern itself is applied here,
// so its dialect is the same as every other backend's.
func (s *Store) Query(ctx context.Context, pattern string) ([]string, error) {
	m, err := store.Compile(pattern)
	if err != nil {
		return nil, err
	}

	const q = `SELECT key FROM kv WHERE left(key, length($1)) = $1`

	var keys []string
	if err := s.db.SelectContext(ctx, &keys, q, m.Prefix); err != nil {
		return nil, errors.Wrap(err, "querying keys")
	}
	return m.Filter(keys), nil
}

func init() {
	store.Register("pg", func(ctx context.Context, conf map[string]interface{}) (store.Backend, error) {
		conn, err := store.ConfString(conf, "conn")
		if err != nil {
			return nil, err
		}
		db, err := sqlx.Open("postgres", conn)
		if err != nil {
			return nil, errors.Wrap(err, "opening db")
		}
		return New(ctx, db)
	})
}
