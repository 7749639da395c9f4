// Package redis implements a backend on a Redis server.
package redis

import (
	"context"
	stderrs "errors"
	"strings"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/ooici/cas/store"
)

var _ store.Backend = &Store{}

// Store is a Redis-based backend.
type Store struct {
	client *redis.Client
}

// New produces a new Store using client for storage.
func New(client *redis.Client) *Store {
	return &Store{client: client}
}

// Get gets the value stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if stderrs.Is(err, redis.Nil) {
		return nil, store.ErrNotFound
	}
	return data, errors.Wrapf(err, "getting %s", key)
}

// Put stores a value under key.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	err := s.client.Set(ctx, key, value, 0).Err()
	return errors.Wrapf(err, "storing %s", key)
}

// Remove deletes the value under key, if any.
func (s *Store) Remove(ctx context.Context, key string) error {
	err := s.client.Del(ctx, key).Err()
	return errors.Wrapf(err, "removing %s", key)
}

const scanCount = 100

// Query produces the keys matching pattern, in lexicographic order.
// SCAN narrows by the pattern's literal prefix;
// the pattern itself is applied here.
func (s *Store) Query(ctx context.Context, pattern string) ([]string, error) {
	m, err := store.Compile(pattern)
	if err != nil {
		return nil, err
	}

	var (
		keys   []string
		cursor uint64
		match  = globEscape(m.Prefix) + "*"
	)
	for {
		var batch []string
		batch, cursor, err = s.client.Scan(ctx, cursor, match, scanCount).Result()
		if err != nil {
			return nil, errors.Wrap(err, "scanning keys")
		}
		keys = append(keys, batch...)
		if cursor == 0 {
			break
		}
	}

	// SCAN may report a key more than once.
	seen := make(map[string]struct{}, len(keys))
	uniq := keys[:0]
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		uniq = append(uniq, k)
	}
	return m.Filter(uniq), nil
}

var globReplacer = strings.NewReplacer(
	`\`, `\\`,
	`*`, `\*`,
	`?`, `\?`,
	`[`, `\[`,
	`]`, `\]`,
)

func globEscape(s string) string {
	return globReplacer.Replace(s)
}

func init() {
	store.Register("redis", func(_ context.Context, conf map[string]interface{}) (store.Backend, error) {
		addr, err := store.ConfString(conf, "addr")
		if err != nil {
			return nil, err
		}
		password, _ := conf["password"].(string)
		db, err := store.ConfInt(conf, "db", 0)
		if err != nil {
			return nil, err
		}
		client := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		})
		return New(client), nil
	})
}
