// Package bt implements a backend on Google Cloud Bigtable.
package bt

import (
	"context"

	"cloud.google.com/go/bigtable"
	"github.com/pkg/errors"
	"google.golang.org/api/option"

	"github.com/ooici/cas/store"
)

var _ store.Backend = &Store{}

// Store is a Google Cloud Bigtable-backed backend.
// Each key is a row key,
// and its value is the latest cell in column Family:Column.
type Store struct {
	t *bigtable.Table
}

// The column family and column holding values.
// The table must already have the family.
const (
	Family = "v"
	Column = "v"
)

// New produces a new Store.
func New(t *bigtable.Table) *Store {
	return &Store{t: t}
}

var latest = bigtable.RowFilter(bigtable.ChainFilters(
	bigtable.FamilyFilter("^"+Family+"$"),
	bigtable.LatestNFilter(1),
))

// Get gets the value stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	row, err := s.t.ReadRow(ctx, key, latest)
	if err != nil {
		return nil, errors.Wrapf(err, "reading row %s", key)
	}
	items := row[Family]
	if len(items) == 0 {
		return nil, store.ErrNotFound
	}
	return items[0].Value, nil
}

// Put stores a value under key,
// replacing any earlier cells.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	mut := bigtable.NewMutation()
	mut.DeleteCellsInColumn(Family, Column)
	mut.Set(Family, Column, bigtable.Now(), value)
	return errors.Wrapf(s.t.Apply(ctx, key, mut), "writing row %s", key)
}

// Remove deletes the value under key, if any.
func (s *Store) Remove(ctx context.Context, key string) error {
	mut := bigtable.NewMutation()
	mut.DeleteRow()
	return errors.Wrapf(s.t.Apply(ctx, key, mut), "deleting row %s", key)
}

// Query produces the keys matching pattern, in lexicographic order.
// Rows are read by the pattern's literal prefix with values stripped,
// and matched here.
func (s *Store) Query(ctx context.Context, pattern string) ([]string, error) {
	m, err := store.Compile(pattern)
	if err != nil {
		return nil, err
	}

	var keys []string
	rowFn := func(row bigtable.Row) bool {
		if k := row.Key(); m.Match(k) {
			keys = append(keys, k)
		}
		return true
	}
	filter := bigtable.ChainFilters(
		bigtable.FamilyFilter("^"+Family+"$"),
		bigtable.LatestNFilter(1),
		bigtable.StripValueFilter(),
	)
	var rows bigtable.RowSet = bigtable.InfiniteRange("")
	if m.Prefix != "" {
		rows = bigtable.PrefixRange(m.Prefix)
	}
	err = s.t.ReadRows(ctx, rows, rowFn, bigtable.RowFilter(filter))
	return keys, errors.Wrap(err, "reading rows")
}

func init() {
	store.Register("bt", func(ctx context.Context, conf map[string]interface{}) (store.Backend, error) {
		project, err := store.ConfString(conf, "project")
		if err != nil {
			return nil, err
		}
		instance, err := store.ConfString(conf, "instance")
		if err != nil {
			return nil, err
		}
		table, err := store.ConfString(conf, "table")
		if err != nil {
			return nil, err
		}
		var options []option.ClientOption
		if creds, ok := conf["creds"].(string); ok {
			options = append(options, option.WithCredentialsFile(creds))
		}
		c, err := bigtable.NewClient(ctx, project, instance, options...)
		if err != nil {
			return nil, errors.Wrap(err, "creating bigtable client")
		}
		return New(c.Open(table)), nil
	})
}
