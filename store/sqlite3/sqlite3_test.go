package sqlite3

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/ooici/cas/testutil"
)

func TestStore(t *testing.T) {
	for _, driver := range []string{"sqlite3", "sqlite"} {
		driver := driver
		t.Run(driver, func(t *testing.T) {
			ctx := context.Background()
			err := withTestStore(ctx, t, driver, func(s *Store) error {
				testutil.Backend(ctx, t, s)
				return nil
			})
			if err != nil {
				t.Fatal(err)
			}
		})
	}
}

func withTestStore(ctx context.Context, t *testing.T, driver string, fn func(*Store) error) error {
	db, err := sql.Open(driver, filepath.Join(t.TempDir(), "cassqlite3test.db"))
	if err != nil {
		return err
	}
	defer db.Close()

	s, err := New(ctx, db)
	if err != nil {
		return err
	}

	return fn(s)
}
