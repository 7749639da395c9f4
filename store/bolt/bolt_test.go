package bolt

import (
	"context"
	"path/filepath"
	"testing"

	"go.etcd.io/bbolt"

	"github.com/ooici/cas/testutil"
)

func TestStore(t *testing.T) {
	db, err := bbolt.Open(filepath.Join(t.TempDir(), "test.db"), 0600, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	s, err := New(db, "test-bucket")
	if err != nil {
		t.Fatal(err)
	}
	if string(s.bucket) != "test-bucket" {
		t.Errorf("bucket not set correctly: %q", s.bucket)
	}

	testutil.Backend(context.Background(), t, s)
}
