package gcs

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"os"
	"testing"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/ooici/cas/testutil"
)

const (
	credsVar = "CAS_GCS_TESTING_CREDS"
	projVar  = "CAS_GCS_TESTING_PROJECT"
)

func TestStore(t *testing.T) {
	var (
		creds     = os.Getenv(credsVar)
		projectID = os.Getenv(projVar)
	)
	if creds == "" || projectID == "" {
		t.Skipf("to run TestStore, set %s to the name of a credentials file and %s to a project ID", credsVar, projVar)
	}

	var r [30]byte
	if _, err := rand.Read(r[:]); err != nil {
		t.Fatal(err)
	}
	bucketName := hex.EncodeToString(r[:])

	ctx := context.Background()

	client, err := storage.NewClient(ctx, option.WithCredentialsFile(creds))
	if err != nil {
		t.Fatal(err)
	}

	t.Logf("creating bucket %s in project %s", bucketName, projectID)

	bucket := client.Bucket(bucketName)
	if err := bucket.Create(ctx, projectID, nil); err != nil {
		t.Fatal(err)
	}
	defer func() {
		iter := bucket.Objects(ctx, nil)
		for {
			attrs, err := iter.Next()
			if err == iterator.Done || err != nil {
				break
			}
			bucket.Object(attrs.Name).Delete(ctx)
		}
		bucket.Delete(ctx)
	}()

	testutil.Backend(ctx, t, New(bucket))
}
