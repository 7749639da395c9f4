// Package minio implements a backend on an S3-compatible object store via MinIO.
package minio

import (
	"bytes"
	"context"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"

	"github.com/ooici/cas/store"
)

var _ store.Backend = &Store{}

// Store is a MinIO-based backend.
// Each key is the name of one object in the bucket.
type Store struct {
	client *minio.Client
	bucket string
}

// New produces a new Store using the given client and bucket.
func New(client *minio.Client, bucket string) *Store {
	return &Store{client: client, bucket: bucket}
}

func isNoSuchKey(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}

// Get gets the value stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, errors.Wrapf(err, "getting object %s", key)
	}
	defer obj.Close()

	if _, err := obj.Stat(); err != nil {
		if isNoSuchKey(err) {
			return nil, store.ErrNotFound
		}
		return nil, errors.Wrapf(err, "getting info of object %s", key)
	}

	data, err := io.ReadAll(obj)
	return data, errors.Wrapf(err, "reading contents of object %s", key)
}

// Put stores a value under key.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(value), int64(len(value)), minio.PutObjectOptions{})
	return errors.Wrapf(err, "writing object %s", key)
}

// Remove deletes the value under key, if any.
// S3 treats removal of an absent object as success.
func (s *Store) Remove(ctx context.Context, key string) error {
	err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
	if isNoSuchKey(err) {
		return nil
	}
	return errors.Wrapf(err, "removing object %s", key)
}

// Query produces the keys matching pattern, in lexicographic order.
func (s *Store) Query(ctx context.Context, pattern string) ([]string, error) {
	m, err := store.Compile(pattern)
	if err != nil {
		return nil, err
	}

	opts := minio.ListObjectsOptions{
		Prefix:    m.Prefix,
		Recursive: true,
	}

	var keys []string
	for obj := range s.client.ListObjects(ctx, s.bucket, opts) {
		if obj.Err != nil {
			return nil, errors.Wrap(obj.Err, "listing objects")
		}
		keys = append(keys, obj.Key)
	}
	return m.Filter(keys), nil
}

func init() {
	store.Register("minio", func(_ context.Context, conf map[string]interface{}) (store.Backend, error) {
		endpoint, err := store.ConfString(conf, "endpoint")
		if err != nil {
			return nil, err
		}
		bucket, err := store.ConfString(conf, "bucket")
		if err != nil {
			return nil, err
		}
		accessKey, _ := conf["access_key"].(string)
		secretKey, _ := conf["secret_key"].(string)

		client, err := minio.New(endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
			Secure: store.ConfBool(conf, "secure"),
		})
		if err != nil {
			return nil, errors.Wrap(err, "creating minio client")
		}
		return New(client, bucket), nil
	})
}
