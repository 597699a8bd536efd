// Package registry stores and retrieves the production model artifact.
package registry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"vehicle-insurance-pipeline/internal/common/aws"
)

// ModelStore abstracts where the production model lives.
type ModelStore interface {
	IsPresent(ctx context.Context, key string) (bool, error)
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}

// S3Store keeps models in an S3 bucket.
type S3Store struct {
	client *aws.S3Client
	bucket string
}

func NewS3Store(client *aws.S3Client, bucket string) *S3Store {
	return &S3Store{client: client, bucket: bucket}
}

func (s *S3Store) IsPresent(ctx context.Context, key string) (bool, error) {
	return s.client.ObjectExists(ctx, s.bucket, key)
}

func (s *S3Store) Load(ctx context.Context, key string) ([]byte, error) {
	return s.client.GetObject(ctx, s.bucket, key)
}

func (s *S3Store) Save(ctx context.Context, key string, data []byte) error {
	return s.client.PutObject(ctx, s.bucket, key, data)
}

// FSStore keeps models on the local filesystem, for development and tests.
type FSStore struct {
	root string
}

func NewFSStore(root string) *FSStore {
	return &FSStore{root: root}
}

func (s *FSStore) path(key string) string {
	return filepath.Join(s.root, filepath.FromSlash(key))
}

func (s *FSStore) IsPresent(_ context.Context, key string) (bool, error) {
	_, err := os.Stat(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat %s: %w", key, err)
	}
	return true, nil
}

func (s *FSStore) Load(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

func (s *FSStore) Save(_ context.Context, key string, data []byte) error {
	p := s.path(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("mkdir for %s: %w", key, err)
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
