package state

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectClient is the subset of object storage operations the store uses.
type ObjectClient interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (*minio.Object, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
}

// ObjectStore persists fingerprints in an S3-compatible bucket, keyed as
// {prefix}/{kind}/{key}. It lets several operators or a CI pipeline share
// one sync state.
type ObjectStore struct {
	client ObjectClient
	bucket string
	prefix string
}

// NewObjectStore creates an object-storage-backed fingerprint store from
// the configuration.
func NewObjectStore(cfg Config) (*ObjectStore, error) {
	endpoint := strings.TrimPrefix(cfg.Endpoint, "http://")
	endpoint = strings.TrimPrefix(endpoint, "https://")

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object storage client: %w", err)
	}

	return &ObjectStore{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

func (s *ObjectStore) key(kind, key string) string {
	return path.Join(s.prefix, kind, key)
}

// Load returns the stored fingerprint for the entity.
func (s *ObjectStore) Load(ctx context.Context, kind, key string) (string, bool, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.key(kind, key), minio.GetObjectOptions{})
	if err != nil {
		return "", false, fmt.Errorf("failed to get fingerprint %s/%s: %w", kind, key, err)
	}
	defer obj.Close()

	raw, err := io.ReadAll(obj)
	if err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read fingerprint %s/%s: %w", kind, key, err)
	}

	return strings.TrimSpace(string(raw)), true, nil
}

// Save records the fingerprint.
func (s *ObjectStore) Save(ctx context.Context, kind, key, fingerprint string) error {
	body := []byte(fingerprint + "\n")
	_, err := s.client.PutObject(ctx, s.bucket, s.key(kind, key),
		bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{ContentType: "text/plain"})
	if err != nil {
		return fmt.Errorf("failed to write fingerprint %s/%s: %w", kind, key, err)
	}
	return nil
}

// Delete removes the fingerprint record.
func (s *ObjectStore) Delete(ctx context.Context, kind, key string) error {
	err := s.client.RemoveObject(ctx, s.bucket, s.key(kind, key), minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to delete fingerprint %s/%s: %w", kind, key, err)
	}
	return nil
}

// List enumerates stored fingerprints for one entity kind.
func (s *ObjectStore) List(ctx context.Context, kind string) (map[string]string, error) {
	prefix := path.Join(s.prefix, kind) + "/"
	out := make(map[string]string)

	for info := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if info.Err != nil {
			return nil, fmt.Errorf("failed to list fingerprints for %s: %w", kind, info.Err)
		}

		key := strings.TrimPrefix(info.Key, prefix)
		sum, ok, err := s.Load(ctx, kind, key)
		if err != nil {
			return nil, err
		}
		if ok {
			out[key] = sum
		}
	}

	return out, nil
}

// NewStore creates the configured store backend.
func NewStore(cfg Config) (Store, error) {
	switch cfg.Backend {
	case "", "file":
		return NewFileStore(cfg.Dir), nil
	case "object":
		return NewObjectStore(cfg)
	default:
		return nil, fmt.Errorf("unknown state backend %q", cfg.Backend)
	}
}
