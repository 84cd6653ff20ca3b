package assets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Object maps a bucket key to a local file.
type Object struct {
	Key  string
	Path string
}

// Fetcher downloads encoder assets from S3-compatible storage (R2, MinIO, S3).
type Fetcher struct {
	client *minio.Client
	bucket string
	logger *slog.Logger
}

// NewFetcher constructs the storage adapter.
func NewFetcher(endpoint, accessKey, secretKey, bucket, region string, logger *slog.Logger) (*Fetcher, error) {
	if strings.TrimSpace(bucket) == "" {
		return nil, errors.New("asset bucket cannot be empty")
	}
	cleanEndpoint := sanitizeEndpoint(endpoint)
	useSSL := !strings.HasPrefix(strings.ToLower(strings.TrimSpace(endpoint)), "http://")
	client, err := minio.New(cleanEndpoint, &minio.Options{
		Creds:        credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure:       useSSL,
		Region:       region,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("init asset storage client: %w", err)
	}
	return &Fetcher{client: client, bucket: bucket, logger: logger.With("component", "assets.fetcher")}, nil
}

// Ensure downloads every object whose local file is missing. Files already on
// disk are left untouched.
func (f *Fetcher) Ensure(ctx context.Context, objects ...Object) error {
	for _, obj := range objects {
		if obj.Key == "" || obj.Path == "" {
			continue
		}
		if present(obj.Path) {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(obj.Path), 0o755); err != nil {
			return fmt.Errorf("create asset dir: %w", err)
		}
		if err := f.client.FGetObject(ctx, f.bucket, obj.Key, obj.Path, minio.GetObjectOptions{}); err != nil {
			return fmt.Errorf("download %s: %w", obj.Key, err)
		}
		f.logger.Info("asset downloaded", "key", obj.Key, "path", obj.Path)
	}
	return nil
}

func present(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir() && info.Size() > 0
}

// sanitizeEndpoint removes schemes and paths to satisfy minio.New expectations.
func sanitizeEndpoint(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "https://"), "http://")
	if i := strings.Index(raw, "/"); i >= 0 {
		raw = raw[:i]
	}
	return raw
}
