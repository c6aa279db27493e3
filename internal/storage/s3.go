package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chartmuseum/storage"
)

// S3Config encapsulates the connection info for an S3-compatible bucket
// holding exported forecast reports.
type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// S3Client implements ObjectStorage for S3-compatible services.
type S3Client struct {
	backend storage.Backend
}

// NewS3Client builds a new S3Client backed by chartmuseum's Amazon storage backend.
func NewS3Client(cfg S3Config) (*S3Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("storage endpoint must be provided")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("storage credentials must be provided")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("storage bucket must be provided")
	}

	endpoint := cfg.Endpoint
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		scheme := "https"
		if !cfg.UseSSL {
			scheme = "http"
		}
		endpoint = fmt.Sprintf("%s://%s", scheme, strings.TrimPrefix(cfg.Endpoint, "//"))
	}

	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	os.Setenv("AWS_ACCESS_KEY_ID", cfg.AccessKey)
	os.Setenv("AWS_SECRET_ACCESS_KEY", cfg.SecretKey)
	os.Setenv("AWS_REGION", region)
	os.Setenv("AWS_DEFAULT_REGION", region)

	backend := storage.NewAmazonS3BackendWithOptions(
		cfg.Bucket,
		"", // no prefix
		region,
		endpoint,
		"",
		&storage.AmazonS3Options{
			S3ForcePathStyle: awsBool(true),
		},
	)

	return &S3Client{backend: backend}, nil
}

// ListObjects lists all objects for a given prefix.
func (c *S3Client) ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	files, err := c.backend.ListObjects(prefix)
	if err != nil {
		return nil, fmt.Errorf("storage list failed: %w", err)
	}
	results := make([]ObjectInfo, 0)
	for _, object := range files {
		results = append(results, ObjectInfo{
			Key:  object.Path,
			Size: int64(len(object.Content)),
		})
	}
	return results, nil
}

// DownloadObject downloads an object to the provided destination path.
func (c *S3Client) DownloadObject(ctx context.Context, key, destPath string) error {
	object, err := c.backend.GetObject(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("failed creating directory for %s: %w", destPath, err)
	}
	if err := os.WriteFile(destPath, object.Content, 0o644); err != nil {
		return fmt.Errorf("failed writing %s: %w", destPath, err)
	}
	return nil
}

// UploadObject uploads the given bytes under key.
func (c *S3Client) UploadObject(ctx context.Context, key string, data []byte) error {
	if err := c.backend.PutObject(key, data); err != nil {
		return fmt.Errorf("storage upload failed: %w", err)
	}
	return nil
}

var _ ObjectStorage = (*S3Client)(nil)

func awsBool(v bool) *bool {
	return &v
}
