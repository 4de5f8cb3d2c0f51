package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/storage/v1"
)

// DefaultGCSBaseURL is the public host for objects in a GCS bucket.
const DefaultGCSBaseURL = "https://storage.googleapis.com"

// GCSConfig configures a GCSStore.
type GCSConfig struct {
	Bucket          string
	CredentialsPath string
	CredentialsJSON []byte
	// PublicBaseURL overrides DefaultGCSBaseURL, e.g. for a CDN in front of the bucket.
	PublicBaseURL string
	// Options are appended to the client options; tests use them to point at a fake endpoint.
	Options []option.ClientOption
}

// GCSStore keeps objects in a Google Cloud Storage bucket.
type GCSStore struct {
	service *storage.Service
	bucket  string
	base    string
}

// NewGCSStore creates the storage client. Without explicit credentials the
// application default credentials are used.
func NewGCSStore(ctx context.Context, cfg GCSConfig) (*GCSStore, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("gcs: bucket is required")
	}

	var opts []option.ClientOption
	if cfg.CredentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsPath))
	} else if len(cfg.CredentialsJSON) > 0 {
		opts = append(opts, option.WithCredentialsJSON(cfg.CredentialsJSON))
	}
	opts = append(opts, cfg.Options...)

	service, err := storage.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs: failed to create service: %w", err)
	}

	base := cfg.PublicBaseURL
	if base == "" {
		base = DefaultGCSBaseURL
	}
	return &GCSStore{
		service: service,
		bucket:  cfg.Bucket,
		base:    strings.TrimSuffix(base, "/") + "/" + cfg.Bucket + "/",
	}, nil
}

func (s *GCSStore) Upload(ctx context.Context, key, contentType string, r io.Reader) (string, error) {
	object := &storage.Object{
		Name:         key,
		ContentType:  contentType,
		CacheControl: "public, max-age=31536000",
	}
	_, err := s.service.Objects.Insert(s.bucket, object).
		Media(r, googleapi.ContentType(contentType)).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("gcs: failed to upload %q: %w", key, err)
	}
	return s.base + escapeKey(key), nil
}

func (s *GCSStore) Delete(ctx context.Context, rawURL string) error {
	if !s.Owns(rawURL) {
		return fmt.Errorf("gcs: url %q is not in bucket %s", rawURL, s.bucket)
	}
	key, err := url.PathUnescape(strings.TrimPrefix(rawURL, s.base))
	if err != nil {
		return fmt.Errorf("gcs: invalid object url %q: %w", rawURL, err)
	}

	err = s.service.Objects.Delete(s.bucket, key).Context(ctx).Do()
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound {
		return nil
	}
	if err != nil {
		return fmt.Errorf("gcs: failed to delete %q: %w", key, err)
	}
	return nil
}

// Ping reads the bucket metadata.
func (s *GCSStore) Ping(ctx context.Context) error {
	if _, err := s.service.Buckets.Get(s.bucket).Context(ctx).Do(); err != nil {
		return fmt.Errorf("gcs: bucket %s unavailable: %w", s.bucket, err)
	}
	return nil
}

func (s *GCSStore) Owns(rawURL string) bool {
	return strings.HasPrefix(rawURL, s.base) && len(rawURL) > len(s.base)
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
