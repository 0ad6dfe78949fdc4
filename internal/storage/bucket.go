// Package storage adapts cloud.google.com/go/storage into the narrow
// Storage interface spec §6.2 requires: put an object under a
// {userId}/{plantIdOrTempId}/{kind}-{timestampMs}.jpg key, and hand back a
// short-lived signed URL rather than a public one (the bucket is private).
package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/ssingh-rookie/LeafWise-API/internal/platform/logger"
)

// DefaultSignedURLTTL is the spec §6.2 default expiry for signed URLs.
const DefaultSignedURLTTL = 3600 * time.Second

type Bucket interface {
	// Put uploads file under key, sniffing content type from the key's
	// extension. Safe for concurrent use.
	Put(ctx context.Context, key string, file io.Reader) error
	Delete(ctx context.Context, key string) error
	// SignedURL returns a time-limited URL clients can use to read key
	// without authenticating against the bucket themselves.
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type bucket struct {
	log          *logger.Logger
	client       *storage.Client
	bucketName   string
	mode         ObjectStorageMode
	emulatorHost string

	// signing identity, only required in ObjectStorageModeGCS; the emulator
	// has no private key to sign with, so its SignedURL is a best-effort
	// expiring media URL instead of a cryptographically signed one.
	signBy string
}

func NewBucket(log *logger.Logger) (Bucket, error) {
	cfg, err := ResolveObjectStorageConfigFromEnv()
	if err != nil {
		return nil, fmt.Errorf("resolve object storage config: %w", err)
	}
	return NewBucketWithConfig(log, cfg)
}

func NewBucketWithConfig(log *logger.Logger, cfg ObjectStorageConfig) (Bucket, error) {
	if err := ValidateObjectStorageConfig(cfg); err != nil {
		return nil, fmt.Errorf("validate object storage config: %w", err)
	}
	serviceLog := log.With("service", "Bucket")

	bucketName := strings.TrimSpace(os.Getenv("PHOTO_GCS_BUCKET_NAME"))
	if bucketName == "" {
		return nil, fmt.Errorf("missing env var PHOTO_GCS_BUCKET_NAME")
	}
	signBy := strings.TrimSpace(os.Getenv("GCS_SIGNER_SERVICE_ACCOUNT_EMAIL"))

	ctx := context.Background()
	client, err := newStorageClientForMode(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	serviceLog.Info(
		"Object storage initialized",
		"mode", cfg.Mode,
		"emulator_host", cfg.EmulatorHost,
		"bucket", bucketName,
	)

	return &bucket{
		log:          serviceLog,
		client:       client,
		bucketName:   bucketName,
		mode:         cfg.Mode,
		emulatorHost: strings.TrimRight(cfg.EmulatorHost, "/"),
		signBy:       signBy,
	}, nil
}

func newStorageClientForMode(ctx context.Context, cfg ObjectStorageConfig) (*storage.Client, error) {
	switch cfg.Mode {
	case ObjectStorageModeGCS:
		opts := ClientOptionsFromEnv()
		opts = append(opts, option.WithScopes(storage.ScopeReadWrite))
		return storage.NewClient(ctx, opts...)
	case ObjectStorageModeGCSEmulator:
		endpoint := strings.TrimRight(cfg.EmulatorHost, "/")
		_ = os.Setenv("STORAGE_EMULATOR_HOST", endpoint)
		return storage.NewClient(ctx, option.WithoutAuthentication())
	default:
		return nil, &ObjectStorageConfigError{Code: ObjectStorageConfigErrorInvalidMode, Mode: string(cfg.Mode)}
	}
}

func (b *bucket) Put(ctx context.Context, key string, file io.Reader) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := b.client.Bucket(b.bucketName).Object(key).NewWriter(ctx)
	if ct := contentTypeForKey(key); ct != "" {
		w.ContentType = ct
	}
	if _, err := io.Copy(w, file); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write object %q: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close writer for object %q: %w", key, err)
	}
	return nil
}

func (b *bucket) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := b.client.Bucket(b.bucketName).Object(key).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete object %q: %w", key, err)
	}
	return nil
}

func (b *bucket) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = DefaultSignedURLTTL
	}
	if b.mode == ObjectStorageModeGCSEmulator {
		return b.emulatorSignedURL(key, ttl), nil
	}

	opts := &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  "GET",
		Expires: time.Now().Add(ttl),
	}
	if b.signBy != "" {
		opts.GoogleAccessID = b.signBy
	}
	signed, err := b.client.Bucket(b.bucketName).SignedURL(key, opts)
	if err != nil {
		return "", fmt.Errorf("failed to sign url for object %q: %w", key, err)
	}
	return signed, nil
}

// emulatorSignedURL appends an explicit expiry to the emulator's media URL.
// The fake-gcs-server emulator has no signing key, so this does not carry
// cryptographic guarantees; it's sufficient to exercise the same call shape
// in local/dev environments.
func (b *bucket) emulatorSignedURL(key string, ttl time.Duration) string {
	base := b.emulatorHost
	if base == "" {
		return key
	}
	return fmt.Sprintf(
		"%s/storage/v1/b/%s/o/%s?alt=media&expires=%d",
		base,
		url.PathEscape(b.bucketName),
		url.PathEscape(key),
		time.Now().Add(ttl).Unix(),
	)
}

func contentTypeForKey(key string) string {
	s := strings.ToLower(strings.TrimSpace(key))
	if i := strings.Index(s, "?"); i >= 0 {
		s = s[:i]
	}
	switch {
	case strings.HasSuffix(s, ".jpg"), strings.HasSuffix(s, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(s, ".png"):
		return "image/png"
	case strings.HasSuffix(s, ".webp"):
		return "image/webp"
	default:
		return ""
	}
}
