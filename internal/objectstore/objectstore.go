// Package objectstore resolves uploaded answer images to URLs an image
// analyzer can fetch.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ErrInvalidRef is returned for references that cannot name an object.
var ErrInvalidRef = errors.New("invalid image reference")

// Config locates the bucket holding uploaded answer images.
type Config struct {
	Endpoint  string        `mapstructure:"endpoint"`
	AccessKey string        `mapstructure:"access_key"`
	SecretKey string        `mapstructure:"secret_key"`
	Bucket    string        `mapstructure:"bucket"`
	Region    string        `mapstructure:"region"`
	UseSSL    bool          `mapstructure:"use_ssl"`
	URLExpiry time.Duration `mapstructure:"url_expiry"`
}

// Enabled reports whether an endpoint is configured.
func (c Config) Enabled() bool { return c.Endpoint != "" }

// Image is a fetchable image.
type Image struct {
	URL       string
	MediaType string
}

// Resolver turns an image reference into a fetchable Image.
type Resolver interface {
	Resolve(ctx context.Context, ref string) (Image, error)
}

// Store presigns GET URLs for objects in one bucket. References that are
// already http(s) URLs are passed through.
type Store struct {
	client *minio.Client
	bucket string
	expiry time.Duration
}

// New creates a Store. It does not contact the server.
func New(cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("objectstore: bucket is required")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("objectstore: create client: %w", err)
	}
	expiry := cfg.URLExpiry
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}
	return &Store{client: client, bucket: cfg.Bucket, expiry: expiry}, nil
}

// Resolve presigns ref, an object key such as "answers/u1/p3.jpg".
func (s *Store) Resolve(ctx context.Context, ref string) (Image, error) {
	if isURL(ref) {
		return Image{URL: ref, MediaType: mediaType(ref)}, nil
	}
	key, err := objectKey(ref)
	if err != nil {
		return Image{}, err
	}
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, s.expiry, nil)
	if err != nil {
		return Image{}, fmt.Errorf("objectstore: presign %s: %w", key, err)
	}
	return Image{URL: u.String(), MediaType: mediaType(key)}, nil
}

// Exists reports whether the referenced object is present.
func (s *Store) Exists(ctx context.Context, ref string) (bool, error) {
	key, err := objectKey(ref)
	if err != nil {
		return false, err
	}
	_, err = s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, nil
		}
		return false, fmt.Errorf("objectstore: stat %s: %w", key, err)
	}
	return true, nil
}

// URLResolver only accepts references that are already http(s) URLs. It
// is used when no bucket is configured.
type URLResolver struct{}

func (URLResolver) Resolve(_ context.Context, ref string) (Image, error) {
	if !isURL(ref) {
		return Image{}, fmt.Errorf("%w: %q is not a URL and no object store is configured", ErrInvalidRef, ref)
	}
	return Image{URL: ref, MediaType: mediaType(ref)}, nil
}

func isURL(ref string) bool {
	return strings.HasPrefix(ref, "https://") || strings.HasPrefix(ref, "http://")
}

func objectKey(ref string) (string, error) {
	key := strings.TrimPrefix(strings.TrimSpace(ref), "/")
	if key == "" || strings.Contains(key, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidRef, ref)
	}
	return key, nil
}

func mediaType(name string) string {
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	if t := mime.TypeByExtension(strings.ToLower(path.Ext(name))); t != "" {
		return t
	}
	return "image/jpeg"
}
