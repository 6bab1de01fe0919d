package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"
)

// ErrNotFound is returned when a key does not exist in the store.
var ErrNotFound = errors.New("object not found")

// ErrInvalidKey is returned for keys that are empty or would escape a flat namespace.
var ErrInvalidKey = errors.New("invalid object key")

// MetaContentType is the metadata entry providers use as the object's content type.
const MetaContentType = "content_type"

// Config contains the information required to talk to an object store.
type Config struct {
	Provider      string
	LocalDir      string
	Endpoint      string
	Region        string
	Bucket        string
	AccessKey     string
	SecretKey     string
	UseSSL        bool
	PublicBaseURL string
}

// Object describes a stored object.
type Object struct {
	Key         string    `json:"name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"contentType,omitempty"`
	Modified    time.Time `json:"modified"`
}

// Client represents the capabilities the publisher expects from media storage.
// Keys are flat names; URL returns the externally reachable address of a key.
type Client interface {
	Put(ctx context.Context, key string, reader io.Reader, size int64, metadata map[string]string) error
	Open(ctx context.Context, key string) (io.ReadCloser, Object, error)
	List(ctx context.Context) ([]Object, error)
	Remove(ctx context.Context, key string) error
	URL(key string) string
	BaseURL() string
	Close() error
}

// New creates an object store client based on the given configuration.
func New(cfg Config) (Client, error) {
	switch strings.ToLower(cfg.Provider) {
	case "local", "":
		return newLocalClient(cfg)
	case "minio", "s3":
		return newMinioClient(cfg)
	case "memory":
		return NewMemory(cfg.PublicBaseURL), nil
	default:
		return nil, fmt.Errorf("unsupported object store provider: %s", cfg.Provider)
	}
}

// ValidKey reports whether key is a single path element safe to store and serve.
func ValidKey(key string) bool {
	if key == "" || key == "." || key == ".." {
		return false
	}
	if strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return false
	}
	return true
}

func publicURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + url.PathEscape(key)
}
