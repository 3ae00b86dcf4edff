// Package storage keeps images and cached documents in object storage.
package storage

import (
	"context"
	"errors"
	"path"
	"strings"
	"time"
)

// ErrNotFound is returned when an object does not exist.
var ErrNotFound = errors.New("object not found")

// Object describes a stored object.
type Object struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
	URL          string    `json:"url"`
}

// Store is a bucket based object store.
type Store interface {
	Put(ctx context.Context, bucket, key string, body []byte, contentType string) error
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	List(ctx context.Context, bucket, prefix string) ([]Object, error)
	Delete(ctx context.Context, bucket string, keys ...string) error
	PublicURL(bucket, key string) string
}

// KeyFromURL returns the object key of a public URL of bucket, if the URL
// points into that bucket.
func KeyFromURL(s Store, bucket, url string) (string, bool) {
	base := s.PublicURL(bucket, "")
	if url == "" || !strings.HasPrefix(url, base) {
		return "", false
	}

	key := strings.TrimPrefix(url, base)
	if i := strings.IndexAny(key, "?#"); i >= 0 {
		key = key[:i]
	}

	return key, key != ""
}

// ContentType guesses the content type of an image or document by extension.
func ContentType(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}

func joinURL(base, bucket, key string) string {
	return strings.TrimRight(base, "/") + "/" + bucket + "/" + key
}
