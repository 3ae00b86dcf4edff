package handler

import (
	"context"
	"crypto/rand"
	"errors"
	"io"
	"path"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog/log"

	"github.com/mompick/mompick-admin/internal/storage"
)

// MaxUploadSize is the largest accepted upload.
const MaxUploadSize = 10 << 20

var (
	// ErrFileMissing is returned when the multipart form has no file field.
	ErrFileMissing = errors.New("file is required")
	// ErrFileTooLarge is returned for uploads above MaxUploadSize.
	ErrFileTooLarge = errors.New("file is too large")
	// ErrNotImage is returned when the upload is not an image.
	ErrNotImage = errors.New("file must be an image")
)

// Upload stores the multipart "file" field under prefix in bucket and writes
// {success, url, key}.
func Upload(c *fiber.Ctx, store storage.Store, bucket, prefix string) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return BadRequest(c, ErrFileMissing)
	}

	if fh.Size > MaxUploadSize {
		return BadRequest(c, ErrFileTooLarge)
	}

	contentType := storage.ContentType(fh.Filename)
	if !strings.HasPrefix(contentType, "image/") {
		return BadRequest(c, ErrNotImage)
	}

	f, err := fh.Open()
	if err != nil {
		return Internal(c, "failed to read upload", err)
	}
	defer f.Close()

	body, err := io.ReadAll(f)
	if err != nil {
		return Internal(c, "failed to read upload", err)
	}

	key := path.Join(prefix, ObjectName(fh.Filename, time.Now()))
	if err = store.Put(c.UserContext(), bucket, key, body, contentType); err != nil {
		return Internal(c, "failed to store upload", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"url":     store.PublicURL(bucket, key),
		"key":     key,
	})
}

// ObjectName returns a sortable unique object name keeping the extension.
func ObjectName(filename string, now time.Time) string {
	ext := strings.ToLower(path.Ext(filename))

	return strings.ToLower(ulid.MustNew(ulid.Timestamp(now), rand.Reader).String()) + ext
}

// PurgeURLs deletes the objects of bucket addressed by urls and returns how
// many were removed. URLs outside the bucket are skipped; failures are logged.
func PurgeURLs(ctx context.Context, store storage.Store, bucket string, urls []string) int {
	keys := make([]string, 0, len(urls))

	for _, u := range urls {
		if key, ok := storage.KeyFromURL(store, bucket, u); ok {
			keys = append(keys, key)
		}
	}

	if len(keys) == 0 {
		return 0
	}

	if err := store.Delete(ctx, bucket, keys...); err != nil {
		log.Warn().Err(err).Str("bucket", bucket).Int("objects", len(keys)).Msg("failed to purge objects")
		return 0
	}

	return len(keys)
}
