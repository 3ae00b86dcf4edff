package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mompick/mompick-admin/internal/config"
)

func TestMemory(t *testing.T) {
	ctx := context.Background()
	m := NewMemory("https://cdn.example.com")

	_, err := m.Get(ctx, "b", "missing")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, m.Put(ctx, "b", "u1/a.jpg", []byte("aa"), "image/jpeg"))
	require.NoError(t, m.Put(ctx, "b", "u1/children/c.jpg", []byte("c"), "image/jpeg"))
	require.NoError(t, m.Put(ctx, "b", "u2/b.jpg", []byte("b"), "image/jpeg"))

	got, err := m.Get(ctx, "b", "u1/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte("aa"), got)

	objects, err := m.List(ctx, "b", "u1/")
	require.NoError(t, err)
	require.Len(t, objects, 2)
	assert.Equal(t, "u1/a.jpg", objects[0].Key)
	assert.Equal(t, int64(2), objects[0].Size)
	assert.Equal(t, "https://cdn.example.com/b/u1/a.jpg", objects[0].URL)

	require.NoError(t, m.Delete(ctx, "b", "u1/a.jpg", "nope"))

	objects, err = m.List(ctx, "b", "u1/")
	require.NoError(t, err)
	assert.Len(t, objects, 1)
}

func TestKeyFromURL(t *testing.T) {
	m := NewMemory("https://cdn.example.com/")

	testCases := []struct {
		url string
		key string
		ok  bool
	}{
		{url: "https://cdn.example.com/banners/x.png", key: "x.png", ok: true},
		{url: "https://cdn.example.com/banners/a/b.png?v=2", key: "a/b.png", ok: true},
		{url: "https://cdn.example.com/notices/x.png"},
		{url: "https://elsewhere/banners/x.png"},
		{url: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.url, func(t *testing.T) {
			key, ok := KeyFromURL(m, "banners", tc.url)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.key, key)
		})
	}
}

func TestS3PublicURL(t *testing.T) {
	testCases := []struct {
		name string
		cfg  config.Storage
		want string
	}{
		{
			name: "public base",
			cfg:  config.Storage{PublicBaseURL: "https://img.example.com", Endpoint: "http://minio:9000"},
			want: "https://img.example.com/banners/x.png",
		},
		{
			name: "endpoint",
			cfg:  config.Storage{Endpoint: "http://minio:9000/"},
			want: "http://minio:9000/banners/x.png",
		},
		{
			name: "aws",
			cfg:  config.Storage{Region: "ap-northeast-2"},
			want: "https://banners.s3.ap-northeast-2.amazonaws.com/x.png",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := &S3{cfg: tc.cfg}
			assert.Equal(t, tc.want, s.PublicURL("banners", "x.png"))
		})
	}
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "image/jpeg", ContentType("a.JPG"))
	assert.Equal(t, "image/png", ContentType("a.png"))
	assert.Equal(t, "application/json", ContentType("k/details/1.json"))
	assert.Equal(t, "application/octet-stream", ContentType("a"))
}
