package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

type memoryObject struct {
	body         []byte
	contentType  string
	lastModified time.Time
}

// Memory keeps objects in process memory. It serves development setups and
// tests.
type Memory struct {
	mu      sync.RWMutex
	baseURL string
	buckets map[string]map[string]memoryObject
}

// NewMemory creates an empty store whose public URLs start with baseURL.
func NewMemory(baseURL string) *Memory {
	if baseURL == "" {
		baseURL = "memory://objects"
	}

	return &Memory{baseURL: baseURL, buckets: make(map[string]map[string]memoryObject)}
}

// Put stores a copy of body.
func (m *Memory) Put(_ context.Context, bucket, key string, body []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.buckets[bucket]
	if !ok {
		b = make(map[string]memoryObject)
		m.buckets[bucket] = b
	}

	b[key] = memoryObject{
		body:         append([]byte(nil), body...),
		contentType:  contentType,
		lastModified: time.Now().UTC(),
	}

	return nil
}

// Get returns a copy of the stored object.
func (m *Memory) Get(_ context.Context, bucket, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	o, ok := m.buckets[bucket][key]
	if !ok {
		return nil, ErrNotFound
	}

	return append([]byte(nil), o.body...), nil
}

// List returns the objects below prefix sorted by key.
func (m *Memory) List(_ context.Context, bucket, prefix string) ([]Object, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	objects := make([]Object, 0)

	for key, o := range m.buckets[bucket] {
		if !strings.HasPrefix(key, prefix) {
			continue
		}

		objects = append(objects, Object{
			Key:          key,
			Size:         int64(len(o.body)),
			LastModified: o.lastModified,
			URL:          m.PublicURL(bucket, key),
		})
	}

	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })

	return objects, nil
}

// Delete removes objects; missing keys are ignored.
func (m *Memory) Delete(_ context.Context, bucket string, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, k := range keys {
		delete(m.buckets[bucket], k)
	}

	return nil
}

// PublicURL is the address of an object.
func (m *Memory) PublicURL(bucket, key string) string {
	return joinURL(m.baseURL, bucket, key)
}
