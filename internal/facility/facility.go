// Package facility caches the government details of kindergartens and
// childcare centers in object storage together with admin edits.
package facility

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/mompick/mompick-admin/internal/db/models"
	"github.com/mompick/mompick-admin/internal/opendata"
	"github.com/mompick/mompick-admin/internal/storage"
)

// Where a detail was read from.
const (
	SourceCache = "cache"
	SourceAPI   = "api"
)

var (
	// ErrUnknownKind is returned for a facility kind that is not cached.
	ErrUnknownKind = errors.New("unknown facility kind")
	// ErrCodeEmpty is returned when no facility code is given.
	ErrCodeEmpty = errors.New("facility code is required")
)

// Upstream fetches facility details from the open data services.
type Upstream interface {
	Kindergarten(ctx context.Context, code string) (opendata.Detail, error)
	Childcare(ctx context.Context, arcode, code string) (opendata.Detail, error)
}

// Meta describes a cached document.
type Meta struct {
	Code         string    `json:"code"`
	Kind         string    `json:"kind"`
	LastSyncedAt time.Time `json:"lastSyncedAt"`
	Source       string    `json:"source"`
}

// Envelope is the cached document of one facility.
type Envelope struct {
	Meta       Meta                   `json:"meta"`
	Data       map[string]interface{} `json:"data"`
	CustomInfo map[string]interface{} `json:"customInfo"`
}

// Cache reads facility details through object storage.
type Cache struct {
	store    storage.Store
	bucket   string
	upstream Upstream
	now      func() time.Time
}

// New creates a cache over bucket.
func New(store storage.Store, bucket string, upstream Upstream) *Cache {
	return &Cache{
		store:    store,
		bucket:   bucket,
		upstream: upstream,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Key is the object key of a facility document.
func Key(kind, code string) string {
	return kind + "/details/" + code + ".json"
}

func check(kind, code string) error {
	if kind != models.FacilityKindergarten && kind != models.FacilityChildcare {
		return ErrUnknownKind
	}

	if code == "" {
		return ErrCodeEmpty
	}

	return nil
}

// load reads the cached document. A missing object yields nil without error.
// Documents written before the envelope format hold the bare upstream fields.
func (c *Cache) load(ctx context.Context, kind, code string) (*Envelope, error) {
	raw, err := c.store.Get(ctx, c.bucket, Key(kind, code))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil //nolint:nilnil
	}

	if err != nil {
		return nil, err
	}

	var doc map[string]json.RawMessage
	if err = json.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrapf(err, "decode cached %s", Key(kind, code))
	}

	var env Envelope

	if _, ok := doc["meta"]; ok {
		if err = json.Unmarshal(raw, &env); err != nil {
			return nil, errors.Wrapf(err, "decode cached %s", Key(kind, code))
		}
	} else if err = json.Unmarshal(raw, &env.Data); err != nil {
		return nil, errors.Wrapf(err, "decode cached %s", Key(kind, code))
	}

	env.Meta.Code = code
	env.Meta.Kind = kind

	return &env, nil
}

func (c *Cache) save(ctx context.Context, env *Envelope) error {
	raw, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode facility cache")
	}

	return c.store.Put(ctx, c.bucket, Key(env.Meta.Kind, env.Meta.Code), raw, "application/json")
}

func (c *Cache) fetch(ctx context.Context, kind, code, arcode string) (opendata.Detail, error) {
	if kind == models.FacilityKindergarten {
		return c.upstream.Kindergarten(ctx, code)
	}

	return c.upstream.Childcare(ctx, arcode, code)
}

// Detail returns the document of a facility, calling the upstream and
// storing the result when the cache has no data yet.
func (c *Cache) Detail(ctx context.Context, kind, code, arcode string) (*Envelope, error) {
	if err := check(kind, code); err != nil {
		return nil, err
	}

	env, err := c.load(ctx, kind, code)
	if err != nil {
		log.Warn().Err(err).Str("kind", kind).Str("code", code).Msg("reading facility cache failed, calling upstream")
	}

	if env != nil && len(env.Data) > 0 {
		env.Meta.Source = SourceCache
		return env, nil
	}

	return c.refresh(ctx, kind, code, arcode, env)
}

// Refresh replaces the cached data with a fresh upstream copy, keeping the
// admin entered custom info.
func (c *Cache) Refresh(ctx context.Context, kind, code, arcode string) (*Envelope, error) {
	if err := check(kind, code); err != nil {
		return nil, err
	}

	env, err := c.load(ctx, kind, code)
	if err != nil {
		return nil, err
	}

	return c.refresh(ctx, kind, code, arcode, env)
}

func (c *Cache) refresh(ctx context.Context, kind, code, arcode string, env *Envelope) (*Envelope, error) {
	data, err := c.fetch(ctx, kind, code, arcode)
	if err != nil {
		return nil, err
	}

	if env == nil {
		env = &Envelope{}
	}

	env.Meta = Meta{Code: code, Kind: kind, LastSyncedAt: c.now(), Source: SourceAPI}
	env.Data = data

	if err = c.save(ctx, env); err != nil {
		// the caller still gets the fresh data
		log.Error().Err(err).Str("kind", kind).Str("code", code).Msg("storing facility cache failed")
	}

	return env, nil
}

// MergeCustom sets the given keys of the custom info, creating the document
// when it does not exist yet.
func (c *Cache) MergeCustom(ctx context.Context, kind, code string, fields map[string]interface{}) (*Envelope, error) {
	if err := check(kind, code); err != nil {
		return nil, err
	}

	env, err := c.load(ctx, kind, code)
	if err != nil {
		return nil, err
	}

	if env == nil {
		env = &Envelope{Meta: Meta{Code: code, Kind: kind}}
	}

	if env.CustomInfo == nil {
		env.CustomInfo = make(map[string]interface{}, len(fields))
	}

	for k, v := range fields {
		env.CustomInfo[k] = v
	}

	if err = c.save(ctx, env); err != nil {
		return nil, err
	}

	return env, nil
}
