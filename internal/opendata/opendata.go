// Package opendata fetches facility details from the government open data
// services for kindergartens and childcare centers.
package opendata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/mompick/mompick-admin/internal/config"
)

// maxBody caps the upstream response size.
const maxBody = 8 << 20

var (
	// ErrNotFound is returned when the upstream has no facility for the code.
	ErrNotFound = errors.New("facility not found upstream")
	// ErrKeyMissing is returned when the API key of a service is not configured.
	ErrKeyMissing = errors.New("open data api key is not configured")
	// ErrCodeEmpty is returned when no facility code is given.
	ErrCodeEmpty = errors.New("facility code is required")
)

// StatusError is returned when the upstream answers with a non 2xx status.
type StatusError struct {
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("open data upstream returned %d", e.Status)
}

// Detail is the raw field set the upstream reports for a facility.
type Detail map[string]interface{}

// Client calls both open data services through one rate limiter.
type Client struct {
	http    *http.Client
	limiter *rate.Limiter
	cfg     config.OpenData
}

// New creates a client. Calls beyond RequestsPerSecond wait for their turn.
func New(cfg config.OpenData) *Client {
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	return &Client{
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(limit, burst),
		cfg:     cfg,
	}
}

func (c *Client) get(ctx context.Context, endpoint string, query url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "open data rate limit")
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, errors.Wrap(err, "parse open data url")
	}

	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "build open data request")
	}

	log.Debug().Str("host", u.Host).Str("path", u.Path).Msg("calling open data service")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "call open data service")
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &StatusError{Status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))

	return body, errors.Wrap(err, "read open data response")
}

type kindergartenResponse struct {
	Status     string   `json:"status"`
	KinderInfo []Detail `json:"kinderInfo"`
}

// Kindergarten returns the basic info of a kindergarten.
func (c *Client) Kindergarten(ctx context.Context, code string) (Detail, error) {
	if code == "" {
		return nil, ErrCodeEmpty
	}

	if c.cfg.KindergartenKey == "" {
		return nil, ErrKeyMissing
	}

	body, err := c.get(ctx, c.cfg.KindergartenURL, url.Values{
		"key":        {c.cfg.KindergartenKey},
		"kindercode": {code},
	})
	if err != nil {
		return nil, err
	}

	var resp kindergartenResponse
	if err = json.Unmarshal(body, &resp); err != nil {
		return nil, errors.Wrap(err, "decode kindergarten response")
	}

	if len(resp.KinderInfo) == 0 {
		return nil, ErrNotFound
	}

	return resp.KinderInfo[0], nil
}

// Childcare returns the details of a childcare center. The service lists the
// centers of a district; the one whose stcode matches is returned.
func (c *Client) Childcare(ctx context.Context, arcode, code string) (Detail, error) {
	if code == "" {
		return nil, ErrCodeEmpty
	}

	if c.cfg.ChildcareKey == "" {
		return nil, ErrKeyMissing
	}

	if arcode == "" {
		arcode = c.cfg.DefaultArcode
	}

	body, err := c.get(ctx, c.cfg.ChildcareURL, url.Values{
		"key":    {c.cfg.ChildcareKey},
		"arcode": {arcode},
		"stcode": {code},
	})
	if err != nil {
		return nil, err
	}

	items, err := parseItems(body)
	if err != nil {
		return nil, errors.Wrap(err, "decode childcare response")
	}

	for _, item := range items {
		if item["stcode"] == code || item["crcode"] == code {
			d := make(Detail, len(item))
			for k, v := range item {
				d[k] = v
			}

			return d, nil
		}
	}

	return nil, ErrNotFound
}
