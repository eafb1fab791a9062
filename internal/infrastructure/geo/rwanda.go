// Package geo looks up Rwanda's administrative divisions through a
// third-party geography API.
package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/agrisure/portal/internal/api/metrics"
	"github.com/agrisure/portal/internal/core/domain"
	"github.com/agrisure/portal/internal/core/ports"
	"github.com/agrisure/portal/internal/infrastructure/httpclient"
)

const (
	HeaderHost = "X-RapidAPI-Host"
	HeaderKey  = "X-RapidAPI-Key"
)

var ErrProvinceRequired = errors.New("province is required")

type Options struct {
	BaseURL    string
	Host       string
	Key        string
	HTTPClient *http.Client
	// FanoutRPS caps district lookups per second during search. Zero or less
	// means unlimited.
	FanoutRPS float64
	Logger    zerolog.Logger
}

// Client is safe for concurrent use.
type Client struct {
	ex      ports.Executor
	limiter *rate.Limiter
	log     zerolog.Logger
}

// New builds a client with its own executor. The geography API never sees
// the portal session token.
func New(opts Options) *Client {
	headers := http.Header{}
	if opts.Host != "" {
		headers.Set(HeaderHost, opts.Host)
	}
	if opts.Key != "" {
		headers.Set(HeaderKey, opts.Key)
	}
	ex := httpclient.New(httpclient.Options{
		Name:       "geo",
		BaseURL:    opts.BaseURL,
		HTTPClient: opts.HTTPClient,
		Headers:    headers,
		Logger:     opts.Logger,
	})
	return NewWithExecutor(ex, opts.FanoutRPS, opts.Logger)
}

func NewWithExecutor(ex ports.Executor, fanoutRPS float64, log zerolog.Logger) *Client {
	limit := rate.Inf
	if fanoutRPS > 0 {
		limit = rate.Limit(fanoutRPS)
	}
	return &Client{
		ex:      ex,
		limiter: rate.NewLimiter(limit, 1),
		log:     log.With().Str("component", "geo").Logger(),
	}
}

// Provinces never fails: any error from the API yields the built-in list.
func (c *Client) Provinces(ctx context.Context) []string {
	names, err := c.names(ctx, "/provinces")
	if err != nil {
		metrics.LocationFallbackTotal.Inc()
		c.log.Warn().Err(err).Msg("provinces lookup failed, serving fallback list")
		return append([]string(nil), domain.FallbackProvinces...)
	}
	return names
}

func (c *Client) Districts(ctx context.Context, province string) ([]string, error) {
	return c.names(ctx, join("provinces", province, "districts"))
}

func (c *Client) Sectors(ctx context.Context, province, district string) ([]string, error) {
	return c.names(ctx, join("provinces", province, "districts", district, "sectors"))
}

func (c *Client) Villages(ctx context.Context, province, district, sector string) ([]string, error) {
	return c.names(ctx, join("provinces", province, "districts", district, "sectors", sector, "villages"))
}

// Hierarchy fetches the children of every level named in the path
// concurrently. Sectors are fetched only when district is set, villages only
// when sector is set too. One failed lookup fails the whole result.
func (c *Client) Hierarchy(ctx context.Context, province, district, sector string) (*domain.Hierarchy, error) {
	if province == "" {
		return nil, ErrProvinceRequired
	}
	h := &domain.Hierarchy{Province: province, District: district, Sector: sector}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		h.Districts, err = c.Districts(gctx, province)
		return err
	})
	if district != "" {
		g.Go(func() error {
			var err error
			h.Sectors, err = c.Sectors(gctx, province, district)
			return err
		})
		if sector != "" {
			g.Go(func() error {
				var err error
				h.Villages, err = c.Villages(gctx, province, district, sector)
				return err
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("location hierarchy %s: %w", province, err)
	}
	return h, nil
}

// Search matches query case-insensitively against province names and,
// when includeDistricts is set, against the districts of every province.
// District lookups run one at a time under the fan-out limiter; a failed
// lookup is logged and skipped.
func (c *Client) Search(ctx context.Context, query string, includeDistricts bool) ([]domain.LocationMatch, error) {
	matches := []domain.LocationMatch{}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return matches, nil
	}

	provinces := c.Provinces(ctx)
	for _, p := range provinces {
		if strings.Contains(strings.ToLower(p), q) {
			matches = append(matches, domain.LocationMatch{Level: domain.LevelProvince, Name: p, Province: p})
		}
	}
	if !includeDistricts {
		return matches, nil
	}

	for _, p := range provinces {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		districts, err := c.Districts(ctx, p)
		if err != nil {
			metrics.LocationFanoutFailures.Inc()
			c.log.Warn().Err(err).Str("province", p).Msg("district lookup failed during search")
			continue
		}
		for _, d := range districts {
			if strings.Contains(strings.ToLower(d), q) {
				matches = append(matches, domain.LocationMatch{Level: domain.LevelDistrict, Name: d, Province: p})
			}
		}
	}
	return matches, nil
}

func (c *Client) names(ctx context.Context, path string) ([]string, error) {
	items, err := httpclient.List[locationName](ctx, c.ex, ports.Request{Method: http.MethodGet, Path: path})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it != "" {
			out = append(out, string(it))
		}
	}
	return out, nil
}

func join(segments ...string) string {
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return "/" + strings.Join(segments, "/")
}

// locationName decodes either a bare name or an object carrying "name".
type locationName string

func (n *locationName) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*n = locationName(s)
		return nil
	}
	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	*n = locationName(obj.Name)
	return nil
}
