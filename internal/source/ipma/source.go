package ipma

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"weather_syncer/internal/domain"
)

const (
	SourceID   = "ipma"
	SourceName = "IPMA Daily Forecast"

	// dataUpdate layout used by the provider, e.g. "2026-08-31T10:31:02".
	updatedAtLayout = "2006-01-02T15:04:05"
)

// Config holds IPMA client configuration.
type Config struct {
	ForecastURL string
	CatalogURL  string
	Timeout     time.Duration
}

// Client fetches the IPMA open-data files. One call means one outbound
// request: retry policy belongs to the caller. A circuit breaker sits in
// front so a flapping upstream fails fast instead of burning the timeout
// on every scheduled run.
type Client struct {
	httpClient  *http.Client
	forecastURL string
	catalogURL  string
	breaker     *gobreaker.CircuitBreaker
	logger      *slog.Logger
}

// New creates a new IPMA client.
func New(cfg Config, logger *slog.Logger) *Client {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    SourceID,
		Timeout: 60 * time.Second,
	})

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		forecastURL: cfg.ForecastURL,
		catalogURL:  cfg.CatalogURL,
		breaker:     breaker,
		logger:      logger.With("source", SourceID),
	}
}

// ID returns the source identifier.
func (c *Client) ID() string {
	return SourceID
}

// Name returns human-readable name.
func (c *Client) Name() string {
	return SourceName
}

// Fetch retrieves one snapshot of the daily forecast feed. A transport
// or status failure wraps domain.ErrUpstreamUnavailable; an unexpected
// payload shape wraps domain.ErrMalformedFeed and nothing is parsed
// partially.
func (c *Client) Fetch(ctx context.Context) (*domain.Feed, error) {
	result, err := c.breaker.Execute(func() (any, error) {
		return c.fetchFeed(ctx)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: circuit open", domain.ErrUpstreamUnavailable)
		}
		return nil, err
	}

	return result.(*domain.Feed), nil
}

func (c *Client) fetchFeed(ctx context.Context) (*domain.Feed, error) {
	body, err := c.get(ctx, c.forecastURL)
	if err != nil {
		return nil, err
	}

	var env feedEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", domain.ErrMalformedFeed, err)
	}
	if env.Data == nil {
		return nil, fmt.Errorf("%w: missing data array", domain.ErrMalformedFeed)
	}

	feed := &domain.Feed{Rows: env.Data}
	if ts, err := time.ParseInLocation(updatedAtLayout, env.DataUpdate, time.UTC); err == nil {
		feed.UpdatedAt = &ts
	}

	c.logger.Debug("fetched daily forecast feed",
		"rows", len(feed.Rows),
		"data_update", env.DataUpdate,
	)

	return feed, nil
}

// FetchCatalog retrieves the districts/islands location catalog. Used by
// the seeder, never by the sync engine.
func (c *Client) FetchCatalog(ctx context.Context) ([]domain.City, error) {
	body, err := c.get(ctx, c.catalogURL)
	if err != nil {
		return nil, err
	}

	var env catalogEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", domain.ErrMalformedFeed, err)
	}
	if env.Data == nil {
		return nil, fmt.Errorf("%w: missing data array", domain.ErrMalformedFeed)
	}

	cities := make([]domain.City, 0, len(env.Data))
	for _, entry := range env.Data {
		cities = append(cities, domain.City{
			ID:       entry.GlobalIDLocal,
			Name:     entry.Local,
			District: entry.District,
			IsActive: true,
		})
	}

	c.logger.Debug("fetched location catalog", "cities", len(cities))

	return cities, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "WeatherSyncer/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", domain.ErrUpstreamUnavailable, resp.StatusCode)
	}

	buf, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", domain.ErrUpstreamUnavailable, err)
	}

	return buf, nil
}
