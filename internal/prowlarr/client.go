package prowlarr

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const searchPageSize = 100

// ClientConfig holds settings for creating a Prowlarr client.
type ClientConfig struct {
	URL     string
	APIKey  string
	Timeout time.Duration
	Logger  zerolog.Logger
}

// Client talks to a Prowlarr server's REST API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *RateLimiter
	logger     zerolog.Logger
}

// NewClient creates a Prowlarr client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, ErrInvalidURL
	}
	if cfg.APIKey == "" {
		return nil, ErrInvalidAPIKey
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    NewRateLimiter(DefaultRateLimiterConfig(cfg.Logger)),
		logger:     cfg.Logger.With().Str("component", "prowlarr-client").Logger(),
	}, nil
}

// TestConnection verifies connectivity and credentials.
func (c *Client) TestConnection(ctx context.Context) error {
	var status struct {
		Version string `json:"version"`
	}
	if err := c.doJSON(ctx, "/api/v1/system/status", nil, &status); err != nil {
		return WrapError("connect", err, "")
	}
	c.logger.Debug().Str("version", status.Version).Msg("connected to prowlarr")
	return nil
}

// GetIndexers returns the enabled indexers configured in Prowlarr.
func (c *Client) GetIndexers(ctx context.Context) ([]Indexer, error) {
	var all []Indexer
	if err := c.doJSON(ctx, "/api/v1/indexer", nil, &all); err != nil {
		return nil, WrapError("indexers", err, "")
	}

	enabled := make([]Indexer, 0, len(all))
	for _, idx := range all {
		if idx.Enable {
			enabled = append(enabled, idx)
		}
	}

	c.logger.Debug().Int("total", len(all)).Int("enabled", len(enabled)).Msg("fetched indexers")
	return enabled, nil
}

// Search queries the given indexers. Pagination is in fixed pages of 100
// results.
func (c *Client) Search(ctx context.Context, query string, indexerIDs []int, categories []int, page int) ([]SearchResult, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("type", "search")
	params.Set("limit", strconv.Itoa(searchPageSize))
	params.Set("offset", strconv.Itoa(page*searchPageSize))
	for _, id := range indexerIDs {
		params.Add("indexerIds", strconv.Itoa(id))
	}
	for _, cat := range categories {
		params.Add("categories", strconv.Itoa(cat))
	}

	var results []SearchResult
	if err := c.doJSON(ctx, "/api/v1/search", params, &results); err != nil {
		return nil, WrapError("search", err, query)
	}

	c.logger.Debug().
		Str("query", query).
		Ints("indexers", indexerIDs).
		Int("results", len(results)).
		Msg("search completed")

	return results, nil
}

func (c *Client) doJSON(ctx context.Context, path string, params url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	c.limiter.Wait()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.limiter.RecordError()
		if ctx.Err() != nil {
			return ErrConnectionTimeout
		}
		return fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		c.limiter.RecordRateLimited()
		return ErrRateLimited
	case resp.StatusCode == http.StatusUnauthorized:
		c.limiter.RecordError()
		return ErrInvalidAPIKey
	case resp.StatusCode != http.StatusOK:
		c.limiter.RecordError()
		return fmt.Errorf("%w: status %d", ErrConnectionFailed, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.limiter.RecordError()
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	c.limiter.RecordSuccess()
	return nil
}
