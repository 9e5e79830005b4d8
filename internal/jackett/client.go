package jackett

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bridgearr/bridgearr/internal/torznab"
)

const (
	searchPageSize = 100
	// aggregateIndexer is the virtual indexer Jackett exposes for
	// server-wide queries such as t=indexers.
	aggregateIndexer = "all"
)

// ClientConfig holds settings for creating a Jackett client.
type ClientConfig struct {
	Host    string
	APIKey  string
	Timeout time.Duration
	Logger  zerolog.Logger
}

// Client talks to a Jackett server's Torznab API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a Jackett client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.Host == "" {
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
		baseURL:    strings.TrimSuffix(cfg.Host, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     cfg.Logger.With().Str("component", "jackett-client").Logger(),
	}, nil
}

// TorznabURL returns the Torznab endpoint for an indexer.
func (c *Client) TorznabURL(indexerID string) string {
	return fmt.Sprintf("%s/api/v2.0/indexers/%s/results/torznab/", c.baseURL, indexerID)
}

// FetchIndexers returns the indexers configured on the Jackett server.
func (c *Client) FetchIndexers(ctx context.Context) ([]torznab.Indexer, error) {
	params := url.Values{}
	params.Set("apikey", c.apiKey)
	params.Set("t", "indexers")
	params.Set("configured", "true")

	body, err := c.get(ctx, aggregateIndexer, params)
	if err != nil {
		return nil, WrapError("indexers", err, "")
	}

	var list torznab.IndexerList
	if err := xml.Unmarshal(body, &list); err != nil {
		return nil, WrapError("indexers", ErrMalformedResponse, err.Error())
	}

	c.logger.Debug().Int("count", len(list.Indexers)).Msg("fetched configured indexers")
	return list.Indexers, nil
}

// Search queries one indexer's Torznab endpoint. Pagination is in fixed
// pages of 100 results.
func (c *Client) Search(ctx context.Context, indexerID, query string, categories []int, page int) ([]torznab.Item, error) {
	params := url.Values{}
	params.Set("apikey", c.apiKey)
	params.Set("t", "search")
	if query != "" {
		params.Set("q", query)
	}
	if len(categories) > 0 {
		cats := make([]string, len(categories))
		for i, cat := range categories {
			cats[i] = strconv.Itoa(cat)
		}
		params.Set("cat", strings.Join(cats, ","))
	}
	params.Set("limit", strconv.Itoa(searchPageSize))
	params.Set("offset", strconv.Itoa(page*searchPageSize))

	body, err := c.get(ctx, indexerID, params)
	if err != nil {
		return nil, WrapError("search", err, indexerID)
	}

	// Some failures come back as a torznab error document instead of a
	// non-2xx status.
	var terr torznab.Error
	if xml.Unmarshal(body, &terr) == nil {
		return nil, WrapError("search", ErrUpstreamError,
			fmt.Sprintf("code %d: %s", terr.Code, terr.Description))
	}

	var feed torznab.Feed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, WrapError("search", ErrMalformedResponse, err.Error())
	}

	c.logger.Debug().
		Str("indexer", indexerID).
		Str("query", query).
		Int("results", len(feed.Channel.Items)).
		Msg("search completed")

	return feed.Channel.Items, nil
}

// Caps fetches an indexer's capability document.
func (c *Client) Caps(ctx context.Context, indexerID string) (*torznab.Caps, error) {
	params := url.Values{}
	params.Set("apikey", c.apiKey)
	params.Set("t", "caps")

	body, err := c.get(ctx, indexerID, params)
	if err != nil {
		return nil, WrapError("caps", err, indexerID)
	}

	var caps torznab.Caps
	if err := xml.Unmarshal(body, &caps); err != nil {
		return nil, WrapError("caps", ErrMalformedResponse, err.Error())
	}
	return &caps, nil
}

// Test verifies connectivity and credentials by listing indexers.
func (c *Client) Test(ctx context.Context) error {
	_, err := c.FetchIndexers(ctx)
	return err
}

func (c *Client) get(ctx context.Context, indexerID string, params url.Values) ([]byte, error) {
	endpoint := c.TorznabURL(indexerID) + "api?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ErrConnectionTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrConnectionFailed, resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
