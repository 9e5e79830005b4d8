package trakt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	// DefaultBaseURL is the public Trakt API endpoint.
	DefaultBaseURL = "https://api.trakt.tv"

	apiVersion  = "2"
	redirectURI = "urn:ietf:wg:oauth:2.0:oob"

	// refreshWindow is how long before expiry a token is refreshed. Trakt
	// tokens live for months; refreshing a week early keeps a stopped
	// instance from coming back up with a dead token.
	refreshWindow = 7 * 24 * time.Hour
)

// Token is an OAuth access/refresh token pair.
type Token struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Valid reports whether the token needs no refresh yet.
func (t Token) Valid(now time.Time) bool {
	return t.AccessToken != "" && t.ExpiresAt.After(now.Add(refreshWindow))
}

// ClientConfig holds settings for creating a Trakt client.
type ClientConfig struct {
	BaseURL      string // defaults to DefaultBaseURL
	ClientID     string
	ClientSecret string
	Token        Token
	Timeout      time.Duration
	Logger       zerolog.Logger

	// OnTokenRefresh is called with the new token after every successful
	// refresh so the caller can persist it.
	OnTokenRefresh func(Token)
}

// Client talks to the Trakt API, refreshing its OAuth token as needed.
type Client struct {
	baseURL        string
	clientID       string
	clientSecret   string
	httpClient     *http.Client
	logger         zerolog.Logger
	onTokenRefresh func(Token)

	mu    sync.Mutex
	token Token
}

// MediaIDs carries the cross-service IDs of a watchlist item.
type MediaIDs struct {
	Trakt int    `json:"trakt"`
	Slug  string `json:"slug"`
	Imdb  string `json:"imdb"`
	Tmdb  int    `json:"tmdb"`
}

// Media is a movie or show referenced by a list item.
type Media struct {
	Title string   `json:"title"`
	Year  int      `json:"year"`
	IDs   MediaIDs `json:"ids"`
}

// ListItem is one entry of a watchlist or user list.
type ListItem struct {
	Type  string `json:"type"`
	Movie *Media `json:"movie,omitempty"`
	Show  *Media `json:"show,omitempty"`
}

// NewClient creates a Trakt client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, ErrMissingClient
	}
	if cfg.Token.RefreshToken == "" {
		return nil, ErrMissingToken
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:        baseURL,
		clientID:       cfg.ClientID,
		clientSecret:   cfg.ClientSecret,
		httpClient:     &http.Client{Timeout: timeout},
		logger:         cfg.Logger.With().Str("component", "trakt-client").Logger(),
		onTokenRefresh: cfg.OnTokenRefresh,
		token:          cfg.Token,
	}, nil
}

// WatchlistMovies returns the authenticated user's movie watchlist.
func (c *Client) WatchlistMovies(ctx context.Context) ([]ListItem, error) {
	var items []ListItem
	if err := c.doJSON(ctx, "/sync/watchlist/movies", &items); err != nil {
		return nil, WrapError("watchlist", err, "movies")
	}
	return items, nil
}

// WatchlistShows returns the authenticated user's show watchlist.
func (c *Client) WatchlistShows(ctx context.Context) ([]ListItem, error) {
	var items []ListItem
	if err := c.doJSON(ctx, "/sync/watchlist/shows", &items); err != nil {
		return nil, WrapError("watchlist", err, "shows")
	}
	return items, nil
}

// UserListItems returns the items of a user's custom list.
func (c *Client) UserListItems(ctx context.Context, user, listID string) ([]ListItem, error) {
	var items []ListItem
	path := fmt.Sprintf("/users/%s/lists/%s/items", user, listID)
	if err := c.doJSON(ctx, path, &items); err != nil {
		return nil, WrapError("list", err, user+"/"+listID)
	}
	return items, nil
}

// Token returns the current token.
func (c *Client) Token() Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// ensureToken refreshes the OAuth token when expiry is inside the refresh
// window. A token more than refreshWindow away from expiry makes no HTTP
// call at all.
func (c *Client) ensureToken(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token.Valid(time.Now()) {
		return nil
	}
	return c.refreshTokenLocked(ctx)
}

func (c *Client) refreshTokenLocked(ctx context.Context) error {
	body, err := json.Marshal(map[string]string{
		"refresh_token": c.token.RefreshToken,
		"client_id":     c.clientID,
		"client_secret": c.clientSecret,
		"redirect_uri":  redirectURI,
		"grant_type":    "refresh_token",
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/oauth/token", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return ErrAuthFailed
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: token refresh status %d", ErrAuthFailed, resp.StatusCode)
	}

	var grant struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    int64  `json:"expires_in"`
		CreatedAt    int64  `json:"created_at"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&grant); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	c.token = Token{
		AccessToken:  grant.AccessToken,
		RefreshToken: grant.RefreshToken,
		ExpiresAt:    time.Unix(grant.CreatedAt, 0).Add(time.Duration(grant.ExpiresIn) * time.Second),
	}

	c.logger.Info().Time("expiresAt", c.token.ExpiresAt).Msg("refreshed access token")

	if c.onTokenRefresh != nil {
		c.onTokenRefresh(c.token)
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, path string, out any) error {
	if err := c.ensureToken(ctx); err != nil {
		return err
	}

	c.mu.Lock()
	accessToken := c.token.AccessToken
	c.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("trakt-api-version", apiVersion)
	req.Header.Set("trakt-api-key", c.clientID)
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ErrConnectionTimeout
		}
		return fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrAuthFailed
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrConnectionFailed, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}
