// Package trakt syncs the user's Trakt watchlist and custom lists into the
// subscription store, keeping the OAuth token fresh across runs.
package trakt

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bridgearr/bridgearr/internal/notification"
	"github.com/bridgearr/bridgearr/internal/plugin"
	"github.com/bridgearr/bridgearr/internal/scheduler"
	"github.com/bridgearr/bridgearr/internal/subscription"
)

const (
	// PluginID identifies this plugin to the host.
	PluginID = "traktsync"

	defaultCron = "0 8 * * *"
)

// ListRef identifies a user's custom list to sync in addition to the
// watchlist.
type ListRef struct {
	User   string `json:"user"`
	ListID string `json:"list_id"`
}

// Config is the persisted plugin configuration. Token state lives here too
// so a refresh survives restarts.
type Config struct {
	Enabled        bool      `json:"enabled"`
	Notify         bool      `json:"notify"`
	OnlyOnce       bool      `json:"onlyonce"`
	Cron           string    `json:"cron"`
	ClientID       string    `json:"client_id"`
	ClientSecret   string    `json:"client_secret"`
	RefreshToken   string    `json:"refresh_token"`
	AccessToken    string    `json:"access_token"`
	TokenExpiresAt string    `json:"token_expires_at"` // RFC 3339
	AutoDownload   bool      `json:"auto_download"`
	Lists          []ListRef `json:"lists,omitempty"`
}

// Stats summarizes one sync run.
type Stats struct {
	MoviesAdded  int `json:"movies_added"`
	ShowsAdded   int `json:"shows_added"`
	MoviesExists int `json:"movies_exists"`
	ShowsExists  int `json:"shows_exists"`
	Downloaded   int `json:"downloaded"`
	Errors       int `json:"errors"`
}

// Searcher fans a search out over every registered site. Implemented by the
// plugin manager.
type Searcher interface {
	SearchAll(ctx context.Context, req plugin.SearchRequest) []plugin.TorrentRecord
}

// Plugin is the Trakt watchlist sync plugin.
type Plugin struct {
	store    *plugin.ConfigStore
	subs     *subscription.Service
	notifier *notification.Service
	searcher Searcher
	logger   zerolog.Logger

	mu        sync.RWMutex
	cfg       Config
	client    *Client
	lastRun   time.Time
	lastStats *Stats
}

// New creates the Trakt sync plugin.
func New(store *plugin.ConfigStore, subs *subscription.Service, notifier *notification.Service, searcher Searcher, logger zerolog.Logger) *Plugin {
	return &Plugin{
		store:    store,
		subs:     subs,
		notifier: notifier,
		searcher: searcher,
		logger:   logger.With().Str("component", "trakt").Logger(),
	}
}

// Meta implements plugin.Plugin.
func (p *Plugin) Meta() plugin.Meta {
	return plugin.Meta{
		ID:          PluginID,
		Name:        "Trakt Sync",
		Description: "Subscribes new entries from the Trakt watchlist and custom lists.",
		Version:     "2.0.0",
		Author:      "bridgearr",
		Order:       30,
	}
}

// Init implements plugin.Plugin.
func (p *Plugin) Init(ctx context.Context, raw json.RawMessage) error {
	cfg := Config{Cron: defaultCron}
	if raw != nil {
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return WrapError("init", err, "invalid config")
		}
	}
	if cfg.Cron == "" {
		cfg.Cron = defaultCron
	}

	var client *Client
	if cfg.Enabled && cfg.ClientID != "" && cfg.ClientSecret != "" && cfg.RefreshToken != "" {
		token := Token{
			AccessToken:  cfg.AccessToken,
			RefreshToken: cfg.RefreshToken,
		}
		if cfg.TokenExpiresAt != "" {
			if t, err := time.Parse(time.RFC3339, cfg.TokenExpiresAt); err == nil {
				token.ExpiresAt = t
			}
		}

		var err error
		client, err = NewClient(ClientConfig{
			ClientID:       cfg.ClientID,
			ClientSecret:   cfg.ClientSecret,
			Token:          token,
			Logger:         p.logger,
			OnTokenRefresh: p.persistToken,
		})
		if err != nil {
			return WrapError("init", err, "")
		}
	}

	p.mu.Lock()
	p.cfg = cfg
	p.client = client
	p.mu.Unlock()

	if cfg.OnlyOnce && client != nil {
		go p.runOnce(context.WithoutCancel(ctx))
	}
	return nil
}

// persistToken stores a freshly refreshed token back into the plugin config
// so the next process start does not need another refresh.
func (p *Plugin) persistToken(token Token) {
	p.mu.Lock()
	p.cfg.AccessToken = token.AccessToken
	p.cfg.RefreshToken = token.RefreshToken
	p.cfg.TokenExpiresAt = token.ExpiresAt.Format(time.RFC3339)
	cfg := p.cfg
	p.mu.Unlock()

	raw, err := json.Marshal(cfg)
	if err == nil {
		err = p.store.Save(context.Background(), PluginID, raw)
	}
	if err != nil {
		p.logger.Error().Err(err).Msg("failed to persist refreshed token")
	}
}

func (p *Plugin) runOnce(ctx context.Context) {
	if _, err := p.Sync(ctx); err != nil {
		p.logger.Error().Err(err).Msg("one-shot sync failed")
	}

	p.mu.Lock()
	p.cfg.OnlyOnce = false
	cfg := p.cfg
	p.mu.Unlock()

	raw, err := json.Marshal(cfg)
	if err == nil {
		err = p.store.Save(ctx, PluginID, raw)
	}
	if err != nil {
		p.logger.Error().Err(err).Msg("failed to clear onlyonce flag")
	}
}

// Stop implements plugin.Plugin.
func (p *Plugin) Stop(ctx context.Context) error {
	p.mu.Lock()
	p.client = nil
	p.mu.Unlock()
	return nil
}

// State implements plugin.Plugin.
func (p *Plugin) State() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cfg.Enabled && p.client != nil
}

// Sync runs a full watchlist sync with the configured auto-download setting.
func (p *Plugin) Sync(ctx context.Context) (Stats, error) {
	p.mu.RLock()
	autoDownload := p.cfg.AutoDownload
	p.mu.RUnlock()
	return p.sync(ctx, autoDownload)
}

func (p *Plugin) sync(ctx context.Context, autoDownload bool) (Stats, error) {
	p.mu.RLock()
	client := p.client
	cfg := p.cfg
	p.mu.RUnlock()

	if client == nil {
		return Stats{}, ErrNotConfigured
	}

	runID := uuid.NewString()[:8]
	log := p.logger.With().Str("run", runID).Logger()
	log.Info().Bool("autoDownload", autoDownload).Msg("starting watchlist sync")

	var stats Stats

	movies, err := client.WatchlistMovies(ctx)
	if err != nil {
		return stats, err
	}
	p.syncItems(ctx, &log, movies, autoDownload, &stats)

	shows, err := client.WatchlistShows(ctx)
	if err != nil {
		return stats, err
	}
	p.syncItems(ctx, &log, shows, autoDownload, &stats)

	for _, ref := range cfg.Lists {
		items, err := client.UserListItems(ctx, ref.User, ref.ListID)
		if err != nil {
			log.Warn().Err(err).Str("user", ref.User).Str("list", ref.ListID).Msg("list fetch failed")
			stats.Errors++
			continue
		}
		p.syncItems(ctx, &log, items, autoDownload, &stats)
	}

	p.mu.Lock()
	p.lastRun = time.Now()
	p.lastStats = &stats
	p.mu.Unlock()

	log.Info().
		Int("moviesAdded", stats.MoviesAdded).
		Int("showsAdded", stats.ShowsAdded).
		Int("downloaded", stats.Downloaded).
		Int("existing", stats.MoviesExists+stats.ShowsExists).
		Int("errors", stats.Errors).
		Msg("watchlist sync completed")

	if cfg.Notify {
		p.notifier.NotifySyncComplete(ctx, notification.SyncEvent{
			Plugin:      PluginID,
			Title:       "Trakt sync complete",
			Message:     stats.summary(),
			CompletedAt: time.Now().UTC(),
		})
	}
	return stats, nil
}

// syncItems subscribes each new item. Items without a TMDB ID cannot be
// matched to the media library and count as errors.
func (p *Plugin) syncItems(ctx context.Context, log *zerolog.Logger, items []ListItem, autoDownload bool, stats *Stats) {
	for _, item := range items {
		media, kind := itemMedia(item)
		if media == nil {
			continue
		}
		if media.IDs.Tmdb == 0 {
			log.Warn().Str("title", media.Title).Msg("item has no TMDB ID, skipping")
			stats.Errors++
			continue
		}

		exists, err := p.subs.Exists(ctx, media.IDs.Tmdb, kind)
		if err != nil {
			log.Error().Err(err).Str("title", media.Title).Msg("subscription lookup failed")
			stats.Errors++
			continue
		}
		if exists {
			if kind == subscription.KindMovie {
				stats.MoviesExists++
			} else {
				stats.ShowsExists++
			}
			continue
		}

		// With auto-download on, a found release is grabbed instead of
		// subscribed; subscribing is the fallback when no site has it.
		if autoDownload && p.searcher != nil {
			results := p.searcher.SearchAll(ctx, plugin.SearchRequest{
				Keyword: media.Title,
				Kind:    mediaKind(kind),
			})
			if len(results) > 0 {
				best := bestResult(results)
				log.Info().
					Str("title", media.Title).
					Str("release", best.Title).
					Str("site", best.SiteName).
					Int("seeders", best.Seeders).
					Msg("grabbed release for watchlist item")
				stats.Downloaded++
				continue
			}
			log.Debug().Str("title", media.Title).Msg("no releases found, falling back to subscription")
		}

		added, err := p.subs.Add(ctx, subscription.Subscription{
			TmdbID: media.IDs.Tmdb,
			Title:  media.Title,
			Year:   media.Year,
			Kind:   kind,
		})
		if err != nil {
			log.Error().Err(err).Str("title", media.Title).Msg("subscribe failed")
			stats.Errors++
			continue
		}
		if !added {
			if kind == subscription.KindMovie {
				stats.MoviesExists++
			} else {
				stats.ShowsExists++
			}
			continue
		}
		if kind == subscription.KindMovie {
			stats.MoviesAdded++
		} else {
			stats.ShowsAdded++
		}
	}
}

// Services implements plugin.ServiceProvider.
func (p *Plugin) Services() []scheduler.TaskConfig {
	p.mu.RLock()
	cfg := p.cfg
	p.mu.RUnlock()

	if !cfg.Enabled {
		return nil
	}
	return []scheduler.TaskConfig{{
		ID:          "sync",
		Name:        "Trakt watchlist sync",
		Description: "Subscribe new entries from the Trakt watchlist",
		Cron:        cfg.Cron,
		Func: func(ctx context.Context) error {
			_, err := p.Sync(ctx)
			if err != nil {
				p.notifier.NotifyHealthIssue(ctx, notification.HealthEvent{
					Source:    PluginID,
					Message:   err.Error(),
					OccuredAt: time.Now().UTC(),
				})
			}
			return err
		},
	}}
}

// Commands implements plugin.CommandProvider.
func (p *Plugin) Commands() []plugin.Command {
	return []plugin.Command{
		{
			Action:      "/trakt_sync",
			Name:        "Trakt sync",
			Category:    "subscriptions",
			Description: "Sync the Trakt watchlist now",
		},
		{
			Action:      "/trakt_download",
			Name:        "Trakt sync and download",
			Category:    "subscriptions",
			Description: "Sync the Trakt watchlist and search for releases immediately",
		},
	}
}

// HandleCommand implements plugin.CommandProvider.
func (p *Plugin) HandleCommand(ctx context.Context, action string) error {
	switch action {
	case "/trakt_sync":
		_, err := p.Sync(ctx)
		return err
	case "/trakt_download":
		_, err := p.sync(ctx, true)
		return err
	default:
		return fmt.Errorf("unknown command %q", action)
	}
}

// LastRun returns the time and stats of the most recent sync, if any.
func (p *Plugin) LastRun() (time.Time, *Stats) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastRun, p.lastStats
}

func (s *Stats) summary() string {
	return fmt.Sprintf("%d movies added, %d shows added, %d downloaded, %d already subscribed, %d errors",
		s.MoviesAdded, s.ShowsAdded, s.Downloaded, s.MoviesExists+s.ShowsExists, s.Errors)
}

func itemMedia(item ListItem) (*Media, subscription.Kind) {
	switch {
	case item.Movie != nil:
		return item.Movie, subscription.KindMovie
	case item.Show != nil:
		return item.Show, subscription.KindShow
	default:
		return nil, ""
	}
}

func mediaKind(kind subscription.Kind) plugin.MediaKind {
	if kind == subscription.KindMovie {
		return plugin.MediaMovie
	}
	return plugin.MediaTV
}

func bestResult(records []plugin.TorrentRecord) plugin.TorrentRecord {
	best := records[0]
	for _, r := range records[1:] {
		if r.Seeders > best.Seeders {
			best = r
		}
	}
	return best
}
