// Package jackett bridges a Jackett server's configured indexers into the
// site registry and serves searches through their Torznab endpoints.
package jackett

import (
	"context"
	"encoding/json"
	"sync"
	"unicode"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bridgearr/bridgearr/internal/plugin"
	"github.com/bridgearr/bridgearr/internal/scheduler"
	"github.com/bridgearr/bridgearr/internal/sites"
	"github.com/bridgearr/bridgearr/internal/torznab"
)

const (
	// PluginID identifies this plugin to the host.
	PluginID = "jackettindexer"

	sitePrefix   = "Jackett"
	domainPrefix = "jackett.indexer"
	defaultCron  = "0 0 */6 * *"
)

// Config is the persisted plugin configuration.
type Config struct {
	Enabled     bool   `json:"enabled"`
	Host        string `json:"host"`
	APIKey      string `json:"api_key"`
	Cron        string `json:"cron"`
	OnlyOnce    bool   `json:"onlyonce"`
	EnglishOnly bool   `json:"english_only"`
}

// Plugin is the Jackett indexer plugin.
type Plugin struct {
	store    *plugin.ConfigStore
	registry *sites.Registry
	logger   zerolog.Logger

	mu     sync.RWMutex
	cfg    Config
	client *Client
}

// New creates the Jackett plugin.
func New(store *plugin.ConfigStore, registry *sites.Registry, logger zerolog.Logger) *Plugin {
	return &Plugin{
		store:    store,
		registry: registry,
		logger:   logger.With().Str("component", "jackett").Logger(),
	}
}

// Meta implements plugin.Plugin.
func (p *Plugin) Meta() plugin.Meta {
	return plugin.Meta{
		ID:          PluginID,
		Name:        "Jackett Indexer",
		Description: "Registers Jackett's configured indexers as searchable sites.",
		Version:     "2.0.0",
		Author:      "bridgearr",
		Order:       21,
	}
}

// Init implements plugin.Plugin. A nil config initializes the plugin
// disabled with defaults.
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
	if cfg.Enabled && cfg.Host != "" && cfg.APIKey != "" {
		var err error
		client, err = NewClient(ClientConfig{
			Host:   cfg.Host,
			APIKey: cfg.APIKey,
			Logger: p.logger,
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

// runOnce performs a single immediate sync and clears the onlyonce flag so
// a restart does not trigger it again.
func (p *Plugin) runOnce(ctx context.Context) {
	if err := p.Sync(ctx); err != nil {
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

// Stop implements plugin.Plugin. Registered sites are intentionally left in
// the registry so searches against them keep resolving after a restart.
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

// SitePrefix implements plugin.SearchProvider.
func (p *Plugin) SitePrefix() string {
	return sitePrefix
}

// Search implements plugin.SearchProvider. The site name selects which
// Jackett indexer to query; the indexer ID is resolved from the registry
// record, falling back to decoding the site's domain.
func (p *Plugin) Search(ctx context.Context, siteName string, req plugin.SearchRequest) ([]plugin.TorrentRecord, error) {
	p.mu.RLock()
	client := p.client
	englishOnly := p.cfg.EnglishOnly
	p.mu.RUnlock()

	if client == nil {
		return nil, ErrNotConfigured
	}

	if englishOnly && containsCJK(req.Keyword) {
		p.logger.Debug().Str("keyword", req.Keyword).Msg("skipping non-English keyword")
		return nil, nil
	}

	site, err := p.registry.GetByName(ctx, siteName)
	if err != nil {
		return nil, WrapError("search", err, siteName)
	}

	indexerID := site.IndexerID
	if indexerID == "" {
		indexerID = sites.DecodeDomainID(site.Domain)
	}

	items, err := client.Search(ctx, indexerID, req.Keyword, torznab.Categories(req.Kind), req.Page)
	if err != nil {
		return nil, err
	}

	records := make([]plugin.TorrentRecord, 0, len(items))
	for i := range items {
		record, ok := torznab.MapItem(&items[i], site.Name, site.Pri)
		if !ok {
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

// Sync fetches the configured indexers from Jackett and reconciles the site
// registry with them.
func (p *Plugin) Sync(ctx context.Context) error {
	p.mu.RLock()
	client := p.client
	p.mu.RUnlock()

	if client == nil {
		return ErrNotConfigured
	}

	runID := uuid.NewString()[:8]
	log := p.logger.With().Str("run", runID).Logger()

	indexers, err := client.FetchIndexers(ctx)
	if err != nil {
		return err
	}

	current := make([]sites.Site, 0, len(indexers))
	for _, idx := range indexers {
		name := sitePrefix + "-" + idx.Title
		current = append(current, sites.Site{
			Domain:    sites.EncodeDomain(domainPrefix, idx.ID),
			ID:        name,
			Name:      name,
			URL:       client.TorznabURL(idx.ID),
			IndexerID: idx.ID,
			PluginID:  PluginID,
			Public:    idx.Type == "public" || idx.Type == "semi-public",
		})
	}

	if err := p.registry.SyncMerge(ctx, PluginID, current); err != nil {
		return WrapError("sync", err, "")
	}

	log.Info().Int("indexers", len(current)).Msg("indexer sync completed")
	return nil
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
		Name:        "Jackett indexer sync",
		Description: "Refresh the site registry from Jackett's configured indexers",
		Cron:        cfg.Cron,
		Func:        p.Sync,
	}}
}

// containsCJK reports whether the keyword carries CJK characters, which
// public trackers indexed through Jackett generally cannot search.
func containsCJK(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) ||
			unicode.Is(unicode.Hiragana, r) ||
			unicode.Is(unicode.Katakana, r) ||
			unicode.Is(unicode.Hangul, r) {
			return true
		}
	}
	return false
}
