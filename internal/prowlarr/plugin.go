// Package prowlarr bridges a Prowlarr server's enabled indexers into the
// site registry and serves searches through its REST API.
package prowlarr

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bridgearr/bridgearr/internal/plugin"
	"github.com/bridgearr/bridgearr/internal/scheduler"
	"github.com/bridgearr/bridgearr/internal/sites"
	"github.com/bridgearr/bridgearr/internal/torznab"
)

const (
	// PluginID identifies this plugin to the host.
	PluginID = "prowlarrindexer"

	sitePrefix  = "Prowlarr"
	defaultCron = "0 0 */6 * *"
)

// Config is the persisted plugin configuration.
type Config struct {
	Enabled  bool   `json:"enabled"`
	Host     string `json:"host"`
	APIKey   string `json:"api_key"`
	Cron     string `json:"cron"`
	OnlyOnce bool   `json:"onlyonce"`
}

// Plugin is the Prowlarr indexer plugin.
type Plugin struct {
	store    *plugin.ConfigStore
	registry *sites.Registry
	logger   zerolog.Logger

	mu     sync.RWMutex
	cfg    Config
	client *Client
}

// New creates the Prowlarr plugin.
func New(store *plugin.ConfigStore, registry *sites.Registry, logger zerolog.Logger) *Plugin {
	return &Plugin{
		store:    store,
		registry: registry,
		logger:   logger.With().Str("component", "prowlarr").Logger(),
	}
}

// Meta implements plugin.Plugin.
func (p *Plugin) Meta() plugin.Meta {
	return plugin.Meta{
		ID:          PluginID,
		Name:        "Prowlarr Indexer",
		Description: "Registers Prowlarr's enabled indexers as searchable sites.",
		Version:     "2.0.0",
		Author:      "bridgearr",
		Order:       22,
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
	if cfg.Enabled && cfg.Host != "" && cfg.APIKey != "" {
		var err error
		client, err = NewClient(ClientConfig{
			URL:    cfg.Host,
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

// Stop implements plugin.Plugin. Registered sites stay in the registry.
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

// Search implements plugin.SearchProvider. The upstream indexer ID comes
// from the site record's IndexerID column; Prowlarr domains are synthetic
// and carry no decodable ID.
func (p *Plugin) Search(ctx context.Context, siteName string, req plugin.SearchRequest) ([]plugin.TorrentRecord, error) {
	p.mu.RLock()
	client := p.client
	p.mu.RUnlock()

	if client == nil {
		return nil, ErrNotConfigured
	}

	site, err := p.registry.GetByName(ctx, siteName)
	if err != nil {
		return nil, WrapError("search", err, siteName)
	}

	indexerID, err := strconv.Atoi(site.IndexerID)
	if err != nil {
		return nil, WrapError("search", ErrMalformedResponse, "site has no usable indexer ID: "+site.IndexerID)
	}

	results, err := client.Search(ctx, req.Keyword, []int{indexerID}, torznab.Categories(req.Kind), req.Page)
	if err != nil {
		return nil, err
	}

	records := make([]plugin.TorrentRecord, 0, len(results))
	for i := range results {
		record, ok := mapResult(&results[i], site.Name, site.Pri)
		if !ok {
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

// Sync fetches the enabled indexers from Prowlarr and reconciles the site
// registry with them.
func (p *Plugin) Sync(ctx context.Context) error {
	p.mu.RLock()
	client := p.client
	host := p.cfg.Host
	p.mu.RUnlock()

	if client == nil {
		return ErrNotConfigured
	}

	runID := uuid.NewString()[:8]
	log := p.logger.With().Str("run", runID).Logger()

	indexers, err := client.GetIndexers(ctx)
	if err != nil {
		return err
	}

	current := make([]sites.Site, 0, len(indexers))
	for _, idx := range indexers {
		name := sitePrefix + "-" + idx.Name
		current = append(current, sites.Site{
			Domain:    "http://prowlarr." + slugify(idx.Name) + ".indexer",
			ID:        name,
			Name:      name,
			URL:       host,
			IndexerID: indexerIDString(idx.ID),
			PluginID:  PluginID,
			Public:    idx.Privacy == "public",
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
		Name:        "Prowlarr indexer sync",
		Description: "Refresh the site registry from Prowlarr's enabled indexers",
		Cron:        cfg.Cron,
		Func:        p.Sync,
	}}
}
