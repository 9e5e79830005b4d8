package plugin

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/bridgearr/bridgearr/internal/scheduler"
	"github.com/bridgearr/bridgearr/internal/sites"
)

// Status describes a registered plugin for API responses.
type Status struct {
	Meta
	Enabled bool `json:"enabled"`
}

// Manager owns every registered plugin: it loads persisted configuration,
// drives the Init/Stop lifecycle, wires scheduled jobs and dispatches
// searches to the provider owning the requested site.
type Manager struct {
	store    *ConfigStore
	sched    *scheduler.Scheduler
	registry *sites.Registry
	logger   zerolog.Logger

	mu      sync.RWMutex
	plugins map[string]Plugin
	order   []string
}

// NewManager creates a plugin manager.
func NewManager(store *ConfigStore, sched *scheduler.Scheduler, registry *sites.Registry, logger zerolog.Logger) *Manager {
	return &Manager{
		store:    store,
		sched:    sched,
		registry: registry,
		logger:   logger.With().Str("component", "plugin-manager").Logger(),
		plugins:  make(map[string]Plugin),
	}
}

// Register adds a plugin. Must be called before InitAll.
func (m *Manager) Register(p Plugin) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := p.Meta().ID
	if _, exists := m.plugins[id]; exists {
		return fmt.Errorf("plugin %q already registered", id)
	}
	m.plugins[id] = p
	m.order = append(m.order, id)
	m.logger.Info().Str("plugin", id).Str("version", p.Meta().Version).Msg("Registered plugin")
	return nil
}

// InitAll initializes every registered plugin from its persisted config and
// registers the scheduled jobs of those that come up enabled. A plugin that
// fails to init is logged and skipped; the rest still start.
func (m *Manager) InitAll(ctx context.Context) error {
	m.mu.RLock()
	ids := append([]string(nil), m.order...)
	m.mu.RUnlock()

	for _, id := range ids {
		p := m.get(id)
		raw, err := m.store.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := p.Init(ctx, raw); err != nil {
			m.logger.Error().Err(err).Str("plugin", id).Msg("Plugin init failed")
			continue
		}
		m.registerServices(id, p)
	}
	return nil
}

// UpdateConfig persists a plugin's config and re-initializes it. The config
// is saved before re-init so settings survive a crash mid-restart.
func (m *Manager) UpdateConfig(ctx context.Context, id string, raw json.RawMessage) error {
	p := m.get(id)
	if p == nil {
		return fmt.Errorf("plugin %q not registered", id)
	}

	if err := m.store.Save(ctx, id, raw); err != nil {
		return err
	}

	if err := p.Stop(ctx); err != nil {
		m.logger.Warn().Err(err).Str("plugin", id).Msg("Plugin stop failed during reconfigure")
	}
	m.sched.RemoveByPrefix(taskPrefix(id))

	if err := p.Init(ctx, raw); err != nil {
		return fmt.Errorf("plugin %q re-init failed: %w", id, err)
	}
	m.registerServices(id, p)
	return nil
}

// Search routes a search to the provider owning siteName. Site names carry
// their provider prefix before the first dash ("Jackett-RARBG"). An unknown
// site or a disabled provider yields empty results rather than an error so
// callers can fan out over many sites without special-casing.
func (m *Manager) Search(ctx context.Context, siteName string, req SearchRequest) []TorrentRecord {
	prefix := siteName
	if i := strings.Index(siteName, "-"); i >= 0 {
		prefix = siteName[:i]
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, id := range m.order {
		p := m.plugins[id]
		sp, ok := p.(SearchProvider)
		if !ok || sp.SitePrefix() != prefix {
			continue
		}
		if !p.State() {
			m.logger.Warn().Str("plugin", id).Str("site", siteName).Msg("Search provider disabled")
			return nil
		}
		records, err := sp.Search(ctx, siteName, req)
		if err != nil {
			m.logger.Error().Err(err).Str("plugin", id).Str("site", siteName).Msg("Search failed")
			return nil
		}
		return records
	}

	m.logger.Warn().Str("site", siteName).Msg("No search provider for site")
	return nil
}

// SearchAll fans a search out over every registered site and merges the
// results. Sites whose provider is disabled or failing contribute nothing.
func (m *Manager) SearchAll(ctx context.Context, req SearchRequest) []TorrentRecord {
	registered, err := m.registry.ListAll(ctx)
	if err != nil {
		m.logger.Error().Err(err).Msg("Failed to list sites for search")
		return nil
	}

	var merged []TorrentRecord
	for _, site := range registered {
		merged = append(merged, m.Search(ctx, site.Name, req)...)
	}
	return merged
}

// HandleCommand dispatches a remote command to whichever plugin declares it.
func (m *Manager) HandleCommand(ctx context.Context, action string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, id := range m.order {
		cp, ok := m.plugins[id].(CommandProvider)
		if !ok {
			continue
		}
		for _, cmd := range cp.Commands() {
			if cmd.Action == action {
				return cp.HandleCommand(ctx, action)
			}
		}
	}
	return fmt.Errorf("no plugin handles command %q", action)
}

// StopAll stops every plugin and removes their scheduled jobs. Registered
// sites are left in place; stopping a plugin never unregisters its sites.
func (m *Manager) StopAll(ctx context.Context) {
	m.mu.RLock()
	ids := append([]string(nil), m.order...)
	m.mu.RUnlock()

	for _, id := range ids {
		p := m.get(id)
		if err := p.Stop(ctx); err != nil {
			m.logger.Warn().Err(err).Str("plugin", id).Msg("Plugin stop failed")
		}
		m.sched.RemoveByPrefix(taskPrefix(id))
	}
}

// Config returns a plugin's persisted configuration JSON, or nil when none
// has been saved yet.
func (m *Manager) Config(ctx context.Context, id string) (json.RawMessage, error) {
	return m.store.Get(ctx, id)
}

// Plugins returns metadata and state for every registered plugin.
func (m *Manager) Plugins() []Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	statuses := make([]Status, 0, len(m.order))
	for _, id := range m.order {
		p := m.plugins[id]
		statuses = append(statuses, Status{Meta: p.Meta(), Enabled: p.State()})
	}
	return statuses
}

// Get returns a registered plugin by ID.
func (m *Manager) Get(id string) (Plugin, bool) {
	p := m.get(id)
	return p, p != nil
}

func (m *Manager) get(id string) Plugin {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.plugins[id]
}

func (m *Manager) registerServices(id string, p Plugin) {
	sp, ok := p.(ServiceProvider)
	if !ok || !p.State() {
		return
	}
	for _, task := range sp.Services() {
		task.ID = taskPrefix(id) + task.ID
		if err := m.sched.RegisterTask(task); err != nil {
			m.logger.Error().Err(err).Str("plugin", id).Str("task", task.ID).Msg("Failed to register task")
		}
	}
}

func taskPrefix(pluginID string) string {
	return "plugin:" + pluginID + ":"
}
