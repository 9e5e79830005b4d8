// Package sites maintains the persisted registry of searchable sites that
// indexer plugins project their upstream indexers into.
package sites

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// ErrNotFound is returned when no site exists for a domain.
var ErrNotFound = errors.New("site not found")

// Site is one registered searchable site. Domain is the registry key;
// IndexerID carries the upstream indexer's identity so lookups do not depend
// on decoding it back out of the domain string.
type Site struct {
	Domain    string `json:"domain"`
	ID        string `json:"id"`
	Name      string `json:"name"`
	URL       string `json:"url"`
	IndexerID string `json:"indexer_id"`
	PluginID  string `json:"plugin_id"`
	Public    bool   `json:"public"`
	Proxy     bool   `json:"proxy"`
	Render    bool   `json:"render"`
	Cookie    string `json:"cookie,omitempty"`
	UA        string `json:"ua,omitempty"`
	Pri       int    `json:"pri"`
}

// Registry is the sqlite-backed site registry.
type Registry struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewRegistry creates a registry over an open database.
func NewRegistry(db *sql.DB, logger zerolog.Logger) *Registry {
	return &Registry{
		db:     db,
		logger: logger.With().Str("component", "sites").Logger(),
	}
}

// Get returns the site registered under domain.
func (r *Registry) Get(ctx context.Context, domain string) (*Site, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT domain, site_id, name, url, indexer_id, plugin_id,
		       public, proxy, render, cookie, ua, pri
		FROM sites WHERE domain = ?`, domain)

	site, err := scanSite(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get site %s: %w", domain, err)
	}
	return site, nil
}

// GetByName returns the site registered under a display name. Site names
// are what search callers address ("Jackett-RARBG"); domains are internal.
func (r *Registry) GetByName(ctx context.Context, name string) (*Site, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT domain, site_id, name, url, indexer_id, plugin_id,
		       public, proxy, render, cookie, ua, pri
		FROM sites WHERE name = ?`, name)

	site, err := scanSite(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get site %s: %w", name, err)
	}
	return site, nil
}

// Add upserts a site keyed by its domain.
func (r *Registry) Add(ctx context.Context, site Site) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sites (domain, site_id, name, url, indexer_id, plugin_id,
		                   public, proxy, render, cookie, ua, pri, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(domain) DO UPDATE SET
			site_id = excluded.site_id,
			name = excluded.name,
			url = excluded.url,
			indexer_id = excluded.indexer_id,
			plugin_id = excluded.plugin_id,
			public = excluded.public,
			proxy = excluded.proxy,
			render = excluded.render,
			cookie = excluded.cookie,
			ua = excluded.ua,
			pri = excluded.pri,
			updated_at = CURRENT_TIMESTAMP`,
		site.Domain, site.ID, site.Name, site.URL, site.IndexerID, site.PluginID,
		site.Public, site.Proxy, site.Render, site.Cookie, site.UA, site.Pri,
	)
	if err != nil {
		return fmt.Errorf("failed to add site %s: %w", site.Domain, err)
	}
	return nil
}

// Delete removes the site registered under domain. Deleting an unknown
// domain is not an error.
func (r *Registry) Delete(ctx context.Context, domain string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sites WHERE domain = ?`, domain)
	if err != nil {
		return fmt.Errorf("failed to delete site %s: %w", domain, err)
	}
	return nil
}

// ListByPlugin returns every site a plugin has registered, ordered by name.
func (r *Registry) ListByPlugin(ctx context.Context, pluginID string) ([]Site, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT domain, site_id, name, url, indexer_id, plugin_id,
		       public, proxy, render, cookie, ua, pri
		FROM sites WHERE plugin_id = ? ORDER BY name`, pluginID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sites for %s: %w", pluginID, err)
	}
	defer rows.Close()

	var result []Site
	for rows.Next() {
		site, err := scanSite(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan site: %w", err)
		}
		result = append(result, *site)
	}
	return result, rows.Err()
}

// ListAll returns every registered site ordered by priority then name.
func (r *Registry) ListAll(ctx context.Context) ([]Site, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT domain, site_id, name, url, indexer_id, plugin_id,
		       public, proxy, render, cookie, ua, pri
		FROM sites ORDER BY pri, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sites: %w", err)
	}
	defer rows.Close()

	var result []Site
	for rows.Next() {
		site, err := scanSite(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan site: %w", err)
		}
		result = append(result, *site)
	}
	return result, rows.Err()
}

// SyncMerge reconciles a plugin's registered sites with the current upstream
// set: every site in current is upserted and previously registered sites
// missing from it are deleted. Sites owned by other plugins are untouched.
func (r *Registry) SyncMerge(ctx context.Context, pluginID string, current []Site) error {
	existing, err := r.ListByPlugin(ctx, pluginID)
	if err != nil {
		return err
	}

	keep := make(map[string]bool, len(current))
	for _, site := range current {
		keep[site.Domain] = true
		if err := r.Add(ctx, site); err != nil {
			return err
		}
	}

	for _, site := range existing {
		if keep[site.Domain] {
			continue
		}
		if err := r.Delete(ctx, site.Domain); err != nil {
			return err
		}
		r.logger.Info().Str("domain", site.Domain).Str("plugin", pluginID).
			Msg("Removed site no longer present upstream")
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSite(row rowScanner) (*Site, error) {
	var s Site
	err := row.Scan(&s.Domain, &s.ID, &s.Name, &s.URL, &s.IndexerID, &s.PluginID,
		&s.Public, &s.Proxy, &s.Render, &s.Cookie, &s.UA, &s.Pri)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
