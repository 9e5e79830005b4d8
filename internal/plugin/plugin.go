// Package plugin provides the host-side runtime for bridgearr plugins:
// lifecycle management, persisted configuration, capability discovery and
// search dispatch across registered site providers.
package plugin

import (
	"context"
	"encoding/json"

	"github.com/labstack/echo/v4"

	"github.com/bridgearr/bridgearr/internal/scheduler"
)

// MediaKind classifies what a search is looking for.
type MediaKind string

const (
	MediaMovie   MediaKind = "movie"
	MediaTV      MediaKind = "tv"
	MediaUnknown MediaKind = ""
)

// SearchRequest describes a torrent search against a registered site.
type SearchRequest struct {
	Keyword string    `json:"keyword"`
	Kind    MediaKind `json:"kind"`
	Page    int       `json:"page"`
}

// TorrentRecord is the normalized torrent result shared by all indexer
// plugins. PubDate is kept as a formatted string because upstream feeds
// disagree on date formats and unparseable values are passed through as-is.
type TorrentRecord struct {
	Title                string   `json:"title"`
	Description          string   `json:"description,omitempty"`
	Enclosure            string   `json:"enclosure"`
	PageURL              string   `json:"page_url,omitempty"`
	Size                 int64    `json:"size"`
	Seeders              int      `json:"seeders"`
	Peers                int      `json:"peers"`
	Grabs                int      `json:"grabs"`
	PubDate              string   `json:"pubdate,omitempty"`
	ImdbID               string   `json:"imdbid,omitempty"`
	DownloadVolumeFactor float64  `json:"downloadvolumefactor"`
	UploadVolumeFactor   float64  `json:"uploadvolumefactor"`
	Labels               []string `json:"labels,omitempty"`
	SiteName             string   `json:"site_name"`
	SiteOrder            int      `json:"site_order"`
}

// Meta identifies a plugin to the host and its UI.
type Meta struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Version     string `json:"version"`
	Author      string `json:"author"`
	Icon        string `json:"icon,omitempty"`
	Order       int    `json:"order"`
}

// Command is a remote command a plugin responds to, e.g. "/trakt_sync".
type Command struct {
	Action      string `json:"action"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// Plugin is the lifecycle contract every plugin implements. Init must be
// idempotent: the manager calls Stop followed by Init on every config change.
type Plugin interface {
	Meta() Meta
	Init(ctx context.Context, raw json.RawMessage) error
	Stop(ctx context.Context) error
	State() bool
	Form() ([]Component, map[string]any)
	Page() []Component
}

// SearchProvider is implemented by plugins that register searchable sites.
// SitePrefix is the leading segment of the site names the plugin owns
// ("Jackett" for sites named "Jackett-<indexer>"); the manager routes
// searches by that prefix.
type SearchProvider interface {
	SitePrefix() string
	Search(ctx context.Context, siteName string, req SearchRequest) ([]TorrentRecord, error)
}

// APIProvider is implemented by plugins that expose HTTP routes. Routes are
// mounted under /api/v1/plugins/<id>.
type APIProvider interface {
	Routes(g *echo.Group)
}

// ServiceProvider is implemented by plugins that run scheduled jobs.
// Services is re-queried after every config change.
type ServiceProvider interface {
	Services() []scheduler.TaskConfig
}

// CommandProvider is implemented by plugins that answer remote commands.
type CommandProvider interface {
	Commands() []Command
	HandleCommand(ctx context.Context, action string) error
}
