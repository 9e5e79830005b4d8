package prowlarr_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/bridgearr/bridgearr/internal/plugin"
	"github.com/bridgearr/bridgearr/internal/prowlarr"
	"github.com/bridgearr/bridgearr/internal/sites"
	"github.com/bridgearr/bridgearr/internal/testutil"
)

const testIndexersJSON = `[
	{"id":3,"name":"NZBgeek","protocol":"usenet","privacy":"private","enable":true},
	{"id":5,"name":"RARBG (Clone)","protocol":"torrent","privacy":"public","enable":true},
	{"id":9,"name":"Disabled One","protocol":"torrent","privacy":"public","enable":false}
]`

const testSearchJSON = `[
	{"title":"The.Matrix.1999.1080p","downloadUrl":"http://example.com/dl/1","size":734003200,
	 "seeders":42,"leechers":8,"publishDate":"2023-06-15T10:30:00Z","indexerId":3,
	 "indexerFlags":["freeleech"]},
	{"title":"","downloadUrl":"http://example.com/dl/2"}
]`

type fixture struct {
	plugin   *prowlarr.Plugin
	registry *sites.Registry
	server   *httptest.Server
	searches []url.Values
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	tdb := testutil.NewTestDB(t)

	f := &fixture{}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/indexer":
			w.Write([]byte(testIndexersJSON))
		case "/api/v1/search":
			f.searches = append(f.searches, r.URL.Query())
			w.Write([]byte(testSearchJSON))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(f.server.Close)

	f.registry = sites.NewRegistry(tdb.Conn, tdb.Logger)
	f.plugin = prowlarr.New(plugin.NewConfigStore(tdb.Conn), f.registry, tdb.Logger)

	raw, _ := json.Marshal(map[string]any{
		"enabled": true,
		"host":    f.server.URL,
		"api_key": "testkey",
	})
	if err := f.plugin.Init(context.Background(), raw); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	return f
}

func TestSyncRegistersEnabledIndexers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.plugin.Sync(ctx); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}

	registered, err := f.registry.ListByPlugin(ctx, prowlarr.PluginID)
	if err != nil {
		t.Fatalf("ListByPlugin() error = %v", err)
	}
	if len(registered) != 2 {
		t.Fatalf("site count = %d, want 2 enabled indexers", len(registered))
	}

	site, err := f.registry.GetByName(ctx, "Prowlarr-NZBgeek")
	if err != nil {
		t.Fatalf("GetByName() error = %v", err)
	}
	if site.Domain != "http://prowlarr.nzbgeek.indexer" {
		t.Errorf("Domain = %q, want http://prowlarr.nzbgeek.indexer", site.Domain)
	}
	if site.IndexerID != "3" {
		t.Errorf("IndexerID = %q, want 3", site.IndexerID)
	}
	if site.Public {
		t.Error("Public = true for private indexer, want false")
	}

	clone, err := f.registry.GetByName(ctx, "Prowlarr-RARBG (Clone)")
	if err != nil {
		t.Fatalf("GetByName() error = %v", err)
	}
	if clone.Domain != "http://prowlarr.rarbg-clone.indexer" {
		t.Errorf("Domain = %q, want slugged rarbg-clone domain", clone.Domain)
	}
	if !clone.Public {
		t.Error("Public = false for public indexer, want true")
	}
}

func TestSearchUsesIndexerIDColumn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.plugin.Sync(ctx); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}

	records, err := f.plugin.Search(ctx, "Prowlarr-NZBgeek", plugin.SearchRequest{
		Keyword: "the matrix",
		Kind:    plugin.MediaMovie,
	})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if len(f.searches) != 1 {
		t.Fatalf("upstream searches = %d, want 1", len(f.searches))
	}
	if got := f.searches[0].Get("indexerIds"); got != "3" {
		t.Errorf("indexerIds = %q, want 3", got)
	}

	// The titleless result is dropped; the freeleech flag maps through.
	if len(records) != 1 {
		t.Fatalf("record count = %d, want 1", len(records))
	}
	if records[0].DownloadVolumeFactor != 0.0 {
		t.Errorf("DownloadVolumeFactor = %v, want 0 for freeleech", records[0].DownloadVolumeFactor)
	}
	if records[0].SiteName != "Prowlarr-NZBgeek" {
		t.Errorf("SiteName = %q, want Prowlarr-NZBgeek", records[0].SiteName)
	}
}

func TestSearchRejectsNonNumericIndexerID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// A row written by hand without a numeric upstream ID cannot be searched.
	err := f.registry.Add(ctx, sites.Site{
		Domain:   "http://prowlarr.manual.indexer",
		ID:       "Prowlarr-Manual",
		Name:     "Prowlarr-Manual",
		PluginID: prowlarr.PluginID,
	})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	if _, err := f.plugin.Search(ctx, "Prowlarr-Manual", plugin.SearchRequest{Keyword: "x"}); err == nil {
		t.Error("Search() error = nil, want error for non-numeric indexer ID")
	}
}
