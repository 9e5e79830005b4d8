package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bridgearr/bridgearr/internal/config"
	"github.com/bridgearr/bridgearr/internal/plugin"
	"github.com/bridgearr/bridgearr/internal/scheduler"
	"github.com/bridgearr/bridgearr/internal/sites"
	"github.com/bridgearr/bridgearr/internal/testutil"
)

type stubPlugin struct {
	id      string
	prefix  string
	enabled bool
	records []plugin.TorrentRecord

	handled []string
}

func (s *stubPlugin) Meta() plugin.Meta {
	return plugin.Meta{ID: s.id, Name: s.id, Version: "1.0"}
}

func (s *stubPlugin) Init(context.Context, json.RawMessage) error { return nil }
func (s *stubPlugin) Stop(context.Context) error                  { return nil }
func (s *stubPlugin) State() bool                                 { return s.enabled }

func (s *stubPlugin) Form() ([]plugin.Component, map[string]any) {
	return plugin.Form(plugin.Row(plugin.Col(nil, plugin.Switch("enabled", "Enable")))),
		map[string]any{"enabled": false}
}

func (s *stubPlugin) Page() []plugin.Component { return nil }

func (s *stubPlugin) SitePrefix() string { return s.prefix }

func (s *stubPlugin) Search(context.Context, string, plugin.SearchRequest) ([]plugin.TorrentRecord, error) {
	return s.records, nil
}

func (s *stubPlugin) Commands() []plugin.Command {
	return []plugin.Command{{Action: "/stub_sync", Name: "Stub sync"}}
}

func (s *stubPlugin) HandleCommand(_ context.Context, action string) error {
	s.handled = append(s.handled, action)
	return nil
}

func newTestServer(t *testing.T) (*Server, *stubPlugin) {
	t.Helper()
	tdb := testutil.NewTestDB(t)

	sched, err := scheduler.New(tdb.Logger)
	if err != nil {
		t.Fatalf("scheduler.New() error = %v", err)
	}
	t.Cleanup(func() { sched.Stop() })

	registry := sites.NewRegistry(tdb.Conn, tdb.Logger)
	manager := plugin.NewManager(plugin.NewConfigStore(tdb.Conn), sched, registry, tdb.Logger)

	stub := &stubPlugin{
		id:      "stubindexer",
		prefix:  "Stub",
		enabled: true,
		records: []plugin.TorrentRecord{{Title: "Some.Release", SiteName: "Stub-Site"}},
	}
	if err := manager.Register(stub); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := manager.InitAll(context.Background()); err != nil {
		t.Fatalf("InitAll() error = %v", err)
	}

	return NewServer(&config.Config{}, manager, sched, tdb.Logger), stub
}

func doRequest(s *Server, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(s, http.MethodGet, "/api/v1/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestSearchRequiresSite(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(s, http.MethodGet, "/api/v1/search?q=matrix", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 without site", rec.Code)
	}
}

func TestSearchDispatches(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(s, http.MethodGet, "/api/v1/search?site=Stub-Site&q=matrix&type=movie", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var records []plugin.TorrentRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &records); err != nil {
		t.Fatalf("response decode error = %v", err)
	}
	if len(records) != 1 || records[0].Title != "Some.Release" {
		t.Errorf("records = %+v, want one stub result", records)
	}
}

func TestSearchUnknownSiteReturnsEmptyArray(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(s, http.MethodGet, "/api/v1/search?site=Nobody-Home", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Errorf("body = %q, want [] not null", got)
	}
}

func TestListPlugins(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(s, http.MethodGet, "/api/v1/plugins", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var statuses []plugin.Status
	if err := json.Unmarshal(rec.Body.Bytes(), &statuses); err != nil {
		t.Fatalf("response decode error = %v", err)
	}
	if len(statuses) != 1 || statuses[0].ID != "stubindexer" || !statuses[0].Enabled {
		t.Errorf("statuses = %+v, want the enabled stub plugin", statuses)
	}
}

func TestGetConfig(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(s, http.MethodGet, "/api/v1/plugins/ghost/config", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 for unknown plugin", rec.Code)
	}

	rec = doRequest(s, http.MethodGet, "/api/v1/plugins/stubindexer/config", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "{}" {
		t.Errorf("unconfigured body = %q, want {}", got)
	}
}

func TestPutConfig(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(s, http.MethodPut, "/api/v1/plugins/stubindexer/config", `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for invalid JSON", rec.Code)
	}

	rec = doRequest(s, http.MethodPut, "/api/v1/plugins/stubindexer/config", `{"enabled":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	rec = doRequest(s, http.MethodGet, "/api/v1/plugins/stubindexer/config", "")
	if got := strings.TrimSpace(rec.Body.String()); got != `{"enabled":true}` {
		t.Errorf("persisted config = %q, want the saved JSON", got)
	}
}

func TestForm(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(s, http.MethodGet, "/api/v1/plugins/stubindexer/form", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Form     []plugin.Component `json:"form"`
		Defaults map[string]any     `json:"defaults"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response decode error = %v", err)
	}
	if len(body.Form) != 1 {
		t.Errorf("form components = %d, want 1", len(body.Form))
	}
	if body.Defaults["enabled"] != false {
		t.Errorf("defaults = %v, want enabled=false", body.Defaults)
	}
}

func TestCommand(t *testing.T) {
	s, stub := newTestServer(t)

	rec := doRequest(s, http.MethodPost, "/api/v1/plugins/stubindexer/command/stub_sync", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if len(stub.handled) != 1 || stub.handled[0] != "/stub_sync" {
		t.Errorf("handled = %v, want [/stub_sync]", stub.handled)
	}

	rec = doRequest(s, http.MethodPost, "/api/v1/plugins/stubindexer/command/bogus", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for unknown command", rec.Code)
	}
}

func TestSchedulerRoutes(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(s, http.MethodGet, "/api/v1/scheduler/tasks", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	rec = doRequest(s, http.MethodPost, "/api/v1/scheduler/tasks/ghost/run", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for unknown task", rec.Code)
	}
}
