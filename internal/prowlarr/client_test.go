package prowlarr

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(ClientConfig{
		URL:    server.URL,
		APIKey: "testkey",
		Logger: zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return client
}

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient(ClientConfig{APIKey: "k"}); !errors.Is(err, ErrInvalidURL) {
		t.Errorf("NewClient() without URL error = %v, want ErrInvalidURL", err)
	}
	if _, err := NewClient(ClientConfig{URL: "http://localhost:9696"}); !errors.Is(err, ErrInvalidAPIKey) {
		t.Errorf("NewClient() without key error = %v, want ErrInvalidAPIKey", err)
	}
}

func TestTestConnection(t *testing.T) {
	var gotHeader string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("X-Api-Key")
		if r.URL.Path != "/api/v1/system/status" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{"version":"1.21.2"}`))
	})

	if err := client.TestConnection(context.Background()); err != nil {
		t.Fatalf("TestConnection() error = %v", err)
	}
	if gotHeader != "testkey" {
		t.Errorf("X-Api-Key = %q, want testkey", gotHeader)
	}
}

func TestGetIndexersFiltersDisabled(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/indexer" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`[
			{"id":1,"name":"NZBgeek","protocol":"usenet","privacy":"private","enable":true},
			{"id":2,"name":"Disabled One","protocol":"torrent","privacy":"public","enable":false},
			{"id":3,"name":"RARBG","protocol":"torrent","privacy":"public","enable":true}
		]`))
	})

	indexers, err := client.GetIndexers(context.Background())
	if err != nil {
		t.Fatalf("GetIndexers() error = %v", err)
	}
	if len(indexers) != 2 {
		t.Fatalf("indexer count = %d, want 2 enabled", len(indexers))
	}
	if indexers[0].ID != 1 || indexers[1].ID != 3 {
		t.Errorf("indexer IDs = %d/%d, want 1/3", indexers[0].ID, indexers[1].ID)
	}
}

func TestSearchParams(t *testing.T) {
	var gotQuery url.Values
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(`[{"title":"The.Matrix.1999.1080p","downloadUrl":"http://example.com/dl","indexerId":3}]`))
	})

	results, err := client.Search(context.Background(), "the matrix", []int{3, 7}, []int{2000}, 1)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if gotQuery.Get("query") != "the matrix" || gotQuery.Get("type") != "search" {
		t.Errorf("query/type = %q/%q, want the matrix/search",
			gotQuery.Get("query"), gotQuery.Get("type"))
	}
	if gotQuery.Get("limit") != "100" || gotQuery.Get("offset") != "100" {
		t.Errorf("limit/offset = %q/%q, want 100/100",
			gotQuery.Get("limit"), gotQuery.Get("offset"))
	}

	ids := gotQuery["indexerIds"]
	if len(ids) != 2 || ids[0] != "3" || ids[1] != "7" {
		t.Errorf("indexerIds = %v, want [3 7]", ids)
	}
	cats := gotQuery["categories"]
	if len(cats) != 1 || cats[0] != "2000" {
		t.Errorf("categories = %v, want [2000]", cats)
	}

	if len(results) != 1 || results[0].Title != "The.Matrix.1999.1080p" {
		t.Errorf("results = %+v, want one parsed release", results)
	}
}

func TestDoJSONStatusHandling(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{"rate limited", http.StatusTooManyRequests, ErrRateLimited},
		{"unauthorized", http.StatusUnauthorized, ErrInvalidAPIKey},
		{"server error", http.StatusInternalServerError, ErrConnectionFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})

			_, err := client.Search(context.Background(), "x", nil, nil, 0)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Search() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRateLimiterBackoffAndRecovery(t *testing.T) {
	limiter := NewRateLimiter(RateLimiterConfig{
		MaxDelay:         4 * time.Second,
		BackoffFactor:    2.0,
		RecoveryRequests: 2,
		Logger:           zerolog.Nop(),
	})

	if got := limiter.GetCurrentDelay(); got != 0 {
		t.Errorf("initial delay = %v, want 0", got)
	}

	limiter.RecordRateLimited()
	if got := limiter.GetCurrentDelay(); got != time.Second {
		t.Errorf("delay after first 429 = %v, want 1s", got)
	}

	limiter.RecordRateLimited()
	if got := limiter.GetCurrentDelay(); got != 2*time.Second {
		t.Errorf("delay after second 429 = %v, want 2s", got)
	}

	// Backoff is capped at MaxDelay.
	limiter.RecordRateLimited()
	limiter.RecordRateLimited()
	if got := limiter.GetCurrentDelay(); got != 4*time.Second {
		t.Errorf("capped delay = %v, want 4s", got)
	}

	// Enough successes halve the delay.
	limiter.RecordSuccess()
	limiter.RecordSuccess()
	if got := limiter.GetCurrentDelay(); got != 2*time.Second {
		t.Errorf("delay after recovery = %v, want 2s", got)
	}

	// A plain error resets the success streak without raising the delay.
	limiter.RecordSuccess()
	limiter.RecordError()
	limiter.RecordSuccess()
	if got := limiter.GetCurrentDelay(); got != 2*time.Second {
		t.Errorf("delay after error reset = %v, want unchanged 2s", got)
	}
}

func TestSearchRateLimitedBacksOff(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	if _, err := client.Search(context.Background(), "x", nil, nil, 0); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("Search() error = %v, want ErrRateLimited", err)
	}
	if got := client.limiter.GetCurrentDelay(); got == 0 {
		t.Error("limiter delay = 0 after 429, want backoff applied")
	}
}
