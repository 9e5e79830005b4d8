package subscription_test

import (
	"context"
	"testing"

	"github.com/bridgearr/bridgearr/internal/subscription"
	"github.com/bridgearr/bridgearr/internal/testutil"
)

func newTestService(t *testing.T) *subscription.Service {
	t.Helper()
	tdb := testutil.NewTestDB(t)
	return subscription.NewService(tdb.Conn, tdb.Logger)
}

func TestAddAndExists(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	exists, err := svc.Exists(ctx, 603, subscription.KindMovie)
	if err != nil {
		t.Fatalf("Exists() error = %v", err)
	}
	if exists {
		t.Error("Exists() = true before Add")
	}

	added, err := svc.Add(ctx, subscription.Subscription{
		TmdbID: 603,
		Title:  "The Matrix",
		Year:   1999,
		Kind:   subscription.KindMovie,
	})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if !added {
		t.Error("Add() added = false, want true")
	}

	exists, err = svc.Exists(ctx, 603, subscription.KindMovie)
	if err != nil {
		t.Fatalf("Exists() error = %v", err)
	}
	if !exists {
		t.Error("Exists() = false after Add")
	}
}

func TestAddDuplicateIsNoop(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	sub := subscription.Subscription{TmdbID: 603, Title: "The Matrix", Year: 1999, Kind: subscription.KindMovie}
	if _, err := svc.Add(ctx, sub); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	added, err := svc.Add(ctx, sub)
	if err != nil {
		t.Fatalf("Add() duplicate error = %v", err)
	}
	if added {
		t.Error("Add() duplicate added = true, want false")
	}

	subs, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(subs) != 1 {
		t.Errorf("List() count = %d, want 1", len(subs))
	}
}

func TestSameTmdbIDDifferentKind(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	// A movie and a show can share a TMDB ID.
	for _, kind := range []subscription.Kind{subscription.KindMovie, subscription.KindShow} {
		added, err := svc.Add(ctx, subscription.Subscription{TmdbID: 42, Title: "Sample", Kind: kind})
		if err != nil {
			t.Fatalf("Add(%s) error = %v", kind, err)
		}
		if !added {
			t.Errorf("Add(%s) added = false, want true", kind)
		}
	}
}

func TestDelete(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Add(ctx, subscription.Subscription{TmdbID: 603, Title: "The Matrix", Kind: subscription.KindMovie}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	subs, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(subs) != 1 {
		t.Fatalf("List() count = %d, want 1", len(subs))
	}

	if err := svc.Delete(ctx, subs[0].ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	subs, err = svc.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(subs) != 0 {
		t.Errorf("List() count after delete = %d, want 0", len(subs))
	}
}
