package gosquirrelstash

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Keksclan/goSquirrelStash/cache"
)

func TestNew_RequiresAddress(t *testing.T) {
	if _, err := New(cache.ConnConfig{}); err == nil {
		t.Fatal("expected a configuration error for a missing address")
	}
}

func TestNew_AppliesOptions(t *testing.T) {
	cl, err := New(cache.ConnConfig{Addr: "localhost:6379"},
		WithNearCache(100),
		WithBackoff(20*time.Millisecond, 200*time.Millisecond),
		WithPollLimit(50, 10),
	)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if cl.Stash() == nil {
		t.Fatal("expected an assembled stash")
	}
}

func TestClient_UseBeforeConnectFailsLoudly(t *testing.T) {
	cl, err := New(cache.ConnConfig{Addr: "localhost:6379"})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	ctx := context.Background()

	if err := cl.Save(ctx, "k", "v", 0); !errors.Is(err, cache.ErrNotInitialized) {
		t.Fatalf("Save: expected ErrNotInitialized, got %v", err)
	}
	if _, _, err := cl.Get(ctx, "k"); !errors.Is(err, cache.ErrNotInitialized) {
		t.Fatalf("Get: expected ErrNotInitialized, got %v", err)
	}
}

func TestClient_CloseBeforeConnectIsNoop(t *testing.T) {
	cl, err := New(cache.ConnConfig{Addr: "localhost:6379"})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if err := cl.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
}
