package cache

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestNear_ServesRereadWithoutStore(t *testing.T) {
	near, err := NewNear(100)
	if err != nil {
		t.Fatalf("NewNear error: %v", err)
	}
	st := newMemStore()
	s := NewStash(st, WithNear(near))
	ctx := context.Background()

	if err := s.Save(ctx, "k", "v", 0); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	val, ok, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if !ok || val != "v" {
		t.Fatalf("expected near hit, got (%q, %v)", val, ok)
	}
	if st.getCount() != 0 {
		t.Fatalf("expected no store round trip, got %d", st.getCount())
	}
}

func TestNear_DeleteInvalidates(t *testing.T) {
	near, err := NewNear(100)
	if err != nil {
		t.Fatalf("NewNear error: %v", err)
	}
	st := newMemStore()
	s := NewStash(st, WithNear(near))
	ctx := context.Background()

	_ = s.Save(ctx, "k", "v", 0)
	_ = s.Delete(ctx, "k")

	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Fatal("expected miss after Delete")
	}
	if st.getCount() == 0 {
		t.Fatal("expected the read to fall through to the store")
	}
}

func TestNear_StoreHitIsPromoted(t *testing.T) {
	near, err := NewNear(100)
	if err != nil {
		t.Fatalf("NewNear error: %v", err)
	}
	st := newMemStore()
	s := NewStash(st, WithNear(near))
	ctx := context.Background()

	// Written behind the near cache's back, as another process would.
	if err := st.Set(ctx, "k", "remote"); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	if val, ok, _ := s.Get(ctx, "k"); !ok || val != "remote" {
		t.Fatalf("expected store hit, got (%q, %v)", val, ok)
	}
	before := st.getCount()
	if val, ok, _ := s.Get(ctx, "k"); !ok || val != "remote" {
		t.Fatalf("expected promoted hit, got (%q, %v)", val, ok)
	}
	if st.getCount() != before {
		t.Fatal("second read should have been served from the near cache")
	}

	// Existence checks must bypass the near cache.
	time.Sleep(10 * time.Millisecond)
	if ok, _ := s.Exists(ctx, "k"); !ok {
		t.Fatal("Exists should consult the store")
	}
}

func TestNear_PromotedHitRespectsStoreTTL(t *testing.T) {
	near, err := NewNear(100)
	if err != nil {
		t.Fatalf("NewNear error: %v", err)
	}
	st := newMemStore()
	s := NewStash(st, WithNear(near))
	ctx := context.Background()

	// Written by another process with a short TTL.
	if ok, err := st.SetIfAbsent(ctx, "k", "v", 200*time.Millisecond); !ok || err != nil {
		t.Fatalf("SetIfAbsent: ok=%v err=%v", ok, err)
	}

	// The first read promotes the value into the near cache with the
	// store's remaining TTL.
	if val, ok, _ := s.Get(ctx, "k"); !ok || val != "v" {
		t.Fatalf("expected store hit, got (%q, %v)", val, ok)
	}

	time.Sleep(300 * time.Millisecond)

	// The store entry has expired; the near copy must not outlive it.
	if val, ok, _ := s.Get(ctx, "k"); ok {
		t.Fatalf("expired value still served from near cache: %q", val)
	}
}

func TestNear_NoExpiryEntryStaysPromoted(t *testing.T) {
	near, err := NewNear(100)
	if err != nil {
		t.Fatalf("NewNear error: %v", err)
	}
	st := newMemStore()
	s := NewStash(st, WithNear(near))
	ctx := context.Background()

	if err := st.Set(ctx, "k", "forever"); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if val, ok, _ := s.Get(ctx, "k"); !ok || val != "forever" {
		t.Fatalf("expected store hit, got (%q, %v)", val, ok)
	}

	before := st.getCount()
	if val, ok, _ := s.Get(ctx, "k"); !ok || val != "forever" {
		t.Fatalf("expected promoted hit, got (%q, %v)", val, ok)
	}
	if st.getCount() != before {
		t.Fatal("entry without expiry should have been promoted")
	}
}

func histSampleCount(t *testing.T, h prometheus.Histogram) uint64 {
	t.Helper()
	var m dto.Metric
	if err := h.Write(&m); err != nil {
		t.Fatalf("reading histogram: %v", err)
	}
	return m.GetHistogram().GetSampleCount()
}

func TestNear_HitObservesReadHistograms(t *testing.T) {
	near, err := NewNear(100)
	if err != nil {
		t.Fatalf("NewNear error: %v", err)
	}
	st := newMemStore()
	s := NewStash(st, WithNear(near))
	ctx := context.Background()

	if err := s.Save(ctx, "k", "v", 0); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	roundsBefore := histSampleCount(t, pollRounds)
	waitBefore := histSampleCount(t, waitSeconds)

	if _, ok, _ := s.Get(ctx, "k"); !ok {
		t.Fatal("expected near hit")
	}
	if st.getCount() != 0 {
		t.Fatal("expected no store round trip")
	}

	if got := histSampleCount(t, pollRounds); got != roundsBefore+1 {
		t.Fatalf("pollRounds samples = %d, want %d", got, roundsBefore+1)
	}
	if got := histSampleCount(t, waitSeconds); got != waitBefore+1 {
		t.Fatalf("waitSeconds samples = %d, want %d", got, waitBefore+1)
	}
}
