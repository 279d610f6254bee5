package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisWithClient(client), mr
}

func TestGetMissOnAbsentKey(t *testing.T) {
	store, _ := newTestStore(t)

	if _, err := store.Get(context.Background(), "nope"); !errors.Is(err, ErrMiss) {
		t.Fatalf("expected ErrMiss, got %v", err)
	}
}

func TestSetThenGet(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	value, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if value != "v" {
		t.Fatalf("expected v, got %q", value)
	}
}

func TestExpiredEntryIsAMiss(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	if err := store.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if _, err := store.Get(ctx, "k"); !errors.Is(err, ErrMiss) {
		t.Fatalf("expected ErrMiss after TTL elapsed, got %v", err)
	}
}

func TestSetRefusesNonPositiveTTL(t *testing.T) {
	store, _ := newTestStore(t)

	if err := store.Set(context.Background(), "k", "v", 0); err == nil {
		t.Fatal("expected error for zero TTL")
	}
}

func TestOverwriteResetsTTL(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	if err := store.Set(ctx, "k", "old", time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	mr.FastForward(30 * time.Second)
	if err := store.Set(ctx, "k", "new", time.Minute); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	mr.FastForward(45 * time.Second)

	value, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("expected fresh TTL to keep entry alive: %v", err)
	}
	if value != "new" {
		t.Fatalf("expected last write to win, got %q", value)
	}
}

func TestFingerprintIsStableAndNamespaced(t *testing.T) {
	a := Fingerprint("search:response", "user-1", "t bnk p")
	b := Fingerprint("search:response", "user-1", "t bnk p")
	c := Fingerprint("search:response", "user-2", "t bnk p")

	if a != b {
		t.Fatalf("same inputs must produce the same key: %q vs %q", a, b)
	}
	if a == c {
		t.Fatal("different actors must produce different keys")
	}
	if got, want := a[:len("search:response:")], "search:response:"; got != want {
		t.Fatalf("expected namespace prefix %q, got %q", want, got)
	}
}

func TestGetSetJSON(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	if err := SetJSON(ctx, store, "j", payload{Name: "a2b", Count: 2}, time.Minute); err != nil {
		t.Fatalf("set json failed: %v", err)
	}

	var got payload
	if err := GetJSON(ctx, store, "j", &got); err != nil {
		t.Fatalf("get json failed: %v", err)
	}
	if got.Name != "a2b" || got.Count != 2 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}
