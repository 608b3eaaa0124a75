package redis

import (
	"context"
	"testing"

	"quizmaster/internal/badge"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) (*KVStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewKVStore(client), mr
}

func TestKVStorePrefixesKeys(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t)

	if err := store.Set(ctx, "earnedBadges", `["BEGINNER"]`); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !mr.Exists("quizmaster:earnedBadges") {
		t.Fatalf("expected prefixed redis key")
	}

	value, ok, err := store.Get(ctx, "earnedBadges")
	if err != nil || !ok || value != `["BEGINNER"]` {
		t.Fatalf("get: value=%q ok=%v err=%v", value, ok, err)
	}
}

func TestKVStoreMissingKey(t *testing.T) {
	store, _ := newTestStore(t)
	_, ok, err := store.Get(context.Background(), "badgeHistory")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Fatalf("expected miss for absent key")
	}
}

func TestKVStoreKeysNeverExpire(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t)

	if err := store.Set(ctx, "earnedBadges", `[]`); err != nil {
		t.Fatalf("set: %v", err)
	}
	if ttl := mr.TTL("quizmaster:earnedBadges"); ttl != 0 {
		t.Fatalf("badge keys must not expire, got ttl %v", ttl)
	}
}

func TestLedgerOverRedisRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	ledger := badge.NewLedger(store)
	milestone, _ := badge.DefaultCatalog().ByID("BEGINNER")
	if err := ledger.Claim(ctx, milestone, 5); err != nil {
		t.Fatalf("claim: %v", err)
	}

	// A fresh ledger over the same store sees the claim, as after a restart.
	restored := badge.NewLedger(store)
	if err := restored.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	if !restored.IsClaimed("BEGINNER") {
		t.Fatalf("claim not restored from redis")
	}
}
