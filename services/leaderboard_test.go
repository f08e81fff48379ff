package services

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func newTestLeaderboard(t *testing.T) *LeaderboardCache {
	t.Helper()
	mr := miniredis.RunT(t)
	cache, err := NewLeaderboardCache("redis://" + mr.Addr())
	if err != nil {
		t.Fatalf("connect to miniredis: %v", err)
	}
	t.Cleanup(func() { cache.Close() })
	return cache
}

func TestLeaderboardCacheDisabled(t *testing.T) {
	cache, err := NewLeaderboardCache("")
	if err != nil {
		t.Fatalf("empty url should disable, got err %v", err)
	}
	if cache != nil {
		t.Fatal("empty url should return a nil cache")
	}

	// Every operation must be a no-op on the nil cache.
	ctx := context.Background()
	if err := cache.SetRating(ctx, "p1", 1200); err != nil {
		t.Errorf("SetRating on nil cache: %v", err)
	}
	if err := cache.Remove(ctx, "p1"); err != nil {
		t.Errorf("Remove on nil cache: %v", err)
	}
	entries, err := cache.Top(ctx, 10)
	if err != nil || entries != nil {
		t.Errorf("Top on nil cache = (%v, %v), want (nil, nil)", entries, err)
	}
	if err := cache.Rebuild(ctx, nil); err != nil {
		t.Errorf("Rebuild on nil cache: %v", err)
	}
	if err := cache.Close(); err != nil {
		t.Errorf("Close on nil cache: %v", err)
	}
}

func TestLeaderboardTopOrdering(t *testing.T) {
	cache := newTestLeaderboard(t)
	ctx := context.Background()

	ratings := map[string]int{"anna": 1450, "boris": 1825, "clara": 1210, "dmitri": 1825}
	for id, r := range ratings {
		if err := cache.SetRating(ctx, id, r); err != nil {
			t.Fatalf("SetRating(%s): %v", id, err)
		}
	}

	entries, err := cache.Top(ctx, 3)
	if err != nil {
		t.Fatalf("Top: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	if entries[0].Rating != 1825 || entries[1].Rating != 1825 {
		t.Errorf("top two ratings = %d, %d; want both 1825", entries[0].Rating, entries[1].Rating)
	}
	if entries[2].PlayerID != "anna" || entries[2].Rating != 1450 {
		t.Errorf("third entry = %+v, want anna/1450", entries[2])
	}
}

func TestLeaderboardSetRatingOverwrites(t *testing.T) {
	cache := newTestLeaderboard(t)
	ctx := context.Background()

	if err := cache.SetRating(ctx, "anna", 1200); err != nil {
		t.Fatal(err)
	}
	if err := cache.SetRating(ctx, "anna", 1212); err != nil {
		t.Fatal(err)
	}

	entries, err := cache.Top(ctx, 10)
	if err != nil {
		t.Fatalf("Top: %v", err)
	}
	if len(entries) != 1 || entries[0].Rating != 1212 {
		t.Errorf("entries = %+v, want single anna/1212", entries)
	}
}

func TestLeaderboardRemove(t *testing.T) {
	cache := newTestLeaderboard(t)
	ctx := context.Background()

	cache.SetRating(ctx, "anna", 1400)
	cache.SetRating(ctx, "boris", 1300)
	if err := cache.Remove(ctx, "anna"); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	entries, err := cache.Top(ctx, 10)
	if err != nil {
		t.Fatalf("Top: %v", err)
	}
	if len(entries) != 1 || entries[0].PlayerID != "boris" {
		t.Errorf("entries = %+v, want only boris", entries)
	}
}

func TestLeaderboardRebuildReplaces(t *testing.T) {
	cache := newTestLeaderboard(t)
	ctx := context.Background()

	cache.SetRating(ctx, "stale", 9999)
	err := cache.Rebuild(ctx, []LeaderboardEntry{
		{PlayerID: "anna", Rating: 1500},
		{PlayerID: "boris", Rating: 1600},
	})
	if err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	entries, err := cache.Top(ctx, 10)
	if err != nil {
		t.Fatalf("Top: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries after rebuild, want 2", len(entries))
	}
	for _, e := range entries {
		if e.PlayerID == "stale" {
			t.Error("rebuild kept a stale member")
		}
	}
	if entries[0].PlayerID != "boris" {
		t.Errorf("top entry = %+v, want boris", entries[0])
	}
}
