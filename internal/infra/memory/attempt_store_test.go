package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"adaptive-quiz-service/internal/domain"
)

func TestAttemptStoreKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	store := NewAttemptStore()

	for i, email := range []string{"a@example.com", "b@example.com", "a@example.com"} {
		rec := domain.AttemptRecord{ID: string(rune('1' + i)), Email: email, Score: i * 10}
		if err := store.Insert(ctx, rec); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	all, err := store.All(ctx)
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(all) != 3 || all[0].ID != "1" || all[2].ID != "3" {
		t.Fatalf("unexpected order %+v", all)
	}

	mine, _ := store.FindByEmail(ctx, "a@example.com")
	if len(mine) != 2 || mine[0].ID != "1" || mine[1].ID != "3" {
		t.Fatalf("unexpected filtered records %+v", mine)
	}

	upper, _ := store.FindByEmail(ctx, "A@example.com")
	if len(upper) != 0 {
		t.Fatalf("expected case-sensitive match, got %+v", upper)
	}
}

func TestAttemptStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewAttemptStore()
	_ = store.Insert(ctx, domain.AttemptRecord{ID: "1", Responses: []domain.Response{{Question: "Q1", UserAnswer: "A"}}})

	all, _ := store.All(ctx)
	all[0].Responses[0].UserAnswer = "Z"

	again, _ := store.All(ctx)
	if again[0].Responses[0].UserAnswer != "A" {
		t.Fatalf("stored record mutated through returned copy")
	}
}

func TestLeaderboardCacheLoadsOnceUntilInvalidated(t *testing.T) {
	ctx := context.Background()
	cache := NewLeaderboardCache(time.Minute)

	var mu sync.Mutex
	loads := 0
	load := func(context.Context) ([]domain.LeaderboardEntry, error) {
		mu.Lock()
		loads++
		mu.Unlock()
		return []domain.LeaderboardEntry{{ID: "1", Score: 10}}, nil
	}

	for i := 0; i < 3; i++ {
		if _, err := cache.Leaderboard(ctx, load); err != nil {
			t.Fatalf("leaderboard: %v", err)
		}
	}
	if loads != 1 {
		t.Fatalf("expected one load, got %d", loads)
	}

	_ = cache.Invalidate(ctx)
	if _, err := cache.Leaderboard(ctx, load); err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if loads != 2 {
		t.Fatalf("expected reload after invalidation, got %d", loads)
	}
}

func TestLeaderboardCacheExpiresAndSkipsErrors(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 11, 22, 10, 0, 0, 0, time.UTC)
	cache := NewLeaderboardCache(time.Minute)
	cache.clock = func() time.Time { return now }

	boom := errors.New("store down")
	if _, err := cache.Leaderboard(ctx, func(context.Context) ([]domain.LeaderboardEntry, error) { return nil, boom }); !errors.Is(err, boom) {
		t.Fatalf("expected load error, got %v", err)
	}

	loads := 0
	load := func(context.Context) ([]domain.LeaderboardEntry, error) {
		loads++
		return nil, nil
	}
	_, _ = cache.Leaderboard(ctx, load)
	now = now.Add(2 * time.Minute)
	_, _ = cache.Leaderboard(ctx, load)
	if loads != 2 {
		t.Fatalf("expected reload after expiry, got %d", loads)
	}
}
