package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"ecolearn-challenge-service/internal/domain"
)

func TestChallengeStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewChallengeStore()

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, domain.ErrChallengeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := store.Update(ctx, "missing", func(*domain.Challenge) error { return nil }); !errors.Is(err, domain.ErrChallengeNotFound) {
		t.Fatalf("expected not found on update, got %v", err)
	}

	if err := store.Create(ctx, domain.Challenge{ID: "c1", FromUser: "a", ToUser: "b", Status: domain.StatusPending}); err != nil {
		t.Fatalf("create: %v", err)
	}
	pending, _ := store.ListPending(ctx, "b")
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending invite, got %d", len(pending))
	}

	if _, err := store.Update(ctx, "c1", func(c *domain.Challenge) error {
		c.Status = domain.StatusAccepted
		return nil
	}); err != nil {
		t.Fatalf("update: %v", err)
	}
	pending, _ = store.ListPending(ctx, "b")
	if len(pending) != 0 {
		t.Fatalf("expected no pending invites after accept, got %d", len(pending))
	}
}

func TestChallengeStoreDiscardsFailedUpdate(t *testing.T) {
	ctx := context.Background()
	store := NewChallengeStore()
	_ = store.Create(ctx, domain.Challenge{ID: "c1", Status: domain.StatusPending})

	boom := errors.New("boom")
	_, err := store.Update(ctx, "c1", func(c *domain.Challenge) error {
		c.Status = domain.StatusCompleted
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected fn error, got %v", err)
	}
	got, _ := store.Get(ctx, "c1")
	if got.Status != domain.StatusPending {
		t.Fatalf("failed update leaked state: %s", got.Status)
	}
}

func TestChallengeStoreSerializesUpdates(t *testing.T) {
	ctx := context.Background()
	store := NewChallengeStore()
	_ = store.Create(ctx, domain.Challenge{ID: "c1"})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = store.Update(ctx, "c1", func(c *domain.Challenge) error {
				c.NumQuestions++
				return nil
			})
		}()
	}
	wg.Wait()

	got, _ := store.Get(ctx, "c1")
	if got.NumQuestions != 50 {
		t.Fatalf("expected 50 serialized increments, got %d", got.NumQuestions)
	}
}
