package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"ecolearn-challenge-service/internal/domain"
)

func TestChallengeStoreCreateGetAndPending(t *testing.T) {
	_, client := startRedis(t)
	store := NewChallengeStore(client)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	for i, id := range []string{"c1", "c2"} {
		err := store.Create(ctx, domain.Challenge{
			ID: id, FromUser: "alice", ToUser: "bob", NumQuestions: 5,
			Status: domain.StatusPending, CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}
	if err := store.Create(ctx, domain.Challenge{ID: "c1", Status: domain.StatusPending}); err == nil {
		t.Fatalf("expected duplicate create to fail")
	}

	got, err := store.Get(ctx, "c1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.FromUser != "alice" || got.NumQuestions != 5 {
		t.Fatalf("unexpected challenge %+v", got)
	}
	if _, err := store.Get(ctx, "missing"); !errors.Is(err, domain.ErrChallengeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	pending, err := store.ListPending(ctx, "bob")
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 2 || pending[0].ID != "c2" || pending[1].ID != "c1" {
		t.Fatalf("expected newest first, got %+v", pending)
	}

	_, err = store.Update(ctx, "c2", func(c *domain.Challenge) error {
		c.Status = domain.StatusAccepted
		return nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	pending, _ = store.ListPending(ctx, "bob")
	if len(pending) != 1 || pending[0].ID != "c1" {
		t.Fatalf("accepted challenge should leave pending index, got %+v", pending)
	}
}

func TestChallengeStoreUpdateRollsBackOnError(t *testing.T) {
	_, client := startRedis(t)
	store := NewChallengeStore(client)
	ctx := context.Background()
	_ = store.Create(ctx, domain.Challenge{ID: "c1", FromUser: "alice", ToUser: "bob", Status: domain.StatusAccepted})

	_, err := store.Update(ctx, "c1", func(c *domain.Challenge) error {
		c.Winner = "alice"
		return domain.ErrAlreadyResolved
	})
	if !errors.Is(err, domain.ErrAlreadyResolved) {
		t.Fatalf("expected fn error, got %v", err)
	}
	got, _ := store.Get(ctx, "c1")
	if got.Winner != "" {
		t.Fatalf("failed update must not persist, got winner %q", got.Winner)
	}

	if _, err := store.Update(ctx, "missing", func(*domain.Challenge) error { return nil }); !errors.Is(err, domain.ErrChallengeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestChallengeStoreConcurrentUpdatesAreSerialized(t *testing.T) {
	_, client := startRedis(t)
	store := NewChallengeStore(client)
	ctx := context.Background()
	_ = store.Create(ctx, domain.Challenge{ID: "c1", FromUser: "alice", ToUser: "bob", Status: domain.StatusAccepted})

	const writers = 12
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := store.Update(ctx, "c1", func(c *domain.Challenge) error {
				c.StartedUsers = append(c.StartedUsers, fmt.Sprintf("u%d", i))
				return nil
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("update: %v", err)
		}
	}

	got, _ := store.Get(ctx, "c1")
	if len(got.StartedUsers) != writers {
		t.Fatalf("expected %d writes to survive, got %d", writers, len(got.StartedUsers))
	}
}
