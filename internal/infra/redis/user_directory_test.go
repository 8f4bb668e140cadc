package redis

import (
	"context"
	"errors"
	"testing"

	"ecolearn-challenge-service/internal/domain"
)

func TestUserDirectorySolvedSet(t *testing.T) {
	_, client := startRedis(t)
	users := NewUserDirectory(client)
	ctx := context.Background()

	if err := users.Add(ctx, "alice", "bob"); err != nil {
		t.Fatalf("add users: %v", err)
	}
	if ok, _ := users.Exists(ctx, "alice"); !ok {
		t.Fatalf("expected alice to exist")
	}
	if ok, _ := users.Exists(ctx, "ghost"); ok {
		t.Fatalf("ghost must not exist")
	}

	_ = users.MarkSolved(ctx, "alice", "q1")
	_ = users.MarkSolved(ctx, "alice", "q1")
	_ = users.MarkSolved(ctx, "alice", "q2")
	solved, err := users.Solved(ctx, "alice")
	if err != nil {
		t.Fatalf("solved: %v", err)
	}
	if len(solved) != 2 {
		t.Fatalf("expected 2 solved questions, got %v", solved)
	}
	if _, ok := solved["q1"]; !ok {
		t.Fatalf("expected q1 solved")
	}

	if err := users.MarkSolved(ctx, "ghost", "q1"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected user not found, got %v", err)
	}
}
