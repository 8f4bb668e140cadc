package redis

import (
	"context"
	"testing"
)

func TestPointsLedgerCreditIsIdempotent(t *testing.T) {
	_, client := startRedis(t)
	ledger := NewPointsLedger(client)
	ctx := context.Background()

	balance, err := ledger.Credit(ctx, "challenge:c1", "alice", 30)
	if err != nil {
		t.Fatalf("credit: %v", err)
	}
	if balance != 30 {
		t.Fatalf("expected balance 30, got %d", balance)
	}

	balance, err = ledger.Credit(ctx, "challenge:c1", "alice", 30)
	if err != nil {
		t.Fatalf("credit retry: %v", err)
	}
	if balance != 30 {
		t.Fatalf("retry must not credit twice, got %d", balance)
	}

	balance, _ = ledger.Credit(ctx, "challenge:c2", "alice", 30)
	if balance != 60 {
		t.Fatalf("expected 60 after second challenge, got %d", balance)
	}

	if got, _ := ledger.Balance(ctx, "alice"); got != 60 {
		t.Fatalf("expected stored balance 60, got %d", got)
	}
	if got, _ := ledger.Balance(ctx, "nobody"); got != 0 {
		t.Fatalf("expected zero balance for unknown user, got %d", got)
	}
}

func TestPointsLedgerLeaderboard(t *testing.T) {
	_, client := startRedis(t)
	ledger := NewPointsLedger(client)
	ctx := context.Background()

	_, _ = ledger.Credit(ctx, "k1", "bob", 30)
	_, _ = ledger.Credit(ctx, "k2", "alice", 30)
	_, _ = ledger.Credit(ctx, "k3", "carol", 60)

	board, err := ledger.Leaderboard(ctx, 0)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	want := []string{"carol", "alice", "bob"}
	if len(board) != len(want) {
		t.Fatalf("expected %d entries, got %+v", len(want), board)
	}
	for i, id := range want {
		if board[i].UserID != id {
			t.Fatalf("position %d: expected %s, got %+v", i, id, board)
		}
	}

	top, _ := ledger.Leaderboard(ctx, 1)
	if len(top) != 1 || top[0].UserID != "carol" || top[0].Points != 60 {
		t.Fatalf("unexpected top entry %+v", top)
	}
}

func TestPointsLedgerLeaderboardTieAtLimit(t *testing.T) {
	_, client := startRedis(t)
	ledger := NewPointsLedger(client)
	ctx := context.Background()

	_, _ = ledger.Credit(ctx, "k1", "dave", 90)
	_, _ = ledger.Credit(ctx, "k2", "carol", 30)
	_, _ = ledger.Credit(ctx, "k3", "alice", 30)
	_, _ = ledger.Credit(ctx, "k4", "bob", 30)

	board, err := ledger.Leaderboard(ctx, 3)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	want := []string{"dave", "alice", "bob"}
	if len(board) != len(want) {
		t.Fatalf("expected %d entries, got %+v", len(want), board)
	}
	for i, id := range want {
		if board[i].UserID != id {
			t.Fatalf("position %d: expected %s, got %+v", i, id, board)
		}
	}
}
