package memory

import (
	"context"
	"sort"
	"sync"

	"ecolearn-challenge-service/internal/domain"
)

// PointsLedger is an in-memory eco-points ledger with idempotent credits.
type PointsLedger struct {
	mu       sync.Mutex
	balances map[string]int
	applied  map[string]struct{}
}

func NewPointsLedger() *PointsLedger {
	return &PointsLedger{
		balances: make(map[string]int),
		applied:  make(map[string]struct{}),
	}
}

func (l *PointsLedger) Credit(_ context.Context, key, userID string, amount int) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, done := l.applied[key]; done {
		return l.balances[userID], nil
	}
	l.applied[key] = struct{}{}
	l.balances[userID] += amount
	return l.balances[userID], nil
}

func (l *PointsLedger) Balance(_ context.Context, userID string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[userID], nil
}

func (l *PointsLedger) Leaderboard(_ context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	l.mu.Lock()
	entries := make([]domain.LeaderboardEntry, 0, len(l.balances))
	for id, points := range l.balances {
		entries = append(entries, domain.LeaderboardEntry{UserID: id, Points: points})
	}
	l.mu.Unlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Points != entries[j].Points {
			return entries[i].Points > entries[j].Points
		}
		return entries[i].UserID < entries[j].UserID
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}
