package app

import (
	"context"
	"fmt"

	"ecolearn-challenge-service/internal/domain"
)

// DefaultLeaderboardSize is used when callers do not ask for a specific limit.
const DefaultLeaderboardSize = 20

// PointsService exposes read access to the eco-points ledger.
type PointsService struct {
	ledger PointsLedger
}

func NewPointsService(ledger PointsLedger) *PointsService {
	return &PointsService{ledger: ledger}
}

func (s *PointsService) Balance(ctx context.Context, userID string) (int, error) {
	balance, err := s.ledger.Balance(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("load balance: %w", err)
	}
	return balance, nil
}

// Leaderboard returns the top users by eco-points; limit <= 0 means DefaultLeaderboardSize.
func (s *PointsService) Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardSize
	}
	entries, err := s.ledger.Leaderboard(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("load leaderboard: %w", err)
	}
	return entries, nil
}
