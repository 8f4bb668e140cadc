package app

import (
	"context"

	"ecolearn-challenge-service/internal/domain"
)

// ChallengeRepository persists challenges (in-memory, Redis, Postgres).
type ChallengeRepository interface {
	Create(ctx context.Context, challenge domain.Challenge) error
	Get(ctx context.Context, id string) (domain.Challenge, error)
	// ListPending returns pending challenges addressed to userID.
	ListPending(ctx context.Context, userID string) ([]domain.Challenge, error)
	// Update runs fn on the current state inside a critical section scoped to id and
	// persists the result when fn returns nil. fn may run more than once on optimistic
	// stores and must not have side effects outside the challenge.
	Update(ctx context.Context, id string, fn func(*domain.Challenge) error) (domain.Challenge, error)
}

// UserDirectory resolves participant ids.
type UserDirectory interface {
	Exists(ctx context.Context, userID string) (bool, error)
}

// SolvedStore tracks the questions each user has already solved.
type SolvedStore interface {
	Solved(ctx context.Context, userID string) (map[string]struct{}, error)
	MarkSolved(ctx context.Context, userID, questionID string) error
}

// QuestionRepository loads the question catalog (from cache/backing store).
type QuestionRepository interface {
	// ListQuestions returns every question of the given difficulty; DifficultyAny returns all.
	ListQuestions(ctx context.Context, difficulty domain.Difficulty) ([]domain.Question, error)
}

// PointsLedger credits eco-points.
type PointsLedger interface {
	// Credit adds amount to userID at most once per key and returns the resulting balance.
	Credit(ctx context.Context, key, userID string, amount int) (int, error)
	Balance(ctx context.Context, userID string) (int, error)
	Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
}

// EventBus fans challenge events out to subscribers.
type EventBus interface {
	// Publish never blocks on slow subscribers.
	Publish(ctx context.Context, event domain.ChallengeEvent)
	// Subscribe returns a channel of events for one challenge.
	// The caller must invoke the returned cancel function to avoid leaks.
	Subscribe(ctx context.Context, challengeID string) (<-chan domain.ChallengeEvent, func(), error)
}
