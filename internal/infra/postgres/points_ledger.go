package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ecolearn-challenge-service/internal/domain"
	"ecolearn-challenge-service/internal/metrics"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// PointsLedger keeps eco-point balances on users.eco_points. Every credit is recorded in
// point_credits under a unique key, so replaying a credit is a no-op.
type PointsLedger struct {
	pool *pgxpool.Pool
}

func NewPointsLedger(pool *pgxpool.Pool) *PointsLedger {
	return &PointsLedger{pool: pool}
}

func (l *PointsLedger) Credit(ctx context.Context, key, userID string, amount int) (int, error) {
	defer metrics.ObserveStore("postgres", "points_credit", time.Now())
	var balance int
	err := l.pool.BeginFunc(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `SELECT eco_points FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&balance)
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrUserNotFound
		}
		if err != nil {
			return fmt.Errorf("lock user: %w", err)
		}

		tag, err := tx.Exec(ctx, `
			INSERT INTO point_credits (credit_key, user_id, amount)
			VALUES ($1, $2, $3)
			ON CONFLICT (credit_key) DO NOTHING`, key, userID, amount)
		if err != nil {
			return fmt.Errorf("record credit: %w", err)
		}

		if tag.RowsAffected() == 0 {
			return nil
		}
		return tx.QueryRow(ctx, `
			UPDATE users SET eco_points = eco_points + $2
			WHERE id = $1
			RETURNING eco_points`, userID, amount).Scan(&balance)
	})
	if err != nil {
		return 0, err
	}
	return balance, nil
}

func (l *PointsLedger) Balance(ctx context.Context, userID string) (int, error) {
	var balance int
	err := l.pool.QueryRow(ctx, `SELECT eco_points FROM users WHERE id = $1`, userID).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("load balance: %w", err)
	}
	return balance, nil
}

func (l *PointsLedger) Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	defer metrics.ObserveStore("postgres", "points_leaderboard", time.Now())
	// LIMIT NULL means no limit.
	var limitArg interface{}
	if limit > 0 {
		limitArg = limit
	}
	rows, err := l.pool.Query(ctx, `
		SELECT id, eco_points FROM users
		ORDER BY eco_points DESC, id ASC
		LIMIT $1`, limitArg)
	if err != nil {
		return nil, fmt.Errorf("load leaderboard: %w", err)
	}
	defer rows.Close()

	var out []domain.LeaderboardEntry
	for rows.Next() {
		var e domain.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Points); err != nil {
			return nil, fmt.Errorf("scan leaderboard: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
