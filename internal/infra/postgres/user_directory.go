package postgres

import (
	"context"
	"fmt"

	"ecolearn-challenge-service/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// UserDirectory answers user existence and solved-question lookups from Postgres.
type UserDirectory struct {
	pool *pgxpool.Pool
}

func NewUserDirectory(pool *pgxpool.Pool) *UserDirectory {
	return &UserDirectory{pool: pool}
}

func (d *UserDirectory) Exists(ctx context.Context, userID string) (bool, error) {
	var ok bool
	err := d.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("lookup user: %w", err)
	}
	return ok, nil
}

func (d *UserDirectory) Solved(ctx context.Context, userID string) (map[string]struct{}, error) {
	rows, err := d.pool.Query(ctx, `SELECT question_id FROM solved_questions WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("load solved questions: %w", err)
	}
	defer rows.Close()

	out := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan solved question: %w", err)
		}
		out[id] = struct{}{}
	}
	return out, rows.Err()
}

func (d *UserDirectory) MarkSolved(ctx context.Context, userID, questionID string) error {
	ok, err := d.Exists(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrUserNotFound
	}
	_, err = d.pool.Exec(ctx, `
		INSERT INTO solved_questions (user_id, question_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`, userID, questionID)
	if err != nil {
		return fmt.Errorf("mark solved: %w", err)
	}
	return nil
}
