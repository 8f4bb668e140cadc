package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"ecolearn-challenge-service/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// QuestionLoader loads the question catalog from Postgres.
type QuestionLoader struct {
	pool *pgxpool.Pool
}

func NewQuestionLoader(pool *pgxpool.Pool) *QuestionLoader {
	return &QuestionLoader{pool: pool}
}

func (l *QuestionLoader) LoadQuestions(ctx context.Context, difficulty domain.Difficulty) ([]domain.Question, error) {
	rows, err := l.pool.Query(ctx, `
		SELECT id, category, difficulty, question, options, answer
		FROM questions
		WHERE $1::text = '' OR difficulty = $1::text
		ORDER BY id`, string(difficulty))
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	var out []domain.Question
	for rows.Next() {
		var (
			q          domain.Question
			difficulty string
			options    []byte
		)
		if err := rows.Scan(&q.ID, &q.Category, &difficulty, &q.Prompt, &options, &q.Answer); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		if err := json.Unmarshal(options, &q.Options); err != nil {
			return nil, fmt.Errorf("unmarshal options for %s: %w", q.ID, err)
		}
		q.Difficulty = domain.NormalizeDifficulty(difficulty)
		out = append(out, q)
	}
	return out, rows.Err()
}
