package postgres

import (
	"context"
	"fmt"

	"ecolearn-challenge-service/internal/domain"
	"github.com/uptrace/bun"
)

// SeedQuestions upserts the question catalog.
func SeedQuestions(ctx context.Context, db *bun.DB, questions []domain.Question) (int, error) {
	if len(questions) == 0 {
		return 0, nil
	}
	models := make([]questionModel, 0, len(questions))
	for _, q := range questions {
		options := q.Options
		if options == nil {
			options = []string{}
		}
		models = append(models, questionModel{
			ID:         q.ID,
			Category:   q.Category,
			Difficulty: string(q.Difficulty),
			Question:   q.Prompt,
			Options:    options,
			Answer:     q.Answer,
		})
	}
	res, err := db.NewInsert().
		Model(&models).
		On("CONFLICT (id) DO UPDATE").
		Set("category = EXCLUDED.category").
		Set("difficulty = EXCLUDED.difficulty").
		Set("question = EXCLUDED.question").
		Set("options = EXCLUDED.options").
		Set("answer = EXCLUDED.answer").
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("seed questions: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// SeedUsers registers user ids, ignoring ones already present.
func SeedUsers(ctx context.Context, db *bun.DB, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	models := make([]userModel, 0, len(ids))
	for _, id := range ids {
		models = append(models, userModel{ID: id})
	}
	if _, err := db.NewInsert().Model(&models).On("CONFLICT (id) DO NOTHING").Exec(ctx); err != nil {
		return fmt.Errorf("seed users: %w", err)
	}
	return nil
}
