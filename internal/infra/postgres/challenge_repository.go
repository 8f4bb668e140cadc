package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ecolearn-challenge-service/internal/domain"
	"ecolearn-challenge-service/internal/metrics"
	"github.com/uptrace/bun"
)

// ChallengeRepository persists challenges with bun. Update locks the challenge row
// (SELECT ... FOR UPDATE) for the duration of the transaction.
type ChallengeRepository struct {
	db *bun.DB
}

func NewChallengeRepository(db *bun.DB) *ChallengeRepository {
	return &ChallengeRepository{db: db}
}

func (r *ChallengeRepository) Create(ctx context.Context, challenge domain.Challenge) error {
	defer metrics.ObserveStore("postgres", "challenge_create", time.Now())
	m := toChallengeModel(challenge)
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(&m).Exec(ctx); err != nil {
			return fmt.Errorf("insert challenge: %w", err)
		}
		return insertSubmissions(ctx, tx, m.Submissions)
	})
}

func (r *ChallengeRepository) Get(ctx context.Context, id string) (domain.Challenge, error) {
	defer metrics.ObserveStore("postgres", "challenge_get", time.Now())
	var m challengeModel
	err := r.db.NewSelect().
		Model(&m).
		Relation("Submissions", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("seq ASC")
		}).
		Where("?TableAlias.id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Challenge{}, domain.ErrChallengeNotFound
	}
	if err != nil {
		return domain.Challenge{}, fmt.Errorf("load challenge: %w", err)
	}
	return m.toDomain(), nil
}

func (r *ChallengeRepository) ListPending(ctx context.Context, userID string) ([]domain.Challenge, error) {
	defer metrics.ObserveStore("postgres", "challenge_list_pending", time.Now())
	var models []challengeModel
	err := r.db.NewSelect().
		Model(&models).
		Relation("Submissions", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("seq ASC")
		}).
		Where("?TableAlias.to_user = ?", userID).
		Where("?TableAlias.status = ?", string(domain.StatusPending)).
		OrderExpr("?TableAlias.created_at DESC, ?TableAlias.id DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending challenges: %w", err)
	}
	out := make([]domain.Challenge, 0, len(models))
	for _, m := range models {
		out = append(out, m.toDomain())
	}
	return out, nil
}

func (r *ChallengeRepository) Update(ctx context.Context, id string, fn func(*domain.Challenge) error) (domain.Challenge, error) {
	defer metrics.ObserveStore("postgres", "challenge_update", time.Now())
	var committed domain.Challenge
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var m challengeModel
		err := tx.NewSelect().
			Model(&m).
			Where("?TableAlias.id = ?", id).
			For("UPDATE").
			Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrChallengeNotFound
		}
		if err != nil {
			return fmt.Errorf("lock challenge: %w", err)
		}
		if err := tx.NewSelect().
			Model(&m.Submissions).
			Where("challenge_id = ?", id).
			Order("seq ASC").
			Scan(ctx); err != nil {
			return fmt.Errorf("load submissions: %w", err)
		}

		current := m.toDomain()
		if err := fn(&current); err != nil {
			return err
		}

		next := toChallengeModel(current)
		if _, err := tx.NewUpdate().Model(&next).WherePK().Exec(ctx); err != nil {
			return fmt.Errorf("update challenge: %w", err)
		}
		if _, err := tx.NewDelete().
			Model((*submissionModel)(nil)).
			Where("challenge_id = ?", id).
			Exec(ctx); err != nil {
			return fmt.Errorf("clear submissions: %w", err)
		}
		if err := insertSubmissions(ctx, tx, next.Submissions); err != nil {
			return err
		}
		committed = current
		return nil
	})
	if err != nil {
		return domain.Challenge{}, err
	}
	return committed, nil
}

func insertSubmissions(ctx context.Context, tx bun.Tx, subs []submissionModel) error {
	if len(subs) == 0 {
		return nil
	}
	if _, err := tx.NewInsert().Model(&subs).Exec(ctx); err != nil {
		return fmt.Errorf("insert submissions: %w", err)
	}
	return nil
}
