package migrations

import (
	"context"
	_ "embed"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

//go:embed 0001_create_challenge_schema.sql
var createChallengeSchemaSQL string

var Migrations = migrate.NewMigrations()

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, createChallengeSchemaSQL)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, `
				DROP TABLE IF EXISTS point_credits;
				DROP TABLE IF EXISTS challenge_submissions;
				DROP TABLE IF EXISTS challenges;
				DROP TABLE IF EXISTS solved_questions;
				DROP TABLE IF EXISTS questions;
				DROP TABLE IF EXISTS users;`)
			return err
		},
	)
}
