package cli

import (
	"ecolearn-challenge-service/internal/infra/postgres"
	"github.com/spf13/cobra"
)

// NewSeedCmd loads the built-in question catalog and seed users into Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed questions and users into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			db, err := openBun(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			ctx := cmd.Context()
			if err := migrateDB(ctx, db, log); err != nil {
				return err
			}
			if err := postgres.SeedUsers(ctx, db, cfg.Seed.Users...); err != nil {
				return err
			}
			n, err := postgres.SeedQuestions(ctx, db, sampleQuestions())
			if err != nil {
				return err
			}
			log.Infow("seed complete", "questions", n, "users", len(cfg.Seed.Users))
			return nil
		},
	}
}
