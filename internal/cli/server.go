package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ecolearn-challenge-service/internal/app"
	"ecolearn-challenge-service/internal/config"
	"ecolearn-challenge-service/internal/infra/memory"
	"ecolearn-challenge-service/internal/infra/postgres"
	infraredis "ecolearn-challenge-service/internal/infra/redis"
	"ecolearn-challenge-service/internal/logging"
	transport "ecolearn-challenge-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the challenge server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func loadConfig(path string) (config.Config, *zap.SugaredLogger, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, nil, err
	}
	log, err := logging.New(cfg.Log.Level)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, log, nil
}

// backends groups the adapters chosen for one process.
type backends struct {
	challenges app.ChallengeRepository
	users      app.UserDirectory
	solved     app.SolvedStore
	questions  app.QuestionRepository
	points     app.PointsLedger
	events     app.EventBus
	closers    []func()
}

func (b *backends) close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

// buildBackends prefers Postgres for durable state, Redis for shared caches and events,
// and falls back to in-memory adapters for whatever is not configured.
func buildBackends(ctx context.Context, cfg config.Config, log *zap.SugaredLogger) (*backends, error) {
	b := &backends{}
	questionTTL := config.TTLDuration(cfg.Questions.TTL, 10*time.Minute)

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			_ = redisClient.Close()
			return nil, err
		}
		b.closers = append(b.closers, func() { _ = redisClient.Close() })
	}

	var loader memory.QuestionLoader = memory.NewStaticQuestionLoader(sampleQuestions())

	if cfg.Postgres.URL != "" {
		db, err := openBun(cfg)
		if err != nil {
			b.close()
			return nil, err
		}
		b.closers = append(b.closers, func() { _ = db.Close() })
		if err := migrateDB(ctx, db, log); err != nil {
			b.close()
			return nil, err
		}
		if err := postgres.SeedUsers(ctx, db, cfg.Seed.Users...); err != nil {
			b.close()
			return nil, err
		}

		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			b.close()
			return nil, err
		}
		b.closers = append(b.closers, pool.Close)

		users := postgres.NewUserDirectory(pool)
		loader = postgres.NewQuestionLoader(pool)
		b.challenges = postgres.NewChallengeRepository(db)
		b.users = users
		b.solved = users
		b.points = postgres.NewPointsLedger(pool)
		log.Infow("using postgres storage")
	} else if redisClient != nil {
		users := infraredis.NewUserDirectory(redisClient)
		if err := users.Add(ctx, cfg.Seed.Users...); err != nil {
			b.close()
			return nil, err
		}
		b.challenges = infraredis.NewChallengeStore(redisClient)
		b.users = users
		b.solved = users
		b.points = infraredis.NewPointsLedger(redisClient)
		log.Infow("using redis storage")
	} else {
		users := memory.NewUserDirectory(cfg.Seed.Users...)
		b.challenges = memory.NewChallengeStore()
		b.users = users
		b.solved = users
		b.points = memory.NewPointsLedger()
		log.Infow("using in-memory storage")
	}

	if redisClient != nil {
		b.questions = infraredis.NewQuestionRepository(redisClient, loader, questionTTL, log.Named("questions"))
		b.events = infraredis.NewEventBus(redisClient, log)
	} else {
		b.questions = memory.NewQuestionRepository(loader, questionTTL)
		b.events = memory.NewEventBus()
	}
	return b, nil
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, log, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if cfg.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret (or JWT_SECRET) must be set")
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	b, err := buildBackends(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer b.close()

	challengeService := app.NewChallengeService(b.challenges, b.users, b.points, b.events,
		app.WithReward(cfg.Rewards.ChallengeWin),
		app.WithLogger(log.Named("challenges")),
	)
	questionService := app.NewQuestionService(b.questions, b.solved, b.users, b.challenges)
	pointsService := app.NewPointsService(b.points)

	router := transport.NewRouter(transport.RouterConfig{
		Handler:     transport.NewHandler(challengeService, questionService, pointsService, log.Named("http")),
		WS:          transport.NewWSHandler(challengeService, b.events, log.Named("ws")),
		Auth:        transport.NewAuthenticator(cfg.Auth.JWTSecret),
		Log:         log.Named("http"),
		CORSOrigins: cfg.Server.CORSOrigins,
	})

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  config.TTLDuration(cfg.Server.ReadTimeout, 15*time.Second),
		WriteTimeout: config.TTLDuration(cfg.Server.WriteTimeout, 15*time.Second),
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Infow("starting challenge service", "port", finalPort, "reward", challengeService.Reward())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Infow("shutting down server")
	case <-ctx.Done():
		log.Infow("context canceled, shutting down server")
	case err := <-serveErr:
		log.Errorw("server failed", "error", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
