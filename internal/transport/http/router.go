package http

import (
	"net/http"
	"strconv"
	"time"

	"ecolearn-challenge-service/internal/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// RouterConfig carries the pieces NewRouter mounts.
type RouterConfig struct {
	Handler     *Handler
	WS          *WSHandler
	Auth        *Authenticator
	Log         *zap.SugaredLogger
	CORSOrigins []string
	Timeout     time.Duration
}

func NewRouter(cfg RouterConfig) http.Handler {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	// Websockets outlive the request timeout.
	r.With(cfg.Auth.Middleware).Get("/ws/challenges/{id}", cfg.WS.ServeWS)

	h := cfg.Handler
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(timeout))
		r.Use(cfg.Auth.Middleware)

		r.Route("/challenges", func(r chi.Router) {
			r.Post("/invite", h.CreateInvite)
			r.Get("/invites", h.ListInvites)
			r.Post("/accept", h.AcceptInvite)
			r.Post("/decline", h.DeclineInvite)
			r.Post("/start", h.StartChallenge)
			r.Post("/submit", h.Submit)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetChallenge)
				r.Get("/questions", h.ChallengeQuestions)
				r.Post("/reward", h.SettleReward)
			})
		})

		r.Route("/questions", func(r chi.Router) {
			r.Get("/random", h.RandomQuestions)
			r.Get("/unsolved", h.UnsolvedQuestions)
			r.Post("/solved", h.MarkSolved)
		})

		r.Route("/points", func(r chi.Router) {
			r.Get("/me", h.MyPoints)
			r.Get("/leaderboard", h.Leaderboard)
		})
	})

	return r
}

// requestLogger logs each request and records the HTTP metrics under the matched route pattern.
func requestLogger(log *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				route := chi.RouteContext(r.Context()).RoutePattern()
				if route == "" {
					route = "unmatched"
				}
				elapsed := time.Since(start)
				metrics.RequestCounter.WithLabelValues(strconv.Itoa(ww.Status()), r.Method, route).Inc()
				metrics.RequestDuration.WithLabelValues(r.Method, route).Observe(elapsed.Seconds())
				log.Infow("http request",
					"method", r.Method,
					"path", r.URL.Path,
					"route", route,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration_ms", elapsed.Milliseconds(),
					"request_id", middleware.GetReqID(r.Context()),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
