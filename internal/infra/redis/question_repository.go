package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"ecolearn-challenge-service/internal/domain"
	"ecolearn-challenge-service/internal/metrics"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// QuestionLoader fetches the question catalog from a backing store (e.g., Postgres).
type QuestionLoader interface {
	LoadQuestions(ctx context.Context, difficulty domain.Difficulty) ([]domain.Question, error)
}

// QuestionRepository caches question pools in Redis (hash per difficulty) and falls back to a loader on cache miss.
// Pools are stored as: HSET questions:{difficulty} {questionID} {question JSON}
// with the difficulty lower-cased (questions:easy) and questions:all for the whole catalog.
// An empty pool is marked with a sentinel field so it is cached too.
type QuestionRepository struct {
	client *redis.Client
	loader QuestionLoader
	ttl    time.Duration
	sf     singleflight.Group
	log    *zap.SugaredLogger

	rndMu sync.Mutex
	rnd   *rand.Rand
}

const emptyPoolField = "__empty__"

func NewQuestionRepository(client *redis.Client, loader QuestionLoader, ttl time.Duration, log *zap.SugaredLogger) *QuestionRepository {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &QuestionRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		log:    log,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuestionRepository) ListQuestions(ctx context.Context, difficulty domain.Difficulty) ([]domain.Question, error) {
	key := r.poolKey(difficulty)

	if pool, ok := r.fromCache(ctx, key); ok {
		metrics.QuestionCacheHits.Inc()
		return pool, nil
	}

	result, err, _ := r.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if pool, ok := r.fromCache(ctx, key); ok {
			return pool, nil
		}
		metrics.QuestionCacheMisses.Inc()

		pool, err := r.loader.LoadQuestions(ctx, difficulty)
		if err != nil {
			return nil, err
		}

		fields := make(map[string]interface{}, len(pool)+1)
		for _, q := range pool {
			raw, err := json.Marshal(q)
			if err != nil {
				return nil, fmt.Errorf("marshal question %s: %w", q.ID, err)
			}
			fields[q.ID] = raw
		}
		if len(fields) == 0 {
			fields[emptyPoolField] = "1"
		}

		ttl := r.ttlWithJitter()
		pipe := r.client.TxPipeline()
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, fields)
		if ttl > 0 {
			pipe.Expire(ctx, key, ttl)
		}
		// The loaded pool is still served when the cache write fails.
		if _, err := pipe.Exec(ctx); err != nil {
			r.log.Warnw("cache question pool", "key", key, "error", err)
		}

		return pool, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]domain.Question(nil), result.([]domain.Question)...), nil
}

// Invalidate drops every cached pool.
func (r *QuestionRepository) Invalidate(ctx context.Context) error {
	keys := []string{r.poolKey(domain.DifficultyAny)}
	for _, d := range domain.Difficulties {
		keys = append(keys, r.poolKey(d))
	}
	return r.client.Del(ctx, keys...).Err()
}

func (r *QuestionRepository) fromCache(ctx context.Context, key string) ([]domain.Question, bool) {
	fields, err := r.client.HGetAll(ctx, key).Result()
	if err != nil || len(fields) == 0 {
		return nil, false
	}
	pool := make([]domain.Question, 0, len(fields))
	for id, raw := range fields {
		if id == emptyPoolField {
			continue
		}
		var q domain.Question
		if err := json.Unmarshal([]byte(raw), &q); err != nil {
			return nil, false
		}
		pool = append(pool, q)
	}
	// Hash order is random; keep a stable order for callers.
	sort.Slice(pool, func(i, j int) bool { return pool[i].ID < pool[j].ID })
	return pool, true
}

func (r *QuestionRepository) poolKey(difficulty domain.Difficulty) string {
	if difficulty == domain.DifficultyAny {
		return "questions:all"
	}
	return "questions:" + strings.ToLower(string(difficulty))
}

func (r *QuestionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
