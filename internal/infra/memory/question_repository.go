package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"ecolearn-challenge-service/internal/domain"
	"ecolearn-challenge-service/internal/metrics"
	"golang.org/x/sync/singleflight"
)

// QuestionLoader fetches the question catalog from a backing store (e.g., Postgres).
type QuestionLoader interface {
	LoadQuestions(ctx context.Context, difficulty domain.Difficulty) ([]domain.Question, error)
}

// QuestionRepository caches question pools per difficulty with TTL to avoid repeated DB hits.
type QuestionRepository struct {
	loader QuestionLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand

	mu    sync.RWMutex
	cache map[domain.Difficulty]cachedPool
}

type cachedPool struct {
	questions []domain.Question
	expiresAt time.Time
}

func NewQuestionRepository(loader QuestionLoader, ttl time.Duration) *QuestionRepository {
	return &QuestionRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[domain.Difficulty]cachedPool),
	}
}

// ListQuestions returns a copy of the cached pool so callers may reorder it freely.
func (r *QuestionRepository) ListQuestions(ctx context.Context, difficulty domain.Difficulty) ([]domain.Question, error) {
	if pool, ok := r.lookup(difficulty); ok {
		metrics.QuestionCacheHits.Inc()
		return clonePool(pool), nil
	}

	result, err, _ := r.sf.Do(string(difficulty), func() (interface{}, error) {
		if pool, ok := r.lookup(difficulty); ok {
			return pool, nil
		}
		metrics.QuestionCacheMisses.Inc()

		pool, err := r.loader.LoadQuestions(ctx, difficulty)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.cache[difficulty] = cachedPool{
			questions: pool,
			expiresAt: r.clock().Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return pool, nil
	})
	if err != nil {
		return nil, err
	}
	return clonePool(result.([]domain.Question)), nil
}

// Invalidate drops every cached pool.
func (r *QuestionRepository) Invalidate() {
	r.mu.Lock()
	r.cache = make(map[domain.Difficulty]cachedPool)
	r.mu.Unlock()
}

func (r *QuestionRepository) lookup(difficulty domain.Difficulty) ([]domain.Question, bool) {
	now := r.clock()
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.cache[difficulty]
	if !ok || !entry.expiresAt.After(now) {
		return nil, false
	}
	return entry.questions, true
}

func (r *QuestionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

func clonePool(pool []domain.Question) []domain.Question {
	return append([]domain.Question(nil), pool...)
}

// StaticQuestionLoader is a simple loader backed by an in-memory slice (useful for tests/demos).
type StaticQuestionLoader struct {
	questions []domain.Question
}

func NewStaticQuestionLoader(questions []domain.Question) *StaticQuestionLoader {
	return &StaticQuestionLoader{questions: questions}
}

func (l *StaticQuestionLoader) LoadQuestions(_ context.Context, difficulty domain.Difficulty) ([]domain.Question, error) {
	out := make([]domain.Question, 0, len(l.questions))
	for _, q := range l.questions {
		q.Difficulty = domain.NormalizeDifficulty(string(q.Difficulty))
		if difficulty != domain.DifficultyAny && q.Difficulty != difficulty {
			continue
		}
		out = append(out, q)
	}
	return out, nil
}
