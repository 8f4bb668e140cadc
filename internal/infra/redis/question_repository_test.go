package redis

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"ecolearn-challenge-service/internal/domain"
	"ecolearn-challenge-service/internal/infra/memory"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestQuestionRepositoryCachesInRedis(t *testing.T) {
	mr, client := startRedis(t)

	loader := &countingLoader{QuestionLoader: memory.NewStaticQuestionLoader(sampleQuestions())}
	repo := NewQuestionRepository(client, loader, time.Minute, nil)

	got, err := repo.ListQuestions(context.Background(), domain.DifficultyEasy)
	if err != nil {
		t.Fatalf("list questions: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 easy questions, got %d", len(got))
	}
	if loader.calls.Load() != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls.Load())
	}
	if !mr.Exists("questions:easy") {
		t.Fatalf("expected pool cached under questions:easy")
	}

	// Second call should hit cache, loader not incremented.
	cached, err := repo.ListQuestions(context.Background(), domain.DifficultyEasy)
	if err != nil {
		t.Fatalf("list questions 2: %v", err)
	}
	if loader.calls.Load() != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls.Load())
	}
	if cached[0].ID != "q1" || cached[1].ID != "q3" || cached[0].Prompt != got[0].Prompt {
		t.Fatalf("unexpected cached pool %+v", cached)
	}
}

func TestQuestionRepositoryLogsFailedCacheFill(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	mr.Close()

	core, logs := observer.New(zap.WarnLevel)
	loader := &countingLoader{QuestionLoader: memory.NewStaticQuestionLoader(sampleQuestions())}
	repo := NewQuestionRepository(client, loader, time.Minute, zap.New(core).Sugar())

	got, err := repo.ListQuestions(context.Background(), domain.DifficultyMedium)
	if err != nil {
		t.Fatalf("expected loaded pool despite redis outage, got %v", err)
	}
	if len(got) != 1 || got[0].ID != "q2" {
		t.Fatalf("unexpected pool %+v", got)
	}
	entries := logs.FilterMessage("cache question pool").All()
	if len(entries) != 1 {
		t.Fatalf("expected one cache warning, got %d", len(entries))
	}
	if key := entries[0].ContextMap()["key"]; key != "questions:medium" {
		t.Fatalf("expected lower-case pool key, got %v", key)
	}
}

func TestQuestionRepositoryExpiresAndInvalidates(t *testing.T) {
	mr, client := startRedis(t)

	loader := &countingLoader{QuestionLoader: memory.NewStaticQuestionLoader(sampleQuestions())}
	repo := NewQuestionRepository(client, loader, time.Minute, nil)
	ctx := context.Background()

	_, _ = repo.ListQuestions(ctx, domain.DifficultyAny)
	mr.FastForward(2 * time.Minute)
	_, _ = repo.ListQuestions(ctx, domain.DifficultyAny)
	if loader.calls.Load() != 2 {
		t.Fatalf("expected reload after ttl, got %d loads", loader.calls.Load())
	}

	if err := repo.Invalidate(ctx); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	_, _ = repo.ListQuestions(ctx, domain.DifficultyAny)
	if loader.calls.Load() != 3 {
		t.Fatalf("expected reload after invalidate, got %d loads", loader.calls.Load())
	}
}

func TestQuestionRepositoryCachesEmptyPool(t *testing.T) {
	_, client := startRedis(t)

	loader := &countingLoader{QuestionLoader: memory.NewStaticQuestionLoader(sampleQuestions())}
	repo := NewQuestionRepository(client, loader, time.Minute, nil)

	for i := 0; i < 2; i++ {
		got, err := repo.ListQuestions(context.Background(), domain.DifficultyHard)
		if err != nil {
			t.Fatalf("list hard: %v", err)
		}
		if len(got) != 0 {
			t.Fatalf("expected no hard questions, got %d", len(got))
		}
	}
	if loader.calls.Load() != 1 {
		t.Fatalf("expected empty pool cached, loader calls=%d", loader.calls.Load())
	}
}

type countingLoader struct {
	memory.QuestionLoader
	calls atomic.Int32
}

func (l *countingLoader) LoadQuestions(ctx context.Context, difficulty domain.Difficulty) ([]domain.Question, error) {
	l.calls.Add(1)
	return l.QuestionLoader.LoadQuestions(ctx, difficulty)
}

func sampleQuestions() []domain.Question {
	return []domain.Question{
		{ID: "q1", Category: "Climate", Difficulty: domain.DifficultyEasy, Prompt: "Which gas traps most heat?", Options: []string{"CO2", "O2"}, Answer: "CO2"},
		{ID: "q2", Category: "Recycling", Difficulty: domain.DifficultyMedium, Prompt: "Is glass recyclable?", Options: []string{"yes", "no"}, Answer: "yes"},
		{ID: "q3", Category: "Energy", Difficulty: domain.DifficultyEasy, Prompt: "Is solar renewable?", Options: []string{"yes", "no"}, Answer: "yes"},
	}
}
