package app

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"ecolearn-challenge-service/internal/domain"
)

// QuestionService is the question pool: random selection that skips what a user already solved.
type QuestionService struct {
	questions  QuestionRepository
	solved     SolvedStore
	users      UserDirectory
	challenges ChallengeRepository

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewQuestionService(questions QuestionRepository, solved SolvedStore, users UserDirectory, challenges ChallengeRepository) *QuestionService {
	return NewQuestionServiceWithRand(questions, solved, users, challenges, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewQuestionServiceWithRand is test-only for deterministic sampling.
func NewQuestionServiceWithRand(questions QuestionRepository, solved SolvedStore, users UserDirectory, challenges ChallengeRepository, rnd *rand.Rand) *QuestionService {
	return &QuestionService{
		questions:  questions,
		solved:     solved,
		users:      users,
		challenges: challenges,
		rnd:        rnd,
	}
}

// GetQuestions samples count unsolved questions for userID without replacement.
// It fails with domain.ErrInsufficientQuestions rather than returning a short list.
func (s *QuestionService) GetQuestions(ctx context.Context, userID string, difficulty domain.Difficulty, count int) ([]domain.Question, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: count must be positive", domain.ErrInvalidArgument)
	}
	if count == 0 {
		count = domain.DefaultNumQuestions
	}

	eligible, err := s.unsolved(ctx, userID, difficulty)
	if err != nil {
		return nil, err
	}
	if len(eligible) < count {
		return nil, fmt.Errorf("%w: want %d, %d eligible", domain.ErrInsufficientQuestions, count, len(eligible))
	}

	// Partial Fisher-Yates on our own copy of the pool.
	s.mu.Lock()
	for i := 0; i < count; i++ {
		j := i + s.rnd.Intn(len(eligible)-i)
		eligible[i], eligible[j] = eligible[j], eligible[i]
	}
	s.mu.Unlock()
	return eligible[:count], nil
}

// ChallengeQuestions draws the question set for one participant of a challenge.
func (s *QuestionService) ChallengeQuestions(ctx context.Context, challengeID, userID string, difficulty domain.Difficulty) ([]domain.Question, error) {
	challenge, err := s.challenges.Get(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	if !challenge.IsParticipant(userID) {
		return nil, domain.ErrNotAParticipant
	}
	return s.GetQuestions(ctx, userID, difficulty, challenge.NumQuestions)
}

// UnsolvedByDifficulty groups every unsolved question of userID by difficulty band.
func (s *QuestionService) UnsolvedByDifficulty(ctx context.Context, userID string) (map[domain.Difficulty][]domain.Question, error) {
	eligible, err := s.unsolved(ctx, userID, domain.DifficultyAny)
	if err != nil {
		return nil, err
	}
	grouped := make(map[domain.Difficulty][]domain.Question, len(domain.Difficulties))
	for _, d := range domain.Difficulties {
		grouped[d] = []domain.Question{}
	}
	for _, q := range eligible {
		d := domain.NormalizeDifficulty(string(q.Difficulty))
		grouped[d] = append(grouped[d], q)
	}
	return grouped, nil
}

// MarkSolved adds questionID to userID's solved set. Repeated calls are no-ops.
func (s *QuestionService) MarkSolved(ctx context.Context, userID, questionID string) error {
	if questionID == "" {
		return fmt.Errorf("%w: questionId is required", domain.ErrInvalidArgument)
	}
	if err := s.requireUser(ctx, userID); err != nil {
		return err
	}
	all, err := s.questions.ListQuestions(ctx, domain.DifficultyAny)
	if err != nil {
		return fmt.Errorf("load questions: %w", err)
	}
	found := false
	for _, q := range all {
		if q.ID == questionID {
			found = true
			break
		}
	}
	if !found {
		return domain.ErrQuestionNotFound
	}
	if err := s.solved.MarkSolved(ctx, userID, questionID); err != nil {
		return fmt.Errorf("mark solved: %w", err)
	}
	return nil
}

func (s *QuestionService) unsolved(ctx context.Context, userID string, difficulty domain.Difficulty) ([]domain.Question, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	solved, err := s.solved.Solved(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load solved set: %w", err)
	}
	pool, err := s.questions.ListQuestions(ctx, difficulty)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	eligible := make([]domain.Question, 0, len(pool))
	for _, q := range pool {
		if _, done := solved[q.ID]; done {
			continue
		}
		eligible = append(eligible, q)
	}
	return eligible, nil
}

func (s *QuestionService) requireUser(ctx context.Context, userID string) error {
	exists, err := s.users.Exists(ctx, userID)
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}
	if !exists {
		return domain.ErrUserNotFound
	}
	return nil
}
