package memory

import (
	"context"
	"fmt"
	"sync"

	"ecolearn-challenge-service/internal/domain"
)

// ChallengeStore is an in-memory implementation of app.ChallengeRepository.
// Update serializes writers per challenge id; distinct ids never contend.
type ChallengeStore struct {
	mu         sync.RWMutex
	challenges map[string]domain.Challenge
	locks      map[string]*sync.Mutex
}

func NewChallengeStore() *ChallengeStore {
	return &ChallengeStore{
		challenges: make(map[string]domain.Challenge),
		locks:      make(map[string]*sync.Mutex),
	}
}

func (s *ChallengeStore) Create(_ context.Context, challenge domain.Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.challenges[challenge.ID]; exists {
		return fmt.Errorf("challenge %s already exists", challenge.ID)
	}
	s.challenges[challenge.ID] = challenge.Clone()
	s.locks[challenge.ID] = &sync.Mutex{}
	return nil
}

func (s *ChallengeStore) Get(_ context.Context, id string) (domain.Challenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	challenge, ok := s.challenges[id]
	if !ok {
		return domain.Challenge{}, domain.ErrChallengeNotFound
	}
	return challenge.Clone(), nil
}

func (s *ChallengeStore) ListPending(_ context.Context, userID string) ([]domain.Challenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Challenge, 0)
	for _, c := range s.challenges {
		if c.ToUser == userID && c.Status == domain.StatusPending {
			out = append(out, c.Clone())
		}
	}
	return out, nil
}

func (s *ChallengeStore) Update(_ context.Context, id string, fn func(*domain.Challenge) error) (domain.Challenge, error) {
	s.mu.RLock()
	lock, ok := s.locks[id]
	s.mu.RUnlock()
	if !ok {
		return domain.Challenge{}, domain.ErrChallengeNotFound
	}

	lock.Lock()
	defer lock.Unlock()

	s.mu.RLock()
	working := s.challenges[id].Clone()
	s.mu.RUnlock()

	if err := fn(&working); err != nil {
		return domain.Challenge{}, err
	}

	s.mu.Lock()
	s.challenges[id] = working.Clone()
	s.mu.Unlock()
	return working, nil
}
