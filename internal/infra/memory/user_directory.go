package memory

import (
	"context"
	"sync"

	"ecolearn-challenge-service/internal/domain"
)

// UserDirectory is an in-memory user registry with per-user solved sets.
type UserDirectory struct {
	mu     sync.RWMutex
	users  map[string]struct{}
	solved map[string]map[string]struct{}
}

func NewUserDirectory(userIDs ...string) *UserDirectory {
	d := &UserDirectory{
		users:  make(map[string]struct{}, len(userIDs)),
		solved: make(map[string]map[string]struct{}),
	}
	for _, id := range userIDs {
		d.users[id] = struct{}{}
	}
	return d
}

// Add registers a user id.
func (d *UserDirectory) Add(userID string) {
	d.mu.Lock()
	d.users[userID] = struct{}{}
	d.mu.Unlock()
}

func (d *UserDirectory) Exists(_ context.Context, userID string) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.users[userID]
	return ok, nil
}

func (d *UserDirectory) Solved(_ context.Context, userID string) (map[string]struct{}, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make(map[string]struct{}, len(d.solved[userID]))
	for id := range d.solved[userID] {
		out[id] = struct{}{}
	}
	return out, nil
}

func (d *UserDirectory) MarkSolved(_ context.Context, userID, questionID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.users[userID]; !ok {
		return domain.ErrUserNotFound
	}
	set, ok := d.solved[userID]
	if !ok {
		set = make(map[string]struct{})
		d.solved[userID] = set
	}
	set[questionID] = struct{}{}
	return nil
}
