package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ecolearn-challenge-service/internal/domain"
	"ecolearn-challenge-service/internal/metrics"
	"github.com/redis/go-redis/v9"
)

const maxUpdateAttempts = 32

// ErrContention is returned when an update keeps losing the optimistic race.
var ErrContention = errors.New("challenge update contention")

// ChallengeStore keeps challenges as JSON documents in Redis.
//   - challenge:{id}              challenge JSON
//   - challenge:pending:{userID}   sorted set of pending invite ids scored by creation time
//
// Update is a compare-and-set: WATCH the document, apply fn, and commit in MULTI/EXEC,
// retrying when another writer touched the key in between.
type ChallengeStore struct {
	client *redis.Client
}

func NewChallengeStore(client *redis.Client) *ChallengeStore {
	return &ChallengeStore{client: client}
}

func (s *ChallengeStore) Create(ctx context.Context, challenge domain.Challenge) error {
	defer metrics.ObserveStore("redis", "challenge_create", time.Now())
	raw, err := json.Marshal(challenge)
	if err != nil {
		return fmt.Errorf("marshal challenge: %w", err)
	}
	ok, err := s.client.SetNX(ctx, s.key(challenge.ID), raw, 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("challenge %s already exists", challenge.ID)
	}
	if challenge.Status == domain.StatusPending {
		return s.client.ZAdd(ctx, s.pendingKey(challenge.ToUser), redis.Z{
			Score:  float64(challenge.CreatedAt.UnixNano()),
			Member: challenge.ID,
		}).Err()
	}
	return nil
}

func (s *ChallengeStore) Get(ctx context.Context, id string) (domain.Challenge, error) {
	defer metrics.ObserveStore("redis", "challenge_get", time.Now())
	return s.load(ctx, s.client, id)
}

func (s *ChallengeStore) ListPending(ctx context.Context, userID string) ([]domain.Challenge, error) {
	defer metrics.ObserveStore("redis", "challenge_list_pending", time.Now())
	ids, err := s.client.ZRevRange(ctx, s.pendingKey(userID), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]domain.Challenge, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.key(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var c domain.Challenge
		if err := json.Unmarshal([]byte(raw), &c); err != nil {
			return nil, fmt.Errorf("unmarshal challenge: %w", err)
		}
		if c.Status == domain.StatusPending {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *ChallengeStore) Update(ctx context.Context, id string, fn func(*domain.Challenge) error) (domain.Challenge, error) {
	defer metrics.ObserveStore("redis", "challenge_update", time.Now())
	key := s.key(id)
	var committed domain.Challenge

	txf := func(tx *redis.Tx) error {
		current, err := s.load(ctx, tx, id)
		if err != nil {
			return err
		}
		wasPending := current.Status == domain.StatusPending
		if err := fn(&current); err != nil {
			return err
		}
		raw, err := json.Marshal(current)
		if err != nil {
			return fmt.Errorf("marshal challenge: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, raw, 0)
			if wasPending && current.Status != domain.StatusPending {
				pipe.ZRem(ctx, s.pendingKey(current.ToUser), id)
			}
			return nil
		})
		if err != nil {
			return err
		}
		committed = current
		return nil
	}

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return committed, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return domain.Challenge{}, err
	}
	return domain.Challenge{}, ErrContention
}

func (s *ChallengeStore) load(ctx context.Context, cmd getter, id string) (domain.Challenge, error) {
	raw, err := cmd.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Challenge{}, domain.ErrChallengeNotFound
	}
	if err != nil {
		return domain.Challenge{}, fmt.Errorf("load challenge: %w", err)
	}
	var c domain.Challenge
	if err := json.Unmarshal(raw, &c); err != nil {
		return domain.Challenge{}, fmt.Errorf("unmarshal challenge: %w", err)
	}
	return c, nil
}

// getter is satisfied by both *redis.Client and *redis.Tx.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (s *ChallengeStore) key(id string) string {
	return "challenge:" + id
}

func (s *ChallengeStore) pendingKey(userID string) string {
	return "challenge:pending:" + userID
}
