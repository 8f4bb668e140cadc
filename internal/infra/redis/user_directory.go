package redis

import (
	"context"

	"ecolearn-challenge-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// UserDirectory keeps registered user ids and their solved questions in Redis sets.
//   - users                 set of user ids
//   - user:{id}:solved      set of solved question ids
type UserDirectory struct {
	client *redis.Client
}

func NewUserDirectory(client *redis.Client) *UserDirectory {
	return &UserDirectory{client: client}
}

// Add registers user ids.
func (d *UserDirectory) Add(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	members := make([]interface{}, len(ids))
	for i, id := range ids {
		members[i] = id
	}
	return d.client.SAdd(ctx, usersKey, members...).Err()
}

func (d *UserDirectory) Exists(ctx context.Context, userID string) (bool, error) {
	return d.client.SIsMember(ctx, usersKey, userID).Result()
}

func (d *UserDirectory) Solved(ctx context.Context, userID string) (map[string]struct{}, error) {
	ids, err := d.client.SMembers(ctx, d.solvedKey(userID)).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out, nil
}

func (d *UserDirectory) MarkSolved(ctx context.Context, userID, questionID string) error {
	ok, err := d.Exists(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrUserNotFound
	}
	return d.client.SAdd(ctx, d.solvedKey(userID), questionID).Err()
}

func (d *UserDirectory) solvedKey(userID string) string {
	return "user:" + userID + ":solved"
}

const usersKey = "users"
