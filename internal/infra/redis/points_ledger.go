package redis

import (
	"context"
	"sort"
	"strconv"
	"time"

	"ecolearn-challenge-service/internal/domain"
	"ecolearn-challenge-service/internal/metrics"
	"github.com/redis/go-redis/v9"
)

// creditScript applies a credit at most once per key.
// KEYS[1] credit marker, KEYS[2] balances sorted set; ARGV[1] user id, ARGV[2] amount.
var creditScript = redis.NewScript(`
if redis.call('SET', KEYS[1], ARGV[1], 'NX') then
  return tonumber(redis.call('ZINCRBY', KEYS[2], ARGV[2], ARGV[1]))
end
local current = redis.call('ZSCORE', KEYS[2], ARGV[1])
if not current then
  return 0
end
return tonumber(current)
`)

// PointsLedger stores eco-point balances in a sorted set, which doubles as the leaderboard.
//   - points:balances          sorted set user id -> points
//   - points:credited:{key}    marker for an applied credit
type PointsLedger struct {
	client *redis.Client
}

func NewPointsLedger(client *redis.Client) *PointsLedger {
	return &PointsLedger{client: client}
}

func (l *PointsLedger) Credit(ctx context.Context, key, userID string, amount int) (int, error) {
	defer metrics.ObserveStore("redis", "points_credit", time.Now())
	return creditScript.Run(ctx, l.client, []string{"points:credited:" + key, balancesKey}, userID, amount).Int()
}

func (l *PointsLedger) Balance(ctx context.Context, userID string) (int, error) {
	score, err := l.client.ZScore(ctx, balancesKey, userID).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return int(score), nil
}

func (l *PointsLedger) Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	defer metrics.ObserveStore("redis", "points_leaderboard", time.Now())
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}
	rows, err := l.client.ZRevRangeWithScores(ctx, balancesKey, 0, stop).Result()
	if err != nil {
		return nil, err
	}
	// Redis orders equal scores in reverse lexical order, so a tie at the cut-off may
	// have left out lower ids. Pull every member at or above the boundary score.
	if limit > 0 && len(rows) == limit {
		boundary := strconv.FormatFloat(rows[len(rows)-1].Score, 'f', -1, 64)
		rows, err = l.client.ZRevRangeByScoreWithScores(ctx, balancesKey, &redis.ZRangeBy{
			Min: boundary,
			Max: "+inf",
		}).Result()
		if err != nil {
			return nil, err
		}
	}
	entries := make([]domain.LeaderboardEntry, 0, len(rows))
	for _, row := range rows {
		id, _ := row.Member.(string)
		entries = append(entries, domain.LeaderboardEntry{UserID: id, Points: int(row.Score)})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Points != entries[j].Points {
			return entries[i].Points > entries[j].Points
		}
		return entries[i].UserID < entries[j].UserID
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

const balancesKey = "points:balances"
