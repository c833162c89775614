package alerts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/albapepper/meditrack-alerts/internal/reminder"
)

const redisPrefix = "meditrack:alerts:"

// RedisQueue is a Queue shared by every server process pointed at the same
// Redis. Each alert is a JSON string under SET NX PX so the first producer
// wins; a per-user sorted set scored by expiry (unix ms) indexes them.
type RedisQueue struct {
	rdb *redis.Client
	now func() time.Time
}

// NewRedisQueue wraps an existing client.
func NewRedisQueue(rdb *redis.Client) *RedisQueue {
	return &RedisQueue{rdb: rdb, now: time.Now}
}

func alertKey(key reminder.Key) string { return redisPrefix + "alert:" + string(key) }
func userKey(userID string) string     { return redisPrefix + "user:" + userID }

const usersKey = redisPrefix + "users"

// Record implements Queue.
func (q *RedisQueue) Record(ctx context.Context, a reminder.Alert, ttl time.Duration) (bool, error) {
	payload, err := json.Marshal(a)
	if err != nil {
		return false, fmt.Errorf("encode alert %s: %w", a.Key, err)
	}

	ok, err := q.rdb.SetNX(ctx, alertKey(a.Key), payload, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("record alert %s: %w", a.Key, err)
	}
	if !ok {
		return false, nil
	}

	expires := q.now().Add(ttl).UnixMilli()
	pipe := q.rdb.TxPipeline()
	pipe.ZAdd(ctx, userKey(a.UserID), redis.Z{Score: float64(expires), Member: string(a.Key)})
	pipe.SAdd(ctx, usersKey, a.UserID)
	if _, err := pipe.Exec(ctx); err != nil {
		// An unindexed payload would block the key without ever draining.
		if delErr := q.rdb.Del(ctx, alertKey(a.Key)).Err(); delErr != nil {
			err = errors.Join(err, delErr)
		}
		return false, fmt.Errorf("index alert %s: %w", a.Key, err)
	}
	return true, nil
}

// Drain implements Queue.
func (q *RedisQueue) Drain(ctx context.Context, userID string, kind reminder.Kind) ([]reminder.Alert, error) {
	members, err := q.rdb.ZRangeByScore(ctx, userKey(userID), &redis.ZRangeBy{
		Min: "(" + strconv.FormatInt(q.now().UnixMilli(), 10),
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("list alerts for %s: %w", userID, err)
	}
	if len(members) == 0 {
		return []reminder.Alert{}, nil
	}

	keys := make([]string, len(members))
	for i, m := range members {
		keys[i] = alertKey(reminder.Key(m))
	}
	values, err := q.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load alerts for %s: %w", userID, err)
	}

	out := make([]reminder.Alert, 0, len(values))
	var taken []string
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		var a reminder.Alert
		if err := json.Unmarshal([]byte(s), &a); err != nil {
			return nil, fmt.Errorf("decode alert %s: %w", members[i], err)
		}
		if a.Kind != kind {
			continue
		}
		out = append(out, a)
		taken = append(taken, members[i])
	}
	sortByProduced(out)

	if kind.OneTime() && len(taken) > 0 {
		pipe := q.rdb.TxPipeline()
		for _, m := range taken {
			pipe.Del(ctx, alertKey(reminder.Key(m)))
			pipe.ZRem(ctx, userKey(userID), m)
		}
		if _, err := pipe.Exec(ctx); err != nil {
			return nil, fmt.Errorf("consume alerts for %s: %w", userID, err)
		}
	}
	return out, nil
}

// EvictExpired implements Queue. Redis expires the payloads itself; this
// trims the per-user indexes.
func (q *RedisQueue) EvictExpired(ctx context.Context) (int, error) {
	users, err := q.rdb.SMembers(ctx, usersKey).Result()
	if err != nil {
		return 0, fmt.Errorf("list alert users: %w", err)
	}
	cutoff := strconv.FormatInt(q.now().UnixMilli(), 10)
	total := 0
	for _, u := range users {
		n, err := q.rdb.ZRemRangeByScore(ctx, userKey(u), "-inf", cutoff).Result()
		if err != nil {
			return total, fmt.Errorf("evict alerts for %s: %w", u, err)
		}
		total += int(n)
		left, err := q.rdb.ZCard(ctx, userKey(u)).Result()
		if err != nil {
			return total, fmt.Errorf("count alerts for %s: %w", u, err)
		}
		if left == 0 {
			q.rdb.SRem(ctx, usersKey, u)
		}
	}
	return total, nil
}

// Len implements Queue.
func (q *RedisQueue) Len(ctx context.Context) (int, error) {
	users, err := q.rdb.SMembers(ctx, usersKey).Result()
	if err != nil {
		return 0, fmt.Errorf("list alert users: %w", err)
	}
	floor := "(" + strconv.FormatInt(q.now().UnixMilli(), 10)
	total := 0
	for _, u := range users {
		n, err := q.rdb.ZCount(ctx, userKey(u), floor, "+inf").Result()
		if err != nil {
			return total, fmt.Errorf("count alerts for %s: %w", u, err)
		}
		total += int(n)
	}
	return total, nil
}
