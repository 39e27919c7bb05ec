package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "conversation:"

// RedisStore keeps each handle's history in a capped Redis list, newest
// turn at the head.
type RedisStore struct {
	rdb *redis.Client
	max int
	ttl time.Duration
}

// NewRedisStore keeps at most max turns per handle; lists expire after ttl
// of inactivity when ttl is positive.
func NewRedisStore(rdb *redis.Client, max int, ttl time.Duration) *RedisStore {
	if max <= 0 {
		max = 6
	}
	return &RedisStore{rdb: rdb, max: max, ttl: ttl}
}

func (s *RedisStore) Append(ctx context.Context, handle string, turn Turn) error {
	if turn.At.IsZero() {
		turn.At = time.Now().UTC()
	}
	raw, err := json.Marshal(turn)
	if err != nil {
		return err
	}
	key := keyPrefix + handle
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, key, raw)
		pipe.LTrim(ctx, key, 0, int64(s.max-1))
		if s.ttl > 0 {
			pipe.Expire(ctx, key, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("append conversation: %w", err)
	}
	return nil
}

func (s *RedisStore) Recent(ctx context.Context, handle string, n int) ([]Turn, error) {
	if n <= 0 || n > s.max {
		n = s.max
	}
	items, err := s.rdb.LRange(ctx, keyPrefix+handle, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}
	turns := make([]Turn, 0, len(items))
	for i := len(items) - 1; i >= 0; i-- {
		var t Turn
		if err := json.Unmarshal([]byte(items[i]), &t); err != nil {
			continue
		}
		turns = append(turns, t)
	}
	return turns, nil
}

func (s *RedisStore) Clear(ctx context.Context, handle string) error {
	return s.rdb.Del(ctx, keyPrefix+handle).Err()
}

var _ Store = (*RedisStore)(nil)
