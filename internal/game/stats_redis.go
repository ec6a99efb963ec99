package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// redisGetter is satisfied by both *redis.Client and *redis.Tx.
type redisGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// RedisStatsStore keeps statistics next to the shared sessions so every
// replica reports the same numbers. Stats keys do not expire.
type RedisStatsStore struct {
	rdb *redis.Client
}

func NewRedisStatsStore(rdb *redis.Client) *RedisStatsStore {
	return &RedisStatsStore{rdb: rdb}
}

func (s *RedisStatsStore) key(identity string) string {
	return fmt.Sprintf("stats:%s", identity)
}

func (s *RedisStatsStore) RecordStart(ctx context.Context, identity string) error {
	return s.update(ctx, identity, (*statsRecord).start)
}

func (s *RedisStatsStore) RecordWin(ctx context.Context, identity string, wrongGuesses int) error {
	return s.update(ctx, identity, func(r *statsRecord) { r.win(wrongGuesses) })
}

func (s *RedisStatsStore) RecordLoss(ctx context.Context, identity string) error {
	return s.update(ctx, identity, (*statsRecord).loss)
}

func (s *RedisStatsStore) Get(ctx context.Context, identity string) (PlayerStats, error) {
	rec, err := s.load(ctx, s.rdb, identity)
	if err != nil {
		return PlayerStats{}, fmt.Errorf("stats store: get %s: %w", identity, err)
	}
	return rec.stats(), nil
}

func (s *RedisStatsStore) update(ctx context.Context, identity string, fn func(r *statsRecord)) error {
	key := s.key(identity)
	err := watchedUpdate(ctx, s.rdb, key, func(tx *redis.Tx) error {
		rec, err := s.load(ctx, tx, identity)
		if err != nil {
			return err
		}
		fn(&rec)

		b, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, b, 0)
			return nil
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("stats store: update %s: %w", identity, err)
	}
	return nil
}

func (s *RedisStatsStore) load(ctx context.Context, c redisGetter, identity string) (statsRecord, error) {
	var rec statsRecord
	val, err := c.Get(ctx, s.key(identity)).Bytes()
	if errors.Is(err, redis.Nil) {
		return rec, nil
	}
	if err != nil {
		return rec, err
	}
	if err := json.Unmarshal(val, &rec); err != nil {
		return rec, err
	}
	return rec, nil
}
