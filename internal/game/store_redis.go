package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisUpdateRetries = 16

// errSkipWrite aborts a watched transaction without writing and without
// being reported as a failure.
var errSkipWrite = errors.New("skip write")

// watchedUpdate runs txf in an optimistic WATCH/MULTI transaction on key,
// retrying when another writer touched the key first.
func watchedUpdate(ctx context.Context, rdb *redis.Client, key string, txf func(tx *redis.Tx) error) error {
	for i := 0; i < redisUpdateRetries; i++ {
		err := rdb.Watch(ctx, txf, key)
		if err == nil || errors.Is(err, errSkipWrite) {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return ErrStoreConflict
}

// RedisSessionStore shares sessions between bot replicas. Keys expire ttl
// after their last write.
type RedisSessionStore struct {
	rdb         *redis.Client
	ttl         time.Duration
	maxAttempts int
}

func NewRedisSessionStore(rdb *redis.Client, ttl time.Duration, maxAttempts int) *RedisSessionStore {
	return &RedisSessionStore{rdb: rdb, ttl: ttl, maxAttempts: maxAttempts}
}

func (s *RedisSessionStore) key(identity string) string {
	return fmt.Sprintf("session:%s", identity)
}

func (s *RedisSessionStore) GetOrCreate(ctx context.Context, identity string) (Session, error) {
	return s.Update(ctx, identity, func(*Session) error { return nil })
}

func (s *RedisSessionStore) Update(ctx context.Context, identity string, fn func(s *Session) error) (Session, error) {
	key := s.key(identity)

	var (
		out   Session
		fnErr error
	)
	err := watchedUpdate(ctx, s.rdb, key, func(tx *redis.Tx) error {
		fnErr = nil
		cur, err := s.load(ctx, tx, identity)
		if err != nil {
			return err
		}

		next := cur
		if err := fn(&next); err != nil {
			out, fnErr = cur, err
			return errSkipWrite
		}

		b, err := json.Marshal(recordFromSession(next))
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, b, s.ttl)
			return nil
		})
		if err != nil {
			return err
		}
		out = next
		return nil
	})
	if errors.Is(err, ErrStoreConflict) {
		return Session{}, err
	}
	if err != nil {
		return Session{}, fmt.Errorf("session store: update %s: %w", identity, err)
	}
	return out, fnErr
}

func (s *RedisSessionStore) load(ctx context.Context, tx *redis.Tx, identity string) (Session, error) {
	val, err := tx.Get(ctx, s.key(identity)).Bytes()
	if errors.Is(err, redis.Nil) {
		return newSession(identity, s.maxAttempts), nil
	}
	if err != nil {
		return Session{}, err
	}

	var rec sessionRecord
	if err := json.Unmarshal(val, &rec); err != nil {
		return Session{}, err
	}
	return rec.session(), nil
}
