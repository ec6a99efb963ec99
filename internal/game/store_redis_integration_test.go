//go:build integration

package game

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newRedisClient(t *testing.T) *redis.Client {
	t.Helper()

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	require.NoError(t, rdb.Ping(ctx).Err(), "redis is not reachable")
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestRedisSessionStore_CreateUpdateLoad(t *testing.T) {
	ctx := context.Background()
	rdb := newRedisClient(t)
	require.NoError(t, rdb.FlushDB(ctx).Err())

	st := NewRedisSessionStore(rdb, time.Hour, 3)

	s, err := st.GetOrCreate(ctx, player)
	require.NoError(t, err)
	require.Equal(t, StateNotStarted, s.State)
	require.Equal(t, 3, s.AttemptsLeft)

	now := time.UnixMilli(1_000_000)
	_, err = st.Update(ctx, player, func(s *Session) error {
		DefaultRules().StartCooldown(s, now)
		s.AttemptsLeft = 0
		return nil
	})
	require.NoError(t, err)

	// a second replica sees the same state
	other := NewRedisSessionStore(rdb, time.Hour, 3)
	s, err = other.GetOrCreate(ctx, player)
	require.NoError(t, err)
	require.Equal(t, StateCooldown, s.State)
	require.Equal(t, int64(1_030_000), s.CooldownUntil.UnixMilli())
	require.Equal(t, 0, s.AttemptsLeft)

	ttl, err := rdb.TTL(ctx, "session:"+player).Result()
	require.NoError(t, err)
	require.Greater(t, ttl, time.Duration(0))
}

func TestRedisSessionStore_ConcurrentTransitionWinsOnce(t *testing.T) {
	ctx := context.Background()
	rdb := newRedisClient(t)
	require.NoError(t, rdb.FlushDB(ctx).Err())

	st := NewRedisSessionStore(rdb, time.Hour, 3)
	_, err := st.Update(ctx, player, func(s *Session) error {
		s.State = StateInProgress
		s.RoundID = "r1"
		return nil
	})
	require.NoError(t, err)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := st.Update(ctx, player, func(s *Session) error {
				if s.State != StateInProgress {
					return errStaleRound
				}
				s.State = StateWaitingForReward
				return nil
			})
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, wins)
}

func TestRedisSessionStore_EngineRound(t *testing.T) {
	ctx := context.Background()
	rdb := newRedisClient(t)
	require.NoError(t, rdb.FlushDB(ctx).Err())

	rig := newTestRig(t)
	rig.engine.store = NewRedisSessionStore(rdb, time.Hour, DefaultMaxAttempts)

	require.Equal(t, 200, rig.turn("/start").Status)

	rig.gen.respond = replyWith("[VICTORY] well played")
	require.Equal(t, 200, rig.turn("DOGE").Status)
	require.Len(t, rig.rewarder.Transfers(), 1)

	s, err := rig.engine.store.GetOrCreate(ctx, player)
	require.NoError(t, err)
	require.Equal(t, StateNotStarted, s.State)
}

func TestRedisStatsStore(t *testing.T) {
	ctx := context.Background()
	rdb := newRedisClient(t)
	require.NoError(t, rdb.FlushDB(ctx).Err())

	exerciseStatsStore(t, NewRedisStatsStore(rdb))

	// a second replica reads the same numbers
	ps, err := NewRedisStatsStore(rdb).Get(ctx, "0xabc")
	require.NoError(t, err)
	require.Equal(t, 6, ps.GamesPlayed)
}

func TestRedisSessionStore_RejectedUpdateWritesNothing(t *testing.T) {
	ctx := context.Background()
	rdb := newRedisClient(t)
	require.NoError(t, rdb.FlushDB(ctx).Err())

	st := NewRedisSessionStore(rdb, time.Hour, 3)
	_, err := st.Update(ctx, player, func(*Session) error { return errNoChange })
	require.ErrorIs(t, err, errNoChange)

	n, err := rdb.Exists(ctx, "session:"+player).Result()
	require.NoError(t, err)
	require.Zero(t, n)
}
