package lockout

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "lockout:"

const (
	fieldCount       = "count"
	fieldLastFailure = "last"
	fieldLockedUntil = "locked_until"
)

// RedisStore keeps one hash per key. The hash expires one window after the
// last failure, or when the lock ends, so stale counts clear themselves.
type RedisStore struct {
	client redis.UniversalClient
}

func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) (*Record, error) {
	fields, err := s.client.HGetAll(ctx, keyPrefix+key).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, nil
	}
	return parseRecord(key, fields)
}

func (s *RedisStore) RecordFailure(ctx context.Context, key string, now time.Time, window time.Duration) (*Record, error) {
	k := keyPrefix + key
	var (
		count  *redis.IntCmd
		locked *redis.StringCmd
	)
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		count = p.HIncrBy(ctx, k, fieldCount, 1)
		p.HSet(ctx, k, fieldLastFailure, now.UnixNano())
		p.PExpire(ctx, k, window)
		locked = p.HGet(ctx, k, fieldLockedUntil)
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}
	rec := &Record{Key: key, FailureCount: int(count.Val()), LastFailureAt: now}
	if v, err := locked.Result(); err == nil {
		until, perr := parseNanos(v)
		if perr != nil {
			return nil, perr
		}
		rec.LockedUntil = &until
	}
	return rec, nil
}

func (s *RedisStore) Lock(ctx context.Context, key string, until time.Time) error {
	k := keyPrefix + key
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, k, fieldLockedUntil, until.UnixNano())
		p.PExpireAt(ctx, k, until)
		return nil
	})
	return err
}

func (s *RedisStore) Clear(ctx context.Context, key string) error {
	return s.client.Del(ctx, keyPrefix+key).Err()
}

func parseRecord(key string, fields map[string]string) (*Record, error) {
	rec := &Record{Key: key}
	if v, ok := fields[fieldCount]; ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, err
		}
		rec.FailureCount = n
	}
	if v, ok := fields[fieldLastFailure]; ok {
		t, err := parseNanos(v)
		if err != nil {
			return nil, err
		}
		rec.LastFailureAt = t
	}
	if v, ok := fields[fieldLockedUntil]; ok {
		t, err := parseNanos(v)
		if err != nil {
			return nil, err
		}
		rec.LockedUntil = &t
	}
	return rec, nil
}

func parseNanos(v string) (time.Time, error) {
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(0, n).UTC(), nil
}
