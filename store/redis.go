package store

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/bots-empire/adnet-bot/model"
)

// RedisStore keeps one hash per path. Counter fields are incremented with
// HINCRBYFLOAT so concurrent writers never lose an update.
type RedisStore struct {
	rdb     *redis.Client
	timeout time.Duration
}

func NewRedisStore(rdb *redis.Client, timeout time.Duration) *RedisStore {
	return &RedisStore{
		rdb:     rdb,
		timeout: timeout,
	}
}

func (s *RedisStore) Get(ctx context.Context, path string) (map[string]string, bool, error) {
	var fields map[string]string

	err := s.withRetry(ctx, func(ctx context.Context) error {
		var err error
		fields, err = s.rdb.HGetAll(ctx, path).Result()
		return err
	})
	if err != nil {
		return nil, false, errors.Wrap(err, "hgetall "+path)
	}

	if len(fields) == 0 {
		return nil, false, nil
	}
	return fields, true, nil
}

func (s *RedisStore) Set(ctx context.Context, path string, fields map[string]string) error {
	err := s.withRetry(ctx, func(ctx context.Context) error {
		pipe := s.rdb.TxPipeline()
		pipe.Del(ctx, path)
		pipe.HSet(ctx, path, toAnyMap(fields))
		_, err := pipe.Exec(ctx)
		return err
	})

	return errors.Wrap(err, "hset "+path)
}

func (s *RedisStore) Update(ctx context.Context, path string, fields map[string]string) error {
	err := s.withRetry(ctx, func(ctx context.Context) error {
		return s.rdb.HSet(ctx, path, toAnyMap(fields)).Err()
	})

	return errors.Wrap(err, "hset "+path)
}

func (s *RedisStore) Incr(ctx context.Context, path string, deltas map[string]float64) (map[string]float64, error) {
	cmds := make(map[string]*redis.FloatCmd, len(deltas))

	err := s.withRetry(ctx, func(ctx context.Context) error {
		pipe := s.rdb.TxPipeline()
		for field, delta := range deltas {
			cmds[field] = pipe.HIncrByFloat(ctx, path, field, delta)
		}
		_, err := pipe.Exec(ctx)
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "hincrbyfloat "+path)
	}

	updated := make(map[string]float64, len(cmds))
	for field, cmd := range cmds {
		updated[field] = cmd.Val()
	}
	return updated, nil
}

func (s *RedisStore) SetFieldNX(ctx context.Context, path, field, value string) (bool, error) {
	var won bool

	err := s.withRetry(ctx, func(ctx context.Context) error {
		var err error
		won, err = s.rdb.HSetNX(ctx, path, field, value).Result()
		return err
	})
	if err != nil {
		return false, errors.Wrap(err, "hsetnx "+path)
	}
	return won, nil
}

func (s *RedisStore) Children(ctx context.Context, prefix string) ([]string, error) {
	var paths []string

	err := s.withRetry(ctx, func(ctx context.Context) error {
		paths = paths[:0]

		iter := s.rdb.Scan(ctx, 0, prefix+"*", 100).Iterator()
		for iter.Next(ctx) {
			paths = append(paths, iter.Val())
		}
		return iter.Err()
	})
	if err != nil {
		return nil, errors.Wrap(err, "scan "+prefix)
	}
	return paths, nil
}

func (s *RedisStore) Now(ctx context.Context) (time.Time, error) {
	var now time.Time

	err := s.withRetry(ctx, func(ctx context.Context) error {
		var err error
		now, err = s.rdb.Time(ctx).Result()
		return err
	})
	if err != nil {
		return time.Time{}, errors.Wrap(err, "server time")
	}
	return now, nil
}

// withRetry runs fn with the per-call timeout and retries once on a
// transient failure. Exhaustion surfaces as ErrStoreUnavailable.
func (s *RedisStore) withRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 0; attempt < 2; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, s.timeout)
		lastErr = fn(callCtx)
		cancel()

		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			break
		}
	}

	return errors.Wrap(model.ErrStoreUnavailable, lastErr.Error())
}

func toAnyMap(fields map[string]string) map[string]interface{} {
	m := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		m[k] = v
	}
	return m
}
