package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/tobiasgaitan/TiendaLasMotos-sub001/internal/model"
)

const redisCounterPrefix = "counters:"

// RedisCounterStore guarda cada contador como hash y confirma con WATCH/MULTI
type RedisCounterStore struct {
	client *redis.Client
	policy RetryPolicy
	logger *logrus.Logger
}

func NewRedisCounterStore(client *redis.Client, policy RetryPolicy, logger *logrus.Logger) *RedisCounterStore {
	return &RedisCounterStore{client: client, policy: policy, logger: logger}
}

func (s *RedisCounterStore) Get(ctx context.Context, key string) (*model.QuotationCounter, error) {
	return readRedisCounter(ctx, s.client, redisCounterPrefix+key)
}

func (s *RedisCounterStore) Update(ctx context.Context, key string, fn CounterUpdateFunc) (*model.QuotationCounter, error) {
	redisKey := redisCounterPrefix + key

	return runWithRetry(ctx, s.policy, s.logger, key, func(ctx context.Context) (*model.QuotationCounter, error) {
		var next model.QuotationCounter

		err := s.client.Watch(ctx, func(tx *redis.Tx) error {
			current, err := readRedisCounter(ctx, tx, redisKey)
			if err != nil {
				return err
			}

			next, err = fn(current)
			if err != nil {
				return err
			}
			next.Version = 1
			if current != nil {
				next.Version = current.Version + 1
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.HSet(ctx, redisKey, map[string]interface{}{
					"year":           next.Year,
					"sequence_value": next.SequenceValue,
					"last_updated":   next.LastUpdated.UnixNano(),
					"version":        next.Version,
				})
				return nil
			})
			return err
		}, redisKey)

		if errors.Is(err, redis.TxFailedErr) {
			return nil, errConflict
		}
		if err != nil {
			return nil, err
		}
		return &next, nil
	})
}

type hashReader interface {
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
}

func readRedisCounter(ctx context.Context, c hashReader, key string) (*model.QuotationCounter, error) {
	fields, err := c.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read counter: %w", err)
	}
	if len(fields) == 0 {
		return nil, nil
	}

	year, err := strconv.Atoi(fields["year"])
	if err != nil {
		return nil, fmt.Errorf("corrupt counter %s: year: %w", key, err)
	}
	value, err := strconv.Atoi(fields["sequence_value"])
	if err != nil {
		return nil, fmt.Errorf("corrupt counter %s: sequence_value: %w", key, err)
	}
	updated, err := strconv.ParseInt(fields["last_updated"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("corrupt counter %s: last_updated: %w", key, err)
	}
	version, err := strconv.ParseInt(fields["version"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("corrupt counter %s: version: %w", key, err)
	}

	return &model.QuotationCounter{
		Year:          year,
		SequenceValue: value,
		LastUpdated:   time.Unix(0, updated).UTC(),
		Version:       version,
	}, nil
}
