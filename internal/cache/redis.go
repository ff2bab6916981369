// Package cache keeps the latest pairings window in Redis.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/agenthands/flavorgraph/internal/config"
	"github.com/agenthands/flavorgraph/internal/core/model"
	"github.com/agenthands/flavorgraph/internal/driver"
	"github.com/agenthands/flavorgraph/internal/logging"
)

func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: failed to connect to Redis: %w", driver.ErrStorageUnavailable, err)
	}

	logging.Info().Str("addr", cfg.Addr).Msg("Connected to Redis")
	return client, nil
}

// LatestPairingStore keeps entry ids in a sorted set scored by creation time
// and the entries themselves in a hash. Writes touch both in one MULTI/EXEC.
type LatestPairingStore struct {
	client   redis.Cmdable
	indexKey string
	dataKey  string
}

func NewLatestPairingStore(client redis.Cmdable, keyPrefix string) *LatestPairingStore {
	if keyPrefix == "" {
		keyPrefix = "flavorgraph"
	}
	return &LatestPairingStore{
		client:   client,
		indexKey: keyPrefix + ":latest_pairings",
		dataKey:  keyPrefix + ":latest_pairings:data",
	}
}

func (s *LatestPairingStore) List(ctx context.Context) ([]model.LatestPairing, error) {
	ids, err := s.client.ZRange(ctx, s.indexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", driver.ErrStorageUnavailable, err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	raw, err := s.client.HMGet(ctx, s.dataKey, ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", driver.ErrStorageUnavailable, err)
	}

	out := make([]model.LatestPairing, 0, len(raw))
	for i, v := range raw {
		str, ok := v.(string)
		if !ok {
			logging.Warn().Str("uuid", ids[i]).Msg("latest pairing without data, skipping")
			continue
		}
		var p model.LatestPairing
		if err := json.Unmarshal([]byte(str), &p); err != nil {
			return nil, fmt.Errorf("failed to decode latest pairing %s: %w", ids[i], err)
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *LatestPairingStore) Save(ctx context.Context, p model.LatestPairing) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode latest pairing: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.dataKey, p.UUID, data)
		pipe.ZAdd(ctx, s.indexKey, redis.Z{Score: float64(p.DateAdded.UnixMilli()), Member: p.UUID})
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %w", driver.ErrStorageUnavailable, err)
	}
	return nil
}

func (s *LatestPairingStore) Delete(ctx context.Context, p model.LatestPairing) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRem(ctx, s.indexKey, p.UUID)
		pipe.HDel(ctx, s.dataKey, p.UUID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %w", driver.ErrStorageUnavailable, err)
	}
	return nil
}
