package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
	apperrors "github.com/rajasatyajit/bousai/internal/errors"
	"github.com/rajasatyajit/bousai/internal/models"
)

// RedisStore keeps the registry in a single Redis hash, one field per user
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore connects to redisURL and verifies the connection
func NewRedisStore(ctx context.Context, redisURL, key string) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, apperrors.StoreError{Backend: "redis", Operation: "ping", Err: err}
	}

	return &RedisStore{client: client, key: key}, nil
}

func (s *RedisStore) Get(ctx context.Context, userID string) (models.UserRecord, bool, error) {
	raw, err := s.client.HGet(ctx, s.key, userID).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.UserRecord{}, false, nil
	}
	if err != nil {
		return models.UserRecord{}, false, apperrors.StoreError{Backend: "redis", Operation: "get", Err: err}
	}

	var rec models.UserRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return models.UserRecord{}, false, apperrors.StoreError{Backend: "redis", Operation: "get", Err: err}
	}
	return rec, true, nil
}

func (s *RedisStore) Put(ctx context.Context, userID string, rec models.UserRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return apperrors.StoreError{Backend: "redis", Operation: "put", Err: err}
	}
	if err := s.client.HSet(ctx, s.key, userID, raw).Err(); err != nil {
		return apperrors.StoreError{Backend: "redis", Operation: "put", Err: err}
	}
	return nil
}

func (s *RedisStore) Health(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error { return s.client.Close() }
