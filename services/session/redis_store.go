package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"officescheduler/models"
	"officescheduler/utils"
)

// RedisStore keeps sessions as JSON under utils.SessionCachePrefix with a
// sliding TTL. The submit flag is a SETNX key that expires on its own if the
// process dies mid-submission.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func sessionKey(id string) string {
	return utils.SessionCachePrefix + id
}

func (r *RedisStore) Get(ctx context.Context, id string) (*models.ScheduleSession, error) {
	data, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	var s models.ScheduleSession
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &s, nil
}

func (r *RedisStore) Save(ctx context.Context, s *models.ScheduleSession) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := r.client.Set(ctx, sessionKey(s.ID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, sessionKey(id), sessionKey(id)+utils.SubmitLockSuffix).Err()
}

func (r *RedisStore) AcquireSubmit(ctx context.Context, id string) (bool, error) {
	ok, err := r.client.SetNX(ctx, sessionKey(id)+utils.SubmitLockSuffix, 1, utils.SubmitLockTTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed to set submit flag: %w", err)
	}
	return ok, nil
}

func (r *RedisStore) ReleaseSubmit(ctx context.Context, id string) error {
	return r.client.Del(ctx, sessionKey(id)+utils.SubmitLockSuffix).Err()
}
