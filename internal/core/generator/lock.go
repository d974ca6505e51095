// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/mimanga/pkg/uuid"
)

// ErrLocked is returned by [Locker.Acquire] while another run holds the lock.
var ErrLocked = errors.New("generator: a generation run is already in progress")

// Locker serializes generation runs.
type Locker interface {
	// Acquire takes the lock without waiting. The returned release function
	// is safe to call more than once.
	Acquire(context context.Context) (release func(), err error)
}

// # Process-Local Lock

// LocalLocker serializes runs within one process.
type LocalLocker struct {
	mu sync.Mutex
}

func (locker *LocalLocker) Acquire(_ context.Context) (func(), error) {
	if !locker.mu.TryLock() {
		return nil, ErrLocked
	}

	var once sync.Once
	return func() { once.Do(locker.mu.Unlock) }, nil
}

// # Distributed Lock

// releaseScript deletes the key only when it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker serializes runs across replicas with SET NX PX.
//
// The key expires after ttl so a crashed holder cannot block generation forever.
type RedisLocker struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisLocker creates a lock stored under key.
func NewRedisLocker(client *redis.Client, key string, ttl time.Duration, logger *slog.Logger) *RedisLocker {
	return &RedisLocker{client: client, key: key, ttl: ttl, logger: logger}
}

func (locker *RedisLocker) Acquire(ctx context.Context) (func(), error) {
	token := uuid.New()

	acquired, err := locker.client.SetNX(ctx, locker.key, token, locker.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("generator: acquire lock: %w", err)
	}
	if !acquired {
		return nil, ErrLocked
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			err := releaseScript.Run(context.WithoutCancel(ctx), locker.client, []string{locker.key}, token).Err()
			if err != nil {
				locker.logger.Warn("generation_lock_release_failed",
					slog.String("key", locker.key),
					slog.Any("error", err),
				)
			}
		})
	}
	return release, nil
}
