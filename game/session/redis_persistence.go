package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"

	"github.com/wricardo/grid-tactics/game/service"
)

const (
	DefaultRedisPrefix  = "grid-tactics"
	redisCommandTimeout = 5 * time.Second
)

// RedisPersistence stores each session under <prefix>:session:<id>
type RedisPersistence struct {
	client    *redis.Client
	prefix    string
	ttl       time.Duration
	scenarios service.ScenarioManager
}

// NewRedisPersistence pings the server before returning. A zero ttl keeps
// sessions forever.
func NewRedisPersistence(client *redis.Client, prefix string, ttl time.Duration, scenarios service.ScenarioManager) (*RedisPersistence, error) {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisCommandTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, eris.Wrap(err, "failed to reach redis")
	}

	return &RedisPersistence{
		client:    client,
		prefix:    prefix,
		ttl:       ttl,
		scenarios: scenarios,
	}, nil
}

func (rp *RedisPersistence) key(id string) string {
	return rp.prefix + ":session:" + id
}

// Save writes the session, refreshing its ttl
func (rp *RedisPersistence) Save(session *service.Session) error {
	data, err := encodeSession(session)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisCommandTimeout)
	defer cancel()
	if err := rp.client.Set(ctx, rp.key(session.ID), data, rp.ttl).Err(); err != nil {
		return eris.Wrapf(err, "failed to store session %s", session.ID)
	}
	return nil
}

// Load reads a session and rebuilds the match
func (rp *RedisPersistence) Load(id string) (*service.Session, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisCommandTimeout)
	defer cancel()

	data, err := rp.client.Get(ctx, rp.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "failed to read session %s", id)
	}
	return decodeSession(data, rp.scenarios)
}

// Delete removes a stored session
func (rp *RedisPersistence) Delete(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisCommandTimeout)
	defer cancel()

	n, err := rp.client.Del(ctx, rp.key(id)).Result()
	if err != nil {
		return eris.Wrapf(err, "failed to delete session %s", id)
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// ListAll scans for session keys under the prefix
func (rp *RedisPersistence) ListAll() ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisCommandTimeout)
	defer cancel()

	var ids []string
	pattern := rp.key("*")
	iter := rp.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		ids = append(ids, strings.TrimPrefix(iter.Val(), rp.key("")))
	}
	if err := iter.Err(); err != nil {
		return nil, eris.Wrap(err, "failed to scan sessions")
	}
	return ids, nil
}

// Exists checks if a session key exists
func (rp *RedisPersistence) Exists(id string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), redisCommandTimeout)
	defer cancel()

	n, err := rp.client.Exists(ctx, rp.key(id)).Result()
	return err == nil && n > 0
}
