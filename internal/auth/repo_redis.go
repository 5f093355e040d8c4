package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"ops-backend/internal/shared/util"
)

// RedisClient is the subset of go-redis commands the session store uses.
type RedisClient interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisSessions stores sessions as expiring JSON values.
type RedisSessions struct {
	Client RedisClient
	Prefix string
	now    func() time.Time
}

// NewRedisSessions returns a store writing keys under "session:".
func NewRedisSessions(client RedisClient) *RedisSessions {
	return &RedisSessions{Client: client, Prefix: "session:", now: time.Now}
}

type redisSession struct {
	UserID    int64     `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (r *RedisSessions) key(k string) string {
	return r.Prefix + util.HashKey(k)
}

func (r *RedisSessions) Create(ctx context.Context, s Session) error {
	ttl := s.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		return errors.New("session already expired")
	}
	data, err := json.Marshal(redisSession{UserID: s.UserID, ExpiresAt: s.ExpiresAt})
	if err != nil {
		return err
	}
	if err := r.Client.Set(ctx, r.key(s.Key), data, ttl).Err(); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (r *RedisSessions) Get(ctx context.Context, key string) (Session, error) {
	raw, err := r.Client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Session{}, ErrSessionNotFound
		}
		return Session{}, fmt.Errorf("load session: %w", err)
	}
	var rs redisSession
	if err := json.Unmarshal(raw, &rs); err != nil {
		return Session{}, fmt.Errorf("decode session: %w", err)
	}
	if !rs.ExpiresAt.After(r.now()) {
		return Session{}, ErrSessionNotFound
	}
	return Session{Key: key, UserID: rs.UserID, ExpiresAt: rs.ExpiresAt}, nil
}

func (r *RedisSessions) Delete(ctx context.Context, key string) error {
	if err := r.Client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
