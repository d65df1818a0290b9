package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/redis/go-redis/v9"
)

// RedisRemote keeps each session's snapshot as one JSON string.
type RedisRemote struct {
	client *redis.Client
	prefix string
}

func NewRedisRemote(redisURL string) (*RedisRemote, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return NewRedisRemoteWithClient(client), nil
}

func NewRedisRemoteWithClient(client *redis.Client) *RedisRemote {
	return &RedisRemote{client: client, prefix: "snapshot:"}
}

func (r *RedisRemote) key(token string) string {
	return r.prefix + token
}

func (r *RedisRemote) CreateSession(ctx context.Context, initial Snapshot) (string, error) {
	token, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	payload, err := json.Marshal(initial)
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	ok, err := r.client.SetNX(ctx, r.key(token), payload, 0).Result()
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	if !ok {
		return "", fmt.Errorf("create session: token %s already taken", token)
	}
	return token, nil
}

func (r *RedisRemote) Pull(ctx context.Context, token string) (*Snapshot, error) {
	raw, err := r.client.Get(ctx, r.key(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("pull session %s: %w", token, err)
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", token, err)
	}
	return &snap, nil
}

func (r *RedisRemote) Push(ctx context.Context, token string, snap Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := r.client.Set(ctx, r.key(token), payload, 0).Err(); err != nil {
		return fmt.Errorf("push session %s: %w", token, err)
	}
	return nil
}

func (r *RedisRemote) Close() error {
	return r.client.Close()
}
