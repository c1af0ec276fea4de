package eventbus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"poll-registry/internal/domain/poll"
)

const DefaultChannel = "poll-registry.events"

// RedisPublisher fans registry events out over a Redis pub/sub channel.
// Subscribers receive the same JSON document the journal stores.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisPublisher{client: client, channel: channel}
}

// Dial connects to addr and verifies the connection.
func Dial(ctx context.Context, addr, password string, db int, channel string) (*RedisPublisher, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return NewRedisPublisher(client, channel), nil
}

func (p *RedisPublisher) Channel() string {
	return p.channel
}

func (p *RedisPublisher) Publish(ctx context.Context, e poll.Event) error {
	payload, err := Encode(e)
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, p.channel, payload).Err()
}

func (p *RedisPublisher) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

func (p *RedisPublisher) Close() error {
	return p.client.Close()
}

func Encode(e poll.Event) ([]byte, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode event %d: %w", e.Seq, err)
	}
	return b, nil
}
