package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"hospitality_pos/internal/realtime"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	changeChannelPrefix = "pos:changes:"
	changeChannelAll    = "pos:changes:all"
	tempPrefix          = "temp:"
)

var ErrCacheMiss = errors.New("cache miss")

type Client struct {
	rdb *redis.Client
}

func Initialize(redisURL string) (*Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Temporary data management
func (c *Client) SetTempData(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	jsonData, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal temp data: %w", err)
	}

	return c.rdb.Set(ctx, tempPrefix+key, jsonData, ttl).Err()
}

func (c *Client) GetTempData(ctx context.Context, key string, dest interface{}) error {
	val, err := c.rdb.Get(ctx, tempPrefix+key).Result()
	if err != nil {
		if err == redis.Nil {
			return ErrCacheMiss
		}
		return fmt.Errorf("failed to get temp data: %w", err)
	}

	return json.Unmarshal([]byte(val), dest)
}

func (c *Client) DeleteTempData(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, tempPrefix+key).Err()
}

// Change feed

func ChangeChannel(collection string) string {
	return changeChannelPrefix + collection
}

// PublishChange sends the change on its collection channel and on the
// catch-all channel.
func (c *Client) PublishChange(ctx context.Context, change realtime.Change) error {
	payload, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("failed to marshal change: %w", err)
	}

	if err := c.rdb.Publish(ctx, ChangeChannel(change.Collection), payload).Err(); err != nil {
		return fmt.Errorf("failed to publish change: %w", err)
	}
	if err := c.rdb.Publish(ctx, changeChannelAll, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish to all channel: %w", err)
	}
	return nil
}

// SubscribeChanges delivers every change on the catch-all channel to handle
// until ctx is done. Malformed messages are logged and skipped.
func (c *Client) SubscribeChanges(ctx context.Context, logger *zap.Logger, handle func(realtime.Change)) error {
	pubsub := c.rdb.Subscribe(ctx, changeChannelAll)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to changes: %w", err)
	}

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var change realtime.Change
			if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
				logger.Warn("malformed change message", zap.String("channel", msg.Channel), zap.Error(err))
				continue
			}
			handle(change)
		}
	}
}

// Close Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}
