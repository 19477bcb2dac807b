package jobboard

import (
	"context"
	"encoding/json"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/redis/go-redis/v9"
)

// StatusChangedEvent is published after an application status update
type StatusChangedEvent struct {
	ApplicationID string    `json:"applicationId"`
	Status        string    `json:"status"`
	ChangedAt     time.Time `json:"changedAt"`
}

// StatusPublisher announces status changes to interested parties
type StatusPublisher interface {
	PublishStatusChanged(ctx context.Context, event StatusChangedEvent) error
}

// NopPublisher drops every event
type NopPublisher struct{}

func (NopPublisher) PublishStatusChanged(context.Context, StatusChangedEvent) error { return nil }

// RedisClient is the subset of redis.UniversalClient we need
type RedisClient interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// RedisStatusPublisher publishes JSON encoded events on a Redis channel
type RedisStatusPublisher struct {
	client  RedisClient
	channel string
}

// NewRedisStatusPublisher publishes on channel through client
func NewRedisStatusPublisher(client RedisClient, channel string) *RedisStatusPublisher {
	return &RedisStatusPublisher{client: client, channel: channel}
}

func (p *RedisStatusPublisher) PublishStatusChanged(ctx context.Context, event StatusChangedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "encode status event")
	}

	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return errors.Wrap(err, errors.CategoryExternal, "publish status event").
			WithMetadata(map[string]any{"channel": p.channel})
	}
	return nil
}

// NewRedisClient parses a redis:// URL into a client
func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "invalid REDIS_URL")
	}
	return redis.NewClient(opts), nil
}
