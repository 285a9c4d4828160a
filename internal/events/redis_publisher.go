package events

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

const channel = "moderation:events"

// RedisPublisher implements Publisher over a redis pub/sub channel.
type RedisPublisher struct {
	client *redis.Client
	pubsub *redis.PubSub
	ctx    context.Context
}

func NewRedisPublisher(redisURL string) (*RedisPublisher, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisPublisher{
		client: client,
		ctx:    ctx,
	}, nil
}

// Client exposes the underlying redis client so other components
// (like the rate limiter) can share the connection.
func (r *RedisPublisher) Client() *redis.Client {
	return r.client
}

func (r *RedisPublisher) Publish(event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return r.client.Publish(r.ctx, channel, data).Err()
}

// Subscribe returns a channel of moderation events. Used by dashboard
// pollers and by tests asserting fan-out.
func (r *RedisPublisher) Subscribe() (<-chan Event, error) {
	r.pubsub = r.client.Subscribe(r.ctx, channel)

	// Wait for the subscription confirmation so events published right
	// after Subscribe returns are not lost.
	if _, err := r.pubsub.Receive(r.ctx); err != nil {
		return nil, err
	}

	eventChan := make(chan Event, 100)

	go func() {
		defer close(eventChan)

		for redisMsg := range r.pubsub.Channel() {
			var event Event

			if err := json.Unmarshal([]byte(redisMsg.Payload), &event); err != nil {
				continue
			}

			eventChan <- event
		}
	}()

	return eventChan, nil
}

func (r *RedisPublisher) Close() error {
	if r.pubsub != nil {
		r.pubsub.Close()
	}
	return r.client.Close()
}
