package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	// DefaultTTL is how long an untouched cart is kept.
	DefaultTTL = 30 * 24 * time.Hour

	// ChangeChannel carries Change notifications.
	ChangeChannel = "cart:changes"
)

// RedisStore persists carts as JSON values and announces every write on a
// pub/sub channel.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedisStore creates a Redis-backed cart store.
func NewRedisStore(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "cart-store").Logger(),
	}
}

// Load returns the stored cart or ErrNotFound.
func (s *RedisStore) Load(ctx context.Context, owner string) (*Cart, error) {
	data, err := s.client.Get(ctx, cacheKey(owner)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	c := New()
	if err := json.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	return c, nil
}

// Save writes the cart and publishes a Change.
func (s *RedisStore) Save(ctx context.Context, owner, origin string, c *Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}

	if err := s.client.Set(ctx, cacheKey(owner), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	change, err := json.Marshal(Change{Owner: owner, Origin: origin})
	if err != nil {
		return fmt.Errorf("marshal change failed: %w", err)
	}
	if err := s.client.Publish(ctx, ChangeChannel, change).Err(); err != nil {
		// The value is stored; other writers just miss this notification.
		s.logger.Warn().Err(err).Str("owner", owner).Msg("failed to publish cart change")
	}
	return nil
}

// Watch subscribes to ChangeChannel and calls fn per notification until ctx
// is done.
func (s *RedisStore) Watch(ctx context.Context, fn func(Change)) error {
	sub := s.client.Subscribe(ctx, ChangeChannel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("redis subscribe failed: %w", err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var change Change
			if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
				s.logger.Warn().Err(err).Msg("ignoring malformed cart change")
				continue
			}
			fn(change)
		}
	}
}

func cacheKey(owner string) string {
	return fmt.Sprintf("cart:%s", owner)
}
