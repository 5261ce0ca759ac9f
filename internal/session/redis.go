package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL bounds how long a session's "city already requested" mark is
// retained.
const DefaultTTL = 30 * time.Minute

// RedisStore keeps dialog state in Redis, letting the server restart without
// re-asking every active session and giving eviction for free via key TTLs.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore constructs a RedisStore. A non-positive ttl selects DefaultTTL.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

// Connect parses redisURL, creates a client, and verifies connectivity with a ping.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	return client, nil
}

func key(sessionID string) string {
	return "session:" + sessionID
}

// CityRequested reports whether the session has already been asked for a city.
// A missing key is an ordinary "not asked yet", not an error.
func (s *RedisStore) CityRequested(ctx context.Context, sessionID string) (bool, error) {
	_, err := s.client.Get(ctx, key(sessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("reading session %s: %w", sessionID, err)
	}
	return true, nil
}

// MarkCityRequested records that the session has been asked for a city.
func (s *RedisStore) MarkCityRequested(ctx context.Context, sessionID string) error {
	if err := s.client.Set(ctx, key(sessionID), "1", s.ttl).Err(); err != nil {
		return fmt.Errorf("marking session %s: %w", sessionID, err)
	}
	return nil
}
