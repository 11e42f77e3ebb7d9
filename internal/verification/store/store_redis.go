package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"instadoc/internal/verification"
	"instadoc/pkg/platform/sentinel"
)

// Redis key prefix for outstanding challenges, keyed by registration session.
const challengeKeyPrefix = "reg:otp:"

// Redis stores challenges in Redis so multiple instances share the one
// outstanding challenge per session. No TTL is set: challenges do not
// expire, and IssuedAt travels with the record for a future policy.
type Redis struct {
	client *redis.Client
}

// NewRedis constructs a Redis-backed challenge store. Client lifecycle is
// managed by the caller.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (s *Redis) Put(ctx context.Context, sessionID string, ch verification.Challenge) error {
	raw, err := json.Marshal(ch)
	if err != nil {
		return fmt.Errorf("marshal challenge: %w", err)
	}
	return s.client.Set(ctx, challengeKeyPrefix+sessionID, raw, 0).Err()
}

func (s *Redis) Get(ctx context.Context, sessionID string) (verification.Challenge, error) {
	raw, err := s.client.Get(ctx, challengeKeyPrefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return verification.Challenge{}, fmt.Errorf("challenge for session %s: %w", sessionID, sentinel.ErrNotFound)
	}
	if err != nil {
		return verification.Challenge{}, fmt.Errorf("get challenge: %w", err)
	}

	var ch verification.Challenge
	if err := json.Unmarshal(raw, &ch); err != nil {
		return verification.Challenge{}, fmt.Errorf("unmarshal challenge: %w", err)
	}
	return ch, nil
}

func (s *Redis) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, challengeKeyPrefix+sessionID).Err()
}
