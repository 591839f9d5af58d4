package fee

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/anyulbade/pg-gateway-facade/internal/model"
)

// RedisPolicyCache stores each partner's policy history as one JSON value.
// Policies are immutable, so the only staleness source is a newly registered
// version, which Resolver.Register invalidates.
type RedisPolicyCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisPolicyCache(client *redis.Client, ttl time.Duration) *RedisPolicyCache {
	return &RedisPolicyCache{client: client, ttl: ttl}
}

func policyKey(partnerID int64) string {
	return fmt.Sprintf("fee_policies:%d", partnerID)
}

func (c *RedisPolicyCache) Get(ctx context.Context, partnerID int64) ([]model.FeePolicy, bool, error) {
	raw, err := c.client.Get(ctx, policyKey(partnerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get cached policies: %w", err)
	}

	var policies []model.FeePolicy
	if err := json.Unmarshal(raw, &policies); err != nil {
		return nil, false, fmt.Errorf("decode cached policies: %w", err)
	}
	return policies, true, nil
}

func (c *RedisPolicyCache) Set(ctx context.Context, partnerID int64, policies []model.FeePolicy) error {
	if policies == nil {
		policies = []model.FeePolicy{}
	}
	raw, err := json.Marshal(policies)
	if err != nil {
		return fmt.Errorf("encode policies: %w", err)
	}
	return c.client.Set(ctx, policyKey(partnerID), raw, c.ttl).Err()
}

func (c *RedisPolicyCache) Invalidate(ctx context.Context, partnerID int64) error {
	return c.client.Del(ctx, policyKey(partnerID)).Err()
}
