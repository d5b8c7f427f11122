package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/smane4123/PitchPulse/pkg/redis"
	"github.com/smane4123/PitchPulse/pkg/telemetry"
)

const (
	holdKeyPrefix = "hold:"

	releaseScriptName = "hold_release"
	swapScriptName    = "hold_swap"
)

// releaseScript deletes the hold only when it still carries the caller's token
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`

// swapScript replaces the hold token only when the caller still owns it,
// refreshing the TTL
const swapScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
	return 1
end
return 0
`

// RedisSlotHoldRepository implements SlotHoldRepository on Redis. A hold is
// a single key with the owning token as its value; TTL expiry releases
// abandoned holds without any sweeper.
type RedisSlotHoldRepository struct {
	client *redis.Client
}

var _ SlotHoldRepository = (*RedisSlotHoldRepository)(nil)

// NewRedisSlotHoldRepository creates a new RedisSlotHoldRepository
func NewRedisSlotHoldRepository(client *redis.Client) *RedisSlotHoldRepository {
	return &RedisSlotHoldRepository{client: client}
}

// LoadScripts pre-loads the Lua scripts into Redis
func (r *RedisSlotHoldRepository) LoadScripts(ctx context.Context) error {
	if _, err := r.client.LoadScript(ctx, releaseScriptName, releaseScript); err != nil {
		return err
	}
	if _, err := r.client.LoadScript(ctx, swapScriptName, swapScript); err != nil {
		return err
	}
	return nil
}

// Acquire places a hold on the slot
func (r *RedisSlotHoldRepository) Acquire(ctx context.Context, venueID string, start time.Time, token string, ttl time.Duration) (bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.redis.hold.acquire")
	defer span.End()

	key := holdKey(venueID, start)
	span.SetAttributes(attribute.String("hold_key", key))

	ok, err := r.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, fmt.Errorf("failed to acquire slot hold: %w", err)
	}

	span.SetAttributes(attribute.Bool("acquired", ok))
	span.SetStatus(codes.Ok, "")
	return ok, nil
}

// HeldBy returns the token holding the slot, or "" when unheld
func (r *RedisSlotHoldRepository) HeldBy(ctx context.Context, venueID string, start time.Time) (string, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.redis.hold.held_by")
	defer span.End()

	key := holdKey(venueID, start)
	span.SetAttributes(attribute.String("hold_key", key))

	token, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			span.SetStatus(codes.Ok, "")
			return "", nil
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", fmt.Errorf("failed to read slot hold: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return token, nil
}

// Swap atomically replaces oldToken with newToken, refreshing the TTL
func (r *RedisSlotHoldRepository) Swap(ctx context.Context, venueID string, start time.Time, oldToken, newToken string, ttl time.Duration) (bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.redis.hold.swap")
	defer span.End()

	key := holdKey(venueID, start)
	span.SetAttributes(attribute.String("hold_key", key))

	result, err := r.client.EvalWithFallback(ctx, swapScriptName, swapScript,
		[]string{key}, oldToken, newToken, ttl.Milliseconds()).Int()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, fmt.Errorf("failed to swap slot hold: %w", err)
	}

	span.SetAttributes(attribute.Bool("swapped", result == 1))
	span.SetStatus(codes.Ok, "")
	return result == 1, nil
}

// Release removes the hold only if it still carries the token. Releasing
// an expired or re-acquired hold is a no-op, never an error.
func (r *RedisSlotHoldRepository) Release(ctx context.Context, venueID string, start time.Time, token string) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.redis.hold.release")
	defer span.End()

	key := holdKey(venueID, start)
	span.SetAttributes(attribute.String("hold_key", key))

	if err := r.client.EvalWithFallback(ctx, releaseScriptName, releaseScript,
		[]string{key}, token).Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to release slot hold: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// holdKey builds the Redis key for a slot hold
func holdKey(venueID string, start time.Time) string {
	return holdKeyPrefix + venueID + ":" + start.UTC().Format(time.RFC3339)
}
