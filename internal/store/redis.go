package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jeeyuni/clone-junglebook/internal/model"
)

// Redis keeps each horizon's reservations in one hash, keyed by start offset.
// HSetNX gives the atomic insert-if-absent the contract requires: the server
// sets the field only when it does not exist, so concurrent commits for the
// same slot see exactly one winner.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis wraps an existing client. Horizon hashes expire after ttl so stale
// days do not accumulate; ttl must comfortably outlive one horizon.
func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = 48 * time.Hour
	}
	return &Redis{client: client, ttl: ttl}
}

func horizonKey(date string) string {
	return "reservations:" + date
}

func (r *Redis) TryInsert(ctx context.Context, res *model.Reservation) (bool, error) {
	data, err := json.Marshal(res)
	if err != nil {
		return false, fmt.Errorf("marshal reservation: %w", err)
	}
	key := horizonKey(res.Horizon.Format("2006-01-02"))
	inserted, err := r.client.HSetNX(ctx, key, strconv.Itoa(res.Start), data).Result()
	if err != nil {
		return false, fmt.Errorf("hsetnx reservation: %w", err)
	}
	if inserted {
		_ = r.client.Expire(ctx, key, r.ttl).Err()
	}
	return inserted, nil
}

func (r *Redis) Get(ctx context.Context, key model.SlotKey) (*model.Reservation, error) {
	val, err := r.client.HGet(ctx, horizonKey(key.HorizonDate), strconv.Itoa(key.Start)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("hget reservation: %w", err)
	}
	var res model.Reservation
	if err := json.Unmarshal([]byte(val), &res); err != nil {
		return nil, fmt.Errorf("unmarshal reservation: %w", err)
	}
	return &res, nil
}

func (r *Redis) ListByHorizon(ctx context.Context, horizon time.Time) ([]model.Reservation, error) {
	fields, err := r.client.HGetAll(ctx, horizonKey(horizon.Format("2006-01-02"))).Result()
	if err != nil {
		return nil, fmt.Errorf("hgetall reservations: %w", err)
	}
	out := make([]model.Reservation, 0, len(fields))
	for _, val := range fields {
		var res model.Reservation
		if err := json.Unmarshal([]byte(val), &res); err != nil {
			return nil, fmt.Errorf("unmarshal reservation: %w", err)
		}
		out = append(out, res)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out, nil
}

func (r *Redis) Ping(ctx context.Context) error { return r.client.Ping(ctx).Err() }

func (r *Redis) Close() error { return r.client.Close() }
