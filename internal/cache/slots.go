package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/mentorgrid/scheduling/internal/availability"
	"github.com/mentorgrid/scheduling/internal/timezone"
	"github.com/redis/go-redis/v9"
)

// SlotCache keeps computed slot lists in Redis for a short TTL. Invalidation
// bumps a per-mentor version counter instead of scanning for keys; stale
// entries simply expire.
type SlotCache struct {
	client *redis.Client
	logger *slog.Logger
	ttl    time.Duration
}

func NewSlotCache(client *redis.Client, logger *slog.Logger, ttl time.Duration) *SlotCache {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &SlotCache{client: client, logger: logger, ttl: ttl}
}

func (c *SlotCache) Get(ctx context.Context, mentorID string, date timezone.Date, sessionTypeID string) ([]availability.Slot, bool) {
	raw, err := c.client.Get(ctx, c.key(ctx, mentorID, date, sessionTypeID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("slot cache read failed", "err", err)
		}
		return nil, false
	}

	var slots []availability.Slot
	if err := json.Unmarshal(raw, &slots); err != nil {
		c.logger.Warn("slot cache payload corrupt", "err", err)
		return nil, false
	}
	return slots, true
}

func (c *SlotCache) Set(ctx context.Context, mentorID string, date timezone.Date, sessionTypeID string, slots []availability.Slot) {
	raw, err := json.Marshal(slots)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.key(ctx, mentorID, date, sessionTypeID), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("slot cache write failed", "err", err)
	}
}

func (c *SlotCache) Invalidate(ctx context.Context, mentorID string) {
	if err := c.client.Incr(ctx, versionKey(mentorID)).Err(); err != nil {
		c.logger.Warn("slot cache invalidate failed", "mentor_id", mentorID, "err", err)
	}
}

func (c *SlotCache) key(ctx context.Context, mentorID string, date timezone.Date, sessionTypeID string) string {
	ver, err := c.client.Get(ctx, versionKey(mentorID)).Int64()
	if err != nil && err != redis.Nil {
		ver = 0
	}
	return fmt.Sprintf("slots:%s:%d:%s:%s", mentorID, ver, date, sessionTypeID)
}

func versionKey(mentorID string) string {
	return "slots:ver:" + mentorID
}
