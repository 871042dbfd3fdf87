package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"barberbook-backend/utils"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// BusyCache keeps the busy intervals of a (staff, day) pair in Redis.
// Every write to the day bumps a version counter that is part of the data
// key, so a read that loaded rows before the write can only fill a key no
// one looks up any more. A nil *BusyCache, or one without a client, caches
// nothing.
type BusyCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// versionTTL outlives any data key, so a reset counter never revives one.
const versionTTL = 48 * time.Hour

func NewBusyCache(client *redis.Client, ttl time.Duration) *BusyCache {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &BusyCache{client: client, ttl: ttl, prefix: "busy"}
}

func (c *BusyCache) versionKey(staffID uuid.UUID, day time.Time) string {
	return fmt.Sprintf("%s:ver:%s:%s", c.prefix, staffID, day.Format(utils.DateLayout))
}

func (c *BusyCache) key(staffID uuid.UUID, day time.Time, version int64) string {
	return fmt.Sprintf("%s:%s:%s:v%d", c.prefix, staffID, day.Format(utils.DateLayout), version)
}

// Get returns the cached intervals and the version they were read at. On
// a miss the version is still valid and must be handed back to Set.
func (c *BusyCache) Get(ctx context.Context, staffID uuid.UUID, day time.Time) ([]Interval, int64, bool) {
	if c == nil || c.client == nil {
		return nil, 0, false
	}
	version, err := c.client.Get(ctx, c.versionKey(staffID, day)).Int64()
	if err != nil && err != redis.Nil {
		log.Printf("busy cache version failed: %v", err)
		return nil, -1, false
	}
	raw, err := c.client.Get(ctx, c.key(staffID, day, version)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("busy cache get failed: %v", err)
		}
		return nil, version, false
	}
	var busy []Interval
	if err := json.Unmarshal(raw, &busy); err != nil {
		return nil, version, false
	}
	loc := day.Location()
	for i := range busy {
		busy[i].Start = busy[i].Start.In(loc)
		busy[i].End = busy[i].End.In(loc)
	}
	return busy, version, true
}

// Set stores busy under the version Get reported. A negative version means
// the counter could not be read and nothing is stored.
func (c *BusyCache) Set(ctx context.Context, staffID uuid.UUID, day time.Time, version int64, busy []Interval) {
	if c == nil || c.client == nil || version < 0 {
		return
	}
	raw, err := json.Marshal(busy)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.key(staffID, day, version), raw, c.ttl).Err(); err != nil {
		log.Printf("busy cache set failed: %v", err)
	}
}

// Invalidate moves the day to a new version after a booking or status change.
func (c *BusyCache) Invalidate(ctx context.Context, staffID uuid.UUID, day time.Time) {
	if c == nil || c.client == nil {
		return
	}
	vk := c.versionKey(staffID, day)
	pipe := c.client.TxPipeline()
	pipe.Incr(ctx, vk)
	pipe.Expire(ctx, vk, versionTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("busy cache invalidate failed: %v", err)
	}
}
