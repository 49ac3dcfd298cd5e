package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"addressfill_backend/platform/logger"
)

// fetchTimeout bounds a collapsed fetch that outlives its initiating caller.
const fetchTimeout = 15 * time.Second

// Cache is a read-through cache in front of the lookup transport.
// Identical concurrent fetches are collapsed into one upstream call; Redis
// failures degrade to a direct fetch. A nil Redis client disables caching
// but keeps request collapsing.
type Cache struct {
	next Service
	rdb  *redis.Client
	ttl  time.Duration
	sf   singleflight.Group
	log  *logger.Logger
}

// NewCache wraps the given transport.
func NewCache(next Service, rdb *redis.Client, ttl time.Duration, log *logger.Logger) *Cache {
	return &Cache{
		next: next,
		rdb:  rdb,
		ttl:  ttl,
		log:  log,
	}
}

// Lookup serves from Redis when possible and otherwise fetches upstream.
// The fetch itself runs detached from the caller's context so that a
// cancelled initiator does not fail other callers collapsed onto the same
// flight; the caller still unblocks immediately on cancellation.
func (c *Cache) Lookup(ctx context.Context, postcode, houseNumber string) (map[string]string, error) {
	key := "lookup:" + postcode + "|" + houseNumber

	if c.rdb != nil {
		raw, err := c.rdb.Get(ctx, key).Result()
		switch {
		case err == nil:
			var fields map[string]string
			if jerr := json.Unmarshal([]byte(raw), &fields); jerr == nil {
				return fields, nil
			}
			c.log.Debug("lookup cache entry unreadable, refetching", "key", key)
		case errors.Is(err, context.Canceled):
			return nil, err
		case !errors.Is(err, redis.Nil):
			c.log.Debug("lookup cache read failed", "error", err)
		}
	}

	ch := c.sf.DoChan(key, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fetchTimeout)
		defer cancel()

		fields, err := c.next.Lookup(fetchCtx, postcode, houseNumber)
		if err != nil {
			return nil, err
		}

		if c.rdb != nil {
			if raw, merr := json.Marshal(fields); merr == nil {
				if serr := c.rdb.Set(fetchCtx, key, raw, c.ttl).Err(); serr != nil {
					c.log.Debug("lookup cache write failed", "error", serr)
				}
			}
		}
		return fields, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(map[string]string), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
