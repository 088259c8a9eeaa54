package inventory

import (
	"context"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-circulation/circulation/internal/model"
)

var json = jsoniter.ConfigFastest

// StatusCache holds the read-only availability projection served to dashboards.
// Misses and cache errors always fall back to the store. Set never replaces an entry
// written for the same or a later item version.
type StatusCache interface {
	Get(ctx context.Context, itemID string) (model.ItemStatus, bool)
	Set(ctx context.Context, status model.ItemStatus, version int64)
	Invalidate(ctx context.Context, itemIDs ...string)
}

type cacheEntry struct {
	Version int64            `json:"version"`
	Status  model.ItemStatus `json:"status"`
}

// supersedes reports whether a status at version may replace the cached payload cur.
func supersedes(cur []byte, version int64) bool {
	var e cacheEntry
	if err := json.Unmarshal(cur, &e); err != nil {
		return true
	}
	return version > e.Version
}

type Redis struct {
	Addr     string        `envconfig:"REDIS_ADDR"`
	Password string        `envconfig:"REDIS_PASSWORD"`
	DB       int           `envconfig:"REDIS_DB" default:"0"`
	TTL      time.Duration `envconfig:"REDIS_STATUS_TTL" default:"30s"`
}

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedisCache returns a no-op cache when client is nil.
func NewRedisCache(client *redis.Client, ttl time.Duration, log *zap.Logger) StatusCache {
	if client == nil {
		return noCache{}
	}
	return &redisCache{client: client, ttl: ttl, log: log.Named("cache")}
}

func statusKey(itemID string) string {
	return "circulation:item-status:" + itemID
}

func (c *redisCache) Get(ctx context.Context, itemID string) (model.ItemStatus, bool) {
	data, err := c.client.Get(ctx, statusKey(itemID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("cache get", zap.String("item_id", itemID), zap.Error(err))
		}
		return model.ItemStatus{}, false
	}
	var e cacheEntry
	if err := json.Unmarshal(data, &e); err != nil {
		return model.ItemStatus{}, false
	}
	return e.Status, true
}

// Set writes under WATCH so a reader holding an old item version cannot overwrite the
// status stored after a newer commit.
func (c *redisCache) Set(ctx context.Context, st model.ItemStatus, version int64) {
	data, err := json.Marshal(cacheEntry{Version: version, Status: st})
	if err != nil {
		return
	}
	key := statusKey(st.ItemID)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, key).Bytes()
		switch {
		case err == redis.Nil:
		case err != nil:
			return err
		case !supersedes(cur, version):
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, c.ttl)
			return nil
		})
		return err
	}, key)
	switch {
	case err == nil:
	case err == redis.TxFailedErr:
		// a concurrent writer got there first and passed the same check
		c.log.Debug("cache set raced", zap.String("item_id", st.ItemID))
	default:
		c.log.Warn("cache set", zap.String("item_id", st.ItemID), zap.Error(err))
	}
}

func (c *redisCache) Invalidate(ctx context.Context, itemIDs ...string) {
	if len(itemIDs) == 0 {
		return
	}
	keys := make([]string, 0, len(itemIDs))
	for _, id := range itemIDs {
		keys = append(keys, statusKey(id))
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn("cache invalidate", zap.Strings("keys", keys), zap.Error(err))
	}
}

type noCache struct{}

func (noCache) Get(context.Context, string) (model.ItemStatus, bool) { return model.ItemStatus{}, false }
func (noCache) Set(context.Context, model.ItemStatus, int64)         {}
func (noCache) Invalidate(context.Context, ...string)                {}
