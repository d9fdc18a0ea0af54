package product

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/hivehoney/aisla-sub000/pkg/logger"
	"github.com/hivehoney/aisla-sub000/pkg/metrics"
	pkgredis "github.com/hivehoney/aisla-sub000/pkg/redis"
)

// Cache is the key/value backend for paged results. Misses are reported with an
// error matched by pkgredis.IsMiss.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	SearchKey(fingerprint string) string
}

// resultCache stores paged envelopes. Failures are logged and never fail a search.
type resultCache struct {
	backend Cache
	ttl     time.Duration
	logg    *logger.Logger
	metrics *metrics.SearchMetrics
}

func (c *resultCache) enabled() bool {
	return c != nil && c.backend != nil && c.ttl > 0
}

// cacheFingerprint is the normalized request identity. Day is part of it because the
// expiration window and the expiring-soon flag move with the calendar.
type cacheFingerprint struct {
	Query            string `json:"q,omitempty"`
	Barcode          string `json:"b,omitempty"`
	CategoryID       string `json:"c,omitempty"`
	StoreID          string `json:"s,omitempty"`
	InventoryFilter  bool   `json:"if,omitempty"`
	MinPrice         *int64 `json:"min,omitempty"`
	MaxPrice         *int64 `json:"max,omitempty"`
	HasDiscount      bool   `json:"d,omitempty"`
	ExpirationFilter string `json:"e,omitempty"`
	Page             int    `json:"p"`
	Limit            int    `json:"l"`
	Strategy         string `json:"o"`
	Day              string `json:"day"`
	Hour             int    `json:"h"`
}

func (c *resultCache) key(p Params, strategy string, now time.Time) string {
	fp := cacheFingerprint{
		Query:            p.Query,
		Barcode:          p.Barcode,
		InventoryFilter:  p.InventoryFilter,
		MinPrice:         p.MinPrice,
		MaxPrice:         p.MaxPrice,
		HasDiscount:      p.HasDiscount,
		ExpirationFilter: p.ExpirationFilter,
		Page:             p.Page,
		Limit:            p.Limit,
		Strategy:         strategy,
		Day:              now.Format(time.DateOnly),
		Hour:             now.Hour(),
	}
	if p.CategoryID != nil {
		fp.CategoryID = p.CategoryID.String()
	}
	if p.HasStore() {
		fp.StoreID = p.StoreID.String()
	}
	raw, _ := json.Marshal(fp)
	sum := sha256.Sum256(raw)
	return c.backend.SearchKey(hex.EncodeToString(sum[:]))
}

func (c *resultCache) load(ctx context.Context, key string) (*PagedEnvelope, bool) {
	raw, err := c.backend.Get(ctx, key)
	if err != nil {
		if pkgredis.IsMiss(err) {
			c.metrics.IncCache("miss")
			return nil, false
		}
		c.metrics.IncCache("error")
		c.logg.WarnErr(c.logg.WithField(ctx, "cache_key", key), "products.search.cache_read_failed", err)
		return nil, false
	}

	var env PagedEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		c.metrics.IncCache("error")
		c.logg.WarnErr(c.logg.WithField(ctx, "cache_key", key), "products.search.cache_decode_failed", err)
		return nil, false
	}
	c.metrics.IncCache("hit")
	return &env, true
}

func (c *resultCache) store(ctx context.Context, key string, env *PagedEnvelope) {
	raw, err := json.Marshal(env)
	if err != nil {
		c.logg.WarnErr(ctx, "products.search.cache_encode_failed", err)
		return
	}
	if err := c.backend.Set(ctx, key, raw, c.ttl); err != nil {
		c.logg.WarnErr(c.logg.WithField(ctx, "cache_key", key), "products.search.cache_write_failed", err)
	}
}
