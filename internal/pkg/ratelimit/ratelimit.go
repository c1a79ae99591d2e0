package ratelimit

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/shopfox/ShopFox/internal/pkg/cache"
)

// Allow checks a fixed-window counter in Redis for the given key. The counter
// lives outside the process so the limit survives restarts and is shared
// across instances. Redis being unreachable fails open: a throttling outage
// must not drop provider webhooks.
func Allow(key string, limit int, window time.Duration) bool {
	bucket := fmt.Sprintf("ratelimit:%s:%d", key, time.Now().Unix()/int64(window.Seconds()))

	count, err := cache.Incr(bucket)
	if err != nil {
		log.Warnf("[RateLimit] Counter unavailable for %s: %v", key, err)
		return true
	}
	if count == 1 {
		if err := cache.Expire(bucket, window); err != nil {
			log.Warnf("[RateLimit] Failed to set TTL on %s: %v", bucket, err)
		}
	}
	return count <= int64(limit)
}
