package paymentqueue

import (
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/shopfox/ShopFox/app/repository"
	"github.com/shopfox/ShopFox/internal/pkg/cache"
)

const (
	statsCacheKey = "payment_queue:stats"
	statsCacheTTL = 30 * time.Second
)

// Stats is a point-in-time snapshot of the queue and the dead letter store.
type Stats struct {
	Queue      map[string]int64 `json:"queue"`
	DeadLetter map[string]int64 `json:"dead_letter"`
	CapturedAt time.Time        `json:"captured_at"`
}

// ComputeStats reads fresh counts from the store.
func ComputeStats(queue repository.PaymentQueueRepository, dlq repository.DeadLetterRepository) (*Stats, error) {
	queueCounts, err := queue.CountByStatus()
	if err != nil {
		return nil, err
	}
	dlqCounts, err := dlq.CountByStatus()
	if err != nil {
		return nil, err
	}
	return &Stats{
		Queue:      queueCounts,
		DeadLetter: dlqCounts,
		CapturedAt: time.Now(),
	}, nil
}

// CachedStats returns the snapshot from Redis when it is still fresh and
// recomputes it otherwise. The status endpoint is read often enough that
// hammering COUNT queries per request is not worth it.
func CachedStats(queue repository.PaymentQueueRepository, dlq repository.DeadLetterRepository) (*Stats, error) {
	if raw, err := cache.Get(statsCacheKey); err == nil {
		var stats Stats
		if uerr := json.Unmarshal([]byte(raw), &stats); uerr == nil {
			return &stats, nil
		}
	}

	stats, err := ComputeStats(queue, dlq)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(stats); err == nil {
		if cerr := cache.Set(statsCacheKey, raw, statsCacheTTL); cerr != nil {
			log.Warnf("[PaymentQueue] Failed to cache stats: %v", cerr)
		}
	}
	return stats, nil
}
