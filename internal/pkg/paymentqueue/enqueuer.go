package paymentqueue

import (
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/shopfox/ShopFox/app/models"
	"github.com/shopfox/ShopFox/app/repository"
)

// Enqueuer converts verified webhook notifications into durable queue events.
type Enqueuer struct {
	queue repository.PaymentQueueRepository
}

// NewEnqueuer creates an enqueuer from an injected queue repository.
func NewEnqueuer(queue repository.PaymentQueueRepository) *Enqueuer {
	return &Enqueuer{queue: queue}
}

// Enqueue inserts a pending queue event for a notification. A duplicate
// (payment_id, event_type) is not an error: the existing event is returned
// with created=false, which makes enqueueing idempotent under at-least-once
// webhook delivery. Any other store error propagates so the webhook response
// signals failure and the provider redelivers.
func (e *Enqueuer) Enqueue(paymentID, eventType string, payload []byte) (*models.PaymentQueueEvent, bool, error) {
	event := &models.PaymentQueueEvent{
		PaymentID:   paymentID,
		EventType:   eventType,
		Payload:     string(payload),
		Status:      models.QueueStatusPending,
		RetryCount:  0,
		MaxRetries:  models.DefaultMaxRetries,
		NextRetryAt: time.Now(),
	}

	created, stored, err := e.queue.CreateIfNotExists(event)
	if err != nil {
		return nil, false, err
	}
	if !created {
		log.Infof("[PaymentQueue] Notification for payment %s (%s) already queued as event %d",
			paymentID, eventType, stored.ID)
	}
	return stored, created, nil
}
