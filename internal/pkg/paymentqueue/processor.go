package paymentqueue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/shopfox/ShopFox/app/models"
	"github.com/shopfox/ShopFox/app/repository"
	"github.com/shopfox/ShopFox/internal/pkg/cache"
	"github.com/shopfox/ShopFox/internal/pkg/payments"
)

const (
	// BatchSize limits how many ready events one processing pass claims.
	BatchSize = 100

	providerFetchTimeout = 15 * time.Second

	// deadLetterInsertFailuresKey counts the double-failure case: processing
	// exhausted AND the dead letter insert failed. Operators alert on it.
	deadLetterInsertFailuresKey = "payment_queue:dead_letter_insert_failures"
)

// Mailer sends the buyer-facing confirmation for an approved order.
type Mailer interface {
	SendOrderConfirmationEmail(order *models.Order) error
}

// Counter increments a named alert counter in shared storage.
type Counter interface {
	Incr(key string) (int64, error)
}

// cacheCounter backs alert counters with the shared redis cache.
type cacheCounter struct{}

func (cacheCounter) Incr(key string) (int64, error) {
	return cache.Incr(key)
}

// Processor drives queued payment events to completion: it resolves the
// authoritative payment status, applies the order transition idempotently,
// runs post-approval side effects and handles retry/dead-letter bookkeeping.
type Processor struct {
	queue    repository.PaymentQueueRepository
	dlq      repository.DeadLetterRepository
	orders   repository.OrderRepository
	provider payments.Client
	mailer   Mailer
	alerts   Counter
}

// NewProcessor creates a processor with explicitly injected collaborators.
func NewProcessor(
	queue repository.PaymentQueueRepository,
	dlq repository.DeadLetterRepository,
	orders repository.OrderRepository,
	provider payments.Client,
	mailer Mailer,
	alerts Counter,
) *Processor {
	return &Processor{
		queue:    queue,
		dlq:      dlq,
		orders:   orders,
		provider: provider,
		mailer:   mailer,
		alerts:   alerts,
	}
}

// ProcessPendingEvents runs one batch pass: it selects up to BatchSize ready
// events (pending or failed, due for retry) ordered by retry count then
// arrival, and processes them sequentially. Sequential processing avoids
// concurrent writers racing on the same order row. Returns how many events
// succeeded and how many failed; a single bad event never aborts the batch.
func (p *Processor) ProcessPendingEvents() (processed, failed int, err error) {
	events, err := p.queue.GetReady(BatchSize)
	if err != nil {
		return 0, 0, fmt.Errorf("select ready events: %w", err)
	}
	if len(events) == 0 {
		return 0, 0, nil
	}

	log.Infof("[PaymentQueue] Processing %d ready events", len(events))
	for i := range events {
		if perr := p.ProcessEvent(&events[i]); perr != nil {
			failed++
			log.Errorf("[PaymentQueue] Event %d (payment %s) failed: %v", events[i].ID, events[i].PaymentID, perr)
		} else {
			processed++
		}
	}
	log.Infof("[PaymentQueue] Batch done: %d processed, %d failed", processed, failed)
	return processed, failed, nil
}

// ProcessEvent runs the full state machine for a single event. Any error
// raised before completion is caught here: the retry counter is bumped and
// the event is either rescheduled with backoff or moved to the dead letter
// store once the budget is exhausted.
func (p *Processor) ProcessEvent(event *models.PaymentQueueEvent) error {
	event.MarkAsProcessing()
	if err := p.queue.Update(event); err != nil {
		return p.handleFailure(event, fmt.Errorf("claim event: %w", err))
	}

	if err := p.applyEvent(event); err != nil {
		return p.handleFailure(event, err)
	}

	event.MarkAsCompleted()
	if err := p.queue.Update(event); err != nil {
		return p.handleFailure(event, fmt.Errorf("complete event: %w", err))
	}
	return nil
}

// applyEvent resolves the payment facts and applies the status transition.
func (p *Processor) applyEvent(event *models.PaymentQueueEvent) error {
	payment, ok := payments.PaymentFromPayload([]byte(event.Payload))
	if !ok {
		ctx, cancel := context.WithTimeout(context.Background(), providerFetchTimeout)
		defer cancel()

		fetched, err := p.provider.GetPayment(ctx, event.PaymentID)
		if err != nil {
			return fmt.Errorf("resolve payment %s: %w", event.PaymentID, err)
		}
		payment = fetched
	}

	if payment.ExternalReference == "" {
		return fmt.Errorf("payment %s carries no external reference", event.PaymentID)
	}
	orderUUID := OrderIDFromReference(payment.ExternalReference)
	if orderUUID == "" {
		return fmt.Errorf("external reference %q yields an empty order id", payment.ExternalReference)
	}

	target := MapPaymentStatus(payment.Status)

	order, err := p.orders.GetOrderByUUID(orderUUID)
	if err != nil {
		return fmt.Errorf("load order %s: %w", orderUUID, err)
	}

	orderCurrent := order.Status == target && order.PaymentID == event.PaymentID

	latest, err := p.orders.GetPaymentLogByPaymentID(event.PaymentID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("check payment log for %s: %w", event.PaymentID, err)
	}
	if latest != nil && latest.Status == payment.Status && orderCurrent {
		// Replayed notification, everything already applied.
		log.Debugf("[PaymentQueue] Payment %s already applied to order %s, nothing to do", event.PaymentID, orderUUID)
		return nil
	}

	logged, err := p.orders.HasPaymentLog(event.PaymentID, payment.Status)
	if err != nil {
		return fmt.Errorf("check payment log for %s: %w", event.PaymentID, err)
	}
	if !logged {
		entry := &models.PaymentLog{
			PaymentID:    event.PaymentID,
			OrderUUID:    orderUUID,
			Status:       payment.Status,
			StatusDetail: payment.StatusDetail,
		}
		if err := p.orders.SavePaymentLog(entry); err != nil {
			return fmt.Errorf("save payment log for %s: %w", event.PaymentID, err)
		}
	}

	if !orderCurrent {
		if models.IsTerminalOrderStatus(order.Status) && !models.IsTerminalOrderStatus(target) {
			// A stale non-terminal status redelivered after a terminal one
			// must not regress the order.
			log.Warnf("[PaymentQueue] Ignoring stale status %s for order %s (already %s)", target, orderUUID, order.Status)
			return nil
		}

		if err := p.orders.UpdateOrderStatus(orderUUID, target, event.PaymentID); err != nil {
			return fmt.Errorf("update order %s: %w", orderUUID, err)
		}
		order.Status = target
		order.PaymentID = event.PaymentID

		if target == models.OrderStatusApproved {
			p.runApprovalSideEffects(order)
		}
	}

	return nil
}

// runApprovalSideEffects performs the post-approval work: release the stock
// reservation, clear the originating cart and send the confirmation email.
// Each is its own failure boundary. The payment is already durably recorded
// as approved, so a side effect failure is logged and swallowed, never used
// to retry the event.
func (p *Processor) runApprovalSideEffects(order *models.Order) {
	if err := p.orders.DecrementStockForOrder(order.UUID); err != nil {
		log.Errorf("[PaymentQueue] Stock decrement failed for order %s: %v", order.UUID, err)
	}

	cartID, err := p.orders.GetCartIDByOrderUUID(order.UUID)
	if err != nil {
		log.Errorf("[PaymentQueue] Cart lookup failed for order %s: %v", order.UUID, err)
	} else if cartID != 0 {
		if err := p.orders.ClearCart(cartID); err != nil {
			log.Errorf("[PaymentQueue] Cart clear failed for cart %d: %v", cartID, err)
		} else if err := p.orders.UpdateCartTotal(cartID, 0); err != nil {
			log.Errorf("[PaymentQueue] Cart total reset failed for cart %d: %v", cartID, err)
		}
	}

	if err := p.mailer.SendOrderConfirmationEmail(order); err != nil {
		log.Errorf("[PaymentQueue] Confirmation email failed for order %s: %v", order.UUID, err)
	}
}

// handleFailure records a failed attempt: reschedule with backoff while the
// retry budget lasts, otherwise transition to the dead letter store. The
// original cause is always returned to the caller.
func (p *Processor) handleFailure(event *models.PaymentQueueEvent, cause error) error {
	event.MarkAsFailed(cause.Error())

	if event.RetryCount >= event.MaxRetries {
		p.moveToDeadLetter(event, cause)
		if !event.DeadLettered {
			// The dead letter insert failed: keep the event on the backoff
			// schedule so a later pass can try the transition again.
			event.NextRetryAt = time.Now().Add(retryDelay(event.RetryCount))
		}
	} else {
		event.NextRetryAt = time.Now().Add(retryDelay(event.RetryCount))
		log.Warnf("[PaymentQueue] Event %d rescheduled (attempt %d/%d), next try at %s",
			event.ID, event.RetryCount, event.MaxRetries, event.NextRetryAt.Format(time.RFC3339))
	}

	if err := p.queue.Update(event); err != nil {
		log.Errorf("[PaymentQueue] Failed to persist failure state of event %d: %v", event.ID, err)
	}
	return cause
}

// moveToDeadLetter records the exhausted event in the dead letter store. The
// source event stays in the queue as a failed historical record. If the
// insert itself fails the event is left eligible for another pass and a
// dedicated alert counter is bumped so operators are not blind to the double
// failure.
func (p *Processor) moveToDeadLetter(event *models.PaymentQueueEvent, cause error) {
	entry := &models.DeadLetterEvent{
		PaymentID:     event.PaymentID,
		EventType:     event.EventType,
		Payload:       event.Payload,
		TotalAttempts: event.RetryCount,
		FinalError:    cause.Error(),
		Status:        models.DeadLetterStatusPending,
	}

	created, err := p.dlq.CreateIfNotExists(entry)
	if err != nil {
		log.Errorf("[PaymentQueue] Dead letter insert failed for event %d: %v", event.ID, err)
		if _, cerr := p.alerts.Incr(deadLetterInsertFailuresKey); cerr != nil {
			log.Errorf("[PaymentQueue] Dead letter alert counter unavailable: %v", cerr)
		}
		return
	}

	event.DeadLettered = true
	if created {
		log.Warnf("[PaymentQueue] Event %d (payment %s) moved to dead letter after %d attempts",
			event.ID, event.PaymentID, event.RetryCount)
	}
}

// OrderIDFromReference extracts the order identifier from a payment's
// external reference. The reference is either the bare order id or a
// composite "<arbitrary>|<order_id>"; the order id is always the last
// pipe-delimited segment.
func OrderIDFromReference(reference string) string {
	parts := strings.Split(reference, "|")
	return strings.TrimSpace(parts[len(parts)-1])
}

// MapPaymentStatus translates a provider payment status into the order
// status it drives. Unknown statuses map to pending: the pipeline never
// silently approves on a value it does not recognize.
func MapPaymentStatus(paymentStatus string) string {
	switch paymentStatus {
	case payments.PaymentStatusApproved:
		return models.OrderStatusApproved
	case payments.PaymentStatusPending:
		return models.OrderStatusPending
	case payments.PaymentStatusRejected, payments.PaymentStatusCancelled:
		return models.OrderStatusRejected
	default:
		return models.OrderStatusPending
	}
}
