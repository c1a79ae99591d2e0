package controllers

import (
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/shopfox/ShopFox/app/models"
	"github.com/shopfox/ShopFox/internal/pkg/env"
	"github.com/shopfox/ShopFox/internal/pkg/paymentqueue"
	"github.com/shopfox/ShopFox/internal/pkg/payments"
	"github.com/shopfox/ShopFox/internal/pkg/ratelimit"
)

var validate = validator.New()

const (
	webhookRateLimit  = 60
	webhookRateWindow = time.Minute
)

// webhookPipeline carries the collaborators of the webhook endpoint so they
// can be swapped in tests.
type webhookPipeline struct {
	allow        func(key string, limit int, window time.Duration) bool
	allowOrigin  func(ip string) bool
	verify       func(signatureHeader, paymentID, secret string, now time.Time) error
	enqueue      func(paymentID, eventType string, payload []byte) (*models.PaymentQueueEvent, bool, error)
	processEvent func(event *models.PaymentQueueEvent) error
}

func defaultWebhookPipeline() *webhookPipeline {
	return &webhookPipeline{
		allow:       ratelimit.Allow,
		allowOrigin: payments.IsAllowedOrigin,
		verify:      payments.VerifyWebhookSignature,
		enqueue: func(paymentID, eventType string, payload []byte) (*models.PaymentQueueEvent, bool, error) {
			return paymentqueue.NewDefaultEnqueuer().Enqueue(paymentID, eventType, payload)
		},
		processEvent: func(event *models.PaymentQueueEvent) error {
			return paymentqueue.NewDefaultProcessor().ProcessEvent(event)
		},
	}
}

// HandlePaymentWebhook receives asynchronous payment notifications from the
// provider, authenticates them and converts them into durable queue events.
// The provider only ever sees HTTP-level outcomes; a 200 means "accepted and
// handled", including idempotent replays.
func HandlePaymentWebhook(c *fiber.Ctx) error {
	return defaultWebhookPipeline().handle(c)
}

func (p *webhookPipeline) handle(c *fiber.Ctx) error {
	ip := c.IP()

	if !p.allow("payments:webhook:"+ip, webhookRateLimit, webhookRateWindow) {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate_limited"})
	}

	if !p.allowOrigin(ip) {
		log.Warnf("[Webhook] Rejected notification from disallowed origin %s", ip)
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "origin_not_allowed"})
	}

	rawBody := append([]byte(nil), c.BodyRaw()...)

	var notif payments.WebhookNotification
	if err := json.Unmarshal(rawBody, &notif); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload"})
	}
	if err := validate.Struct(&notif); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload"})
	}

	paymentID := notif.PaymentID()
	secret := env.GetEnv("PAYMENT_WEBHOOK_SECRET", "")
	if err := p.verify(c.Get("x-signature"), paymentID, secret, time.Now()); err != nil {
		log.Warnf("[Webhook] Signature rejected for payment %s from %s: %v", paymentID, ip, err)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid_signature"})
	}

	// Only payment events are processed; everything else is acknowledged and
	// dropped so the provider stops redelivering.
	if notif.Type != payments.EventTypePayment {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "ignored": true})
	}

	event, created, err := p.enqueue(paymentID, notif.Type, rawBody)
	if err != nil {
		log.Errorf("[Webhook] Failed to enqueue payment %s: %v", paymentID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "enqueue_failed"})
	}

	// Best-effort immediate attempt. Failures stay on the retry schedule, the
	// provider still gets its 200.
	if event.Status == models.QueueStatusPending {
		if perr := p.processEvent(event); perr != nil {
			log.Warnf("[Webhook] Immediate processing of event %d deferred to retry: %v", event.ID, perr)
		}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "queued": true, "duplicate": !created})
}
