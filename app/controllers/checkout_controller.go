package controllers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/shopfox/ShopFox/app/repository"
	"github.com/shopfox/ShopFox/internal/pkg/env"
	"github.com/shopfox/ShopFox/internal/pkg/payments"
)

// CheckoutRequest turns a cart into an order and a provider checkout
// preference.
type CheckoutRequest struct {
	CartID     uint   `json:"cart_id" validate:"required"`
	BuyerEmail string `json:"buyer_email" validate:"required,email"`
}

// HandleCheckout creates a pending order from a cart and registers a payment
// preference with the provider. The composite external reference
// "<buyer_email>|<order_uuid>" is echoed back later by payment webhooks and
// lets the queue processor find the order.
func HandleCheckout(c *fiber.Ctx) error {
	var req CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload"})
	}

	orders := repository.GetGlobalRepositories().Order

	cart, err := orders.GetCartByID(req.CartID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "cart_not_found"})
		}
		log.Errorf("[Checkout] Cart lookup failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "cart_lookup_failed"})
	}
	if len(cart.Items) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "cart_empty"})
	}

	order, err := orders.CreateOrderFromCart(cart, req.BuyerEmail)
	if err != nil {
		if errors.Is(err, repository.ErrInsufficientStock) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "insufficient_stock"})
		}
		log.Errorf("[Checkout] Order creation failed for cart %d: %v", cart.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "order_creation_failed"})
	}

	prefReq := payments.PreferenceRequest{
		ExternalReference: fmt.Sprintf("%s|%s", order.BuyerEmail, order.UUID),
		NotificationURL:   env.GetEnv("PAYMENT_NOTIFICATION_URL", ""),
		PayerEmail:        order.BuyerEmail,
	}
	for _, item := range order.Items {
		prefReq.Items = append(prefReq.Items, payments.PreferenceItem{
			Title:     fmt.Sprintf("Order %s item %d", order.UUID, item.ProductID),
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	pref, err := payments.NewClientFromEnv().CreatePreference(ctx, prefReq)
	if err != nil {
		log.Errorf("[Checkout] Preference creation failed for order %s: %v", order.UUID, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "preference_creation_failed"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"order_uuid":    order.UUID,
		"total":         order.Total,
		"preference_id": pref.ID,
		"init_point":    pref.InitPoint,
	})
}
