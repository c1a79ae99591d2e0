package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/shopfox/ShopFox/app/controllers"
	"github.com/shopfox/ShopFox/internal/pkg/middleware"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api")
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	v1 := api.Group("/v1")

	// Public endpoints. The webhook endpoint carries its own Redis-backed
	// rate limiter so the window survives restarts.
	v1.Post("/payments/webhook", controllers.HandlePaymentWebhook)
	v1.Post("/checkout", controllers.HandleCheckout)

	// Operator endpoints behind the admin bearer token.
	queue := v1.Group("/queue", middleware.AdminTokenMiddleware())
	queue.Post("/process", controllers.HandleProcessQueue)
	queue.Post("/reconcile", controllers.HandleReconcile)
	queue.Get("/status", controllers.HandleQueueStatus)
	queue.Get("/dead-letter", controllers.HandleListDeadLetters)
	queue.Post("/dead-letter/:id/review", controllers.HandleReviewDeadLetter)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
