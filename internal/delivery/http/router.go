package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rhoulihan/wavemax-payment-service/internal/delivery/http/handlers"
)

// RegisterRoutes wires all HTTP routes.
func RegisterRoutes(app *fiber.App, payment *handlers.PaymentHandler, webhook *handlers.WebhookHandler, pool *handlers.PoolHandler) {
	api := app.Group("/api/v1")

	api.Post("/payments/tokens", payment.CreateToken)
	api.Get("/payments/tokens/:token", payment.GetStatus)
	api.Post("/payments/tokens/:token/cancel", payment.CancelToken)

	api.Post("/webhooks/provider", webhook.Handle)

	api.Get("/pool/status", pool.Status)

	// The provider redirects the customer's browser here after the hosted
	// form submits; it may also POST the result server-side.
	app.All("/payment-callback/:slot", payment.FormCallback)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
}
