package routes

import (
	"seatpool/internal/handlers"

	"github.com/gin-gonic/gin"
)

// SetupWebhookRoutes sets up the payment processor callback. No auth:
// the signature check inside the handler authenticates the caller.
func SetupWebhookRoutes(r *gin.RouterGroup, paymentHandler *handlers.PaymentHandler) {
	webhooks := r.Group("/webhooks")
	{
		webhooks.POST("/payments", paymentHandler.HandleWebhook)
	}
}
