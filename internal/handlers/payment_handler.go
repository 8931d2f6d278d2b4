package handlers

import (
	"io"
	"net/http"

	"seatpool/internal/services"
	"seatpool/internal/utils"
	"seatpool/pkg/logger"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	paymentService services.PaymentService
	logger         *logger.Logger
}

func NewPaymentHandler(paymentService services.PaymentService, logger *logger.Logger) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		logger:         logger,
	}
}

// CreatePaymentIntent starts a checkout for a confirmed booking
func (h *PaymentHandler) CreatePaymentIntent(c *gin.Context) {
	passengerID, ok := currentUserID(c)
	if !ok {
		return
	}

	bookingID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	intent, err := h.paymentService.CreatePaymentIntent(c.Request.Context(), bookingID, passengerID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Payment intent created", gin.H{
		"intent_id":     intent.IntentID,
		"client_secret": intent.ClientSecret,
		"amount":        intent.Amount,
		"currency":      intent.Currency,
	})
}

// HandleWebhook receives payment processor callbacks. The processor, not
// the client, is the source of truth for payment success.
func (h *PaymentHandler) HandleWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	signature := c.GetHeader("Stripe-Signature")
	if signature == "" {
		signature = c.GetHeader("X-Razorpay-Signature")
	}

	if err := h.paymentService.HandleWebhook(c.Request.Context(), payload, signature); err != nil {
		h.logger.WithError(err).Error("webhook processing failed")
		c.Status(http.StatusBadRequest)
		return
	}

	c.Status(http.StatusOK)
}
