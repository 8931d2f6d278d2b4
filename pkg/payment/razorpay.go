package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/razorpay/razorpay-go"
)

type RazorpayProvider struct {
	client        *razorpay.Client
	webhookSecret string
}

func NewRazorpayProvider(keyID, keySecret, webhookSecret string) *RazorpayProvider {
	return &RazorpayProvider{
		client:        razorpay.NewClient(keyID, keySecret),
		webhookSecret: webhookSecret,
	}
}

func (r *RazorpayProvider) CreateIntent(ctx context.Context, request *IntentRequest) (*IntentResponse, error) {
	notes := map[string]interface{}{
		"booking_id": request.BookingID,
	}
	for key, value := range request.Metadata {
		notes[key] = value
	}

	data := map[string]interface{}{
		"amount":   int64(request.Amount * 100), // Amount in smallest currency unit
		"currency": strings.ToUpper(request.Currency),
		"receipt":  request.BookingID,
		"notes":    notes,
	}

	order, err := r.client.Order.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create razorpay order: %w", err)
	}

	orderID, _ := order["id"].(string)
	status, _ := order["status"].(string)

	return &IntentResponse{
		IntentID: orderID,
		// Razorpay checkouts use the order ID directly; there is no
		// separate client secret.
		ClientSecret: orderID,
		Status:       status,
		Amount:       request.Amount,
		Currency:     strings.ToUpper(request.Currency),
		CreatedAt:    time.Now().Unix(),
	}, nil
}

func (r *RazorpayProvider) RefundPayment(ctx context.Context, request *RefundRequest) (*RefundResponse, error) {
	data := map[string]interface{}{}
	if request.Amount > 0 {
		data["amount"] = int64(request.Amount * 100)
	}
	if request.Reason != "" {
		data["notes"] = map[string]interface{}{"reason": request.Reason}
	}

	refund, err := r.client.Payment.Refund(request.IntentID, int(request.Amount*100), data, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create razorpay refund: %w", err)
	}

	refundID, _ := refund["id"].(string)
	status, _ := refund["status"].(string)
	currency, _ := refund["currency"].(string)

	return &RefundResponse{
		RefundID:  refundID,
		Status:    status,
		Amount:    request.Amount,
		Currency:  currency,
		CreatedAt: time.Now().Unix(),
	}, nil
}

func (r *RazorpayProvider) ValidateWebhook(ctx context.Context, payload []byte, signature string) (*WebhookEvent, error) {
	mac := hmac.New(sha256.New, []byte(r.webhookSecret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return nil, fmt.Errorf("invalid webhook signature")
	}

	var event struct {
		Event     string                 `json:"event"`
		CreatedAt int64                  `json:"created_at"`
		Payload   map[string]interface{} `json:"payload"`
	}
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal webhook payload: %w", err)
	}

	webhookEvent := &WebhookEvent{
		EventType: event.Event,
		Succeeded: event.Event == "payment.captured",
		Data:      event.Payload,
		CreatedAt: event.CreatedAt,
	}

	if payment, ok := event.Payload["payment"].(map[string]interface{}); ok {
		if entity, ok := payment["entity"].(map[string]interface{}); ok {
			if orderID, ok := entity["order_id"].(string); ok {
				webhookEvent.IntentID = orderID
			}
			if notes, ok := entity["notes"].(map[string]interface{}); ok {
				if bookingID, ok := notes["booking_id"].(string); ok {
					webhookEvent.BookingID = bookingID
				}
			}
		}
	}

	return webhookEvent, nil
}
