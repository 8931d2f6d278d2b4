package payment

import (
	"context"
)

// Provider abstracts the payment processor. The ledger never talks to payment
// rails directly; it records outcomes the provider has already confirmed.
type Provider interface {
	// CreateIntent registers the amount with the processor and returns the
	// client secret the passenger's client uses to complete the payment.
	CreateIntent(ctx context.Context, request *IntentRequest) (*IntentResponse, error)
	RefundPayment(ctx context.Context, request *RefundRequest) (*RefundResponse, error)
	ValidateWebhook(ctx context.Context, payload []byte, signature string) (*WebhookEvent, error)
}

type IntentRequest struct {
	BookingID string                 `json:"booking_id"`
	Amount    float64                `json:"amount"`
	Currency  string                 `json:"currency"`
	Metadata  map[string]interface{} `json:"metadata"`
}

type IntentResponse struct {
	IntentID     string  `json:"intent_id"`
	ClientSecret string  `json:"client_secret"`
	Status       string  `json:"status"`
	Amount       float64 `json:"amount"`
	Currency     string  `json:"currency"`
	CreatedAt    int64   `json:"created_at"`
}

type RefundRequest struct {
	IntentID string  `json:"intent_id"`
	Amount   float64 `json:"amount"`
	Reason   string  `json:"reason"`
}

type RefundResponse struct {
	RefundID  string  `json:"refund_id"`
	Status    string  `json:"status"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	CreatedAt int64   `json:"created_at"`
}

type WebhookEvent struct {
	EventID   string                 `json:"event_id"`
	EventType string                 `json:"event_type"`
	IntentID  string                 `json:"intent_id"`
	BookingID string                 `json:"booking_id"`
	Succeeded bool                   `json:"succeeded"`
	Data      map[string]interface{} `json:"data"`
	CreatedAt int64                  `json:"created_at"`
}
