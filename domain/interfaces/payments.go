package interfaces

import (
	"context"

	"github.com/shopspring/decimal"
)

// CreatePaymentRequest describes a deposit intent sent to the payment provider
type CreatePaymentRequest struct {
	Amount        decimal.Decimal
	OrderID       string
	CallbackURL   string
	Description   string
	PayCurrency   string
	PriceCurrency string
}

// CreatePaymentResponse is the provider's answer to a created payment
type CreatePaymentResponse struct {
	PaymentID   string
	PayAddress  string
	PayAmount   decimal.Decimal
	PayCurrency string
}

// PaymentProvider is the outbound payment gateway, consumed as a black box.
// Callbacks arrive asynchronously on the deposit webhook, signed with
// HMAC-SHA512 over the raw body.
type PaymentProvider interface {
	// CreatePayment registers a deposit intent with the provider
	CreatePayment(ctx context.Context, req CreatePaymentRequest) (*CreatePaymentResponse, error)

	// VerifySignature checks the callback signature over the exact raw
	// payload bytes using constant-time comparison
	VerifySignature(rawBody []byte, signature string) bool
}
