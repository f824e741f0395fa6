// Package payments implements the outbound payment provider client and the
// callback signature scheme. The provider is a NOWPayments-compatible HTTP
// API: payments are created with an x-api-key header and settle
// asynchronously through signed IPN callbacks.
package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"prizedraw/domain/apperrors"
	"prizedraw/domain/interfaces"
)

// Config carries the provider credentials and endpoint
type Config struct {
	BaseURL   string
	APIKey    string
	IPNSecret string
}

// Client talks to the payment provider API
type Client struct {
	cfg    Config
	client *http.Client
}

// NewClient creates a new payment provider client
func NewClient(cfg Config) *Client {
	return &Client{
		cfg: cfg,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type createPaymentRequest struct {
	PriceAmount      decimal.Decimal `json:"price_amount"`
	PriceCurrency    string          `json:"price_currency"`
	PayCurrency      string          `json:"pay_currency"`
	OrderID          string          `json:"order_id"`
	OrderDescription string          `json:"order_description,omitempty"`
	IPNCallbackURL   string          `json:"ipn_callback_url"`
}

type createPaymentResponse struct {
	PaymentID   json.Number     `json:"payment_id"`
	PayAddress  string          `json:"pay_address"`
	PayAmount   decimal.Decimal `json:"pay_amount"`
	PayCurrency string          `json:"pay_currency"`
	Message     string          `json:"message"`
}

// CreatePayment registers a deposit intent with the provider
func (c *Client) CreatePayment(ctx context.Context, req interfaces.CreatePaymentRequest) (*interfaces.CreatePaymentResponse, error) {
	body, err := json.Marshal(createPaymentRequest{
		PriceAmount:      req.Amount,
		PriceCurrency:    req.PriceCurrency,
		PayCurrency:      req.PayCurrency,
		OrderID:          req.OrderID,
		OrderDescription: req.Description,
		IPNCallbackURL:   req.CallbackURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payment request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/v1/payment", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build payment request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.cfg.APIKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, apperrors.Upstream("payment provider unreachable", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read provider response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.WithFields(log.Fields{
			"status":  resp.StatusCode,
			"orderID": req.OrderID,
		}).Warn("Payment provider rejected create payment")
		return nil, apperrors.Upstream("payment provider rejected the payment",
			fmt.Errorf("provider status %d: %s", resp.StatusCode, truncate(respBody, 256)))
	}

	var payment createPaymentResponse
	if err := json.Unmarshal(respBody, &payment); err != nil {
		return nil, apperrors.Upstream("malformed provider response", err)
	}
	if payment.PaymentID.String() == "" || payment.PayAddress == "" {
		return nil, apperrors.Upstream("incomplete provider response",
			fmt.Errorf("missing payment_id or pay_address"))
	}

	return &interfaces.CreatePaymentResponse{
		PaymentID:   payment.PaymentID.String(),
		PayAddress:  payment.PayAddress,
		PayAmount:   payment.PayAmount,
		PayCurrency: payment.PayCurrency,
	}, nil
}

// VerifySignature checks a callback signature over the exact raw payload bytes
func (c *Client) VerifySignature(rawBody []byte, signature string) bool {
	return VerifySignature(c.cfg.IPNSecret, rawBody, signature)
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
