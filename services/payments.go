package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	razorpay "github.com/razorpay/razorpay-go"
)

var ErrInvalidSignature = errors.New("invalid payment signature")

type OrderRequest struct {
	// Amount in the smallest currency unit (paise for INR).
	Amount   int64
	Currency string
	Receipt  string
}

type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
	KeyID    string `json:"keyId"`
}

type PaymentGateway interface {
	CreateOrder(ctx context.Context, req OrderRequest) (Order, error)
	VerifySignature(orderID, paymentID, signature string) error
}

type RazorpayGateway struct {
	client    *razorpay.Client
	keyID     string
	keySecret string
}

func NewRazorpayGateway(keyID, keySecret string) *RazorpayGateway {
	return &RazorpayGateway{
		client:    razorpay.NewClient(keyID, keySecret),
		keyID:     keyID,
		keySecret: keySecret,
	}
}

func (g *RazorpayGateway) CreateOrder(ctx context.Context, req OrderRequest) (Order, error) {
	if g.keyID == "" || g.keySecret == "" {
		return Order{}, fmt.Errorf("razorpay: %w", ErrNotConfigured)
	}
	if err := ctx.Err(); err != nil {
		return Order{}, err
	}
	if req.Currency == "" {
		req.Currency = "INR"
	}
	if req.Receipt == "" {
		req.Receipt = "rcpt_" + uuid.NewString()[:8]
	}

	body, err := g.client.Order.Create(map[string]interface{}{
		"amount":   req.Amount,
		"currency": req.Currency,
		"receipt":  req.Receipt,
	}, nil)
	if err != nil {
		return Order{}, fmt.Errorf("razorpay create order: %w", err)
	}

	order := Order{
		ID:       stringField(body, "id"),
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Status:   stringField(body, "status"),
		KeyID:    g.keyID,
	}
	if order.ID == "" {
		return Order{}, errors.New("razorpay create order: response has no id")
	}
	return order, nil
}

// VerifySignature checks HMAC-SHA256(order_id|payment_id) against signature.
func (g *RazorpayGateway) VerifySignature(orderID, paymentID, signature string) error {
	if g.keySecret == "" {
		return fmt.Errorf("razorpay: %w", ErrNotConfigured)
	}
	return verifyPaymentSignature(g.keySecret, orderID, paymentID, signature)
}

func verifyPaymentSignature(secret, orderID, paymentID, signature string) error {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrInvalidSignature
	}
	return nil
}

// RoundAmount rounds a client supplied amount, already in paise, to a whole unit.
func RoundAmount(amount float64) int64 {
	return int64(math.Round(amount))
}

func stringField(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}
