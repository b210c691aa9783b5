package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	g := NewRazorpayGateway("rzp_test", "shh")

	assert.NoError(t, g.VerifySignature("order_1", "pay_1", sign("shh", "order_1", "pay_1")))
	assert.ErrorIs(t, g.VerifySignature("order_1", "pay_2", sign("shh", "order_1", "pay_1")), ErrInvalidSignature)
	assert.ErrorIs(t, g.VerifySignature("order_1", "pay_1", sign("other", "order_1", "pay_1")), ErrInvalidSignature)
	assert.ErrorIs(t, g.VerifySignature("order_1", "pay_1", ""), ErrInvalidSignature)
}

func TestRazorpayNotConfigured(t *testing.T) {
	g := NewRazorpayGateway("", "")

	_, err := g.CreateOrder(context.Background(), OrderRequest{Amount: 50000})
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.ErrorIs(t, g.VerifySignature("o", "p", "s"), ErrNotConfigured)
}

func TestRoundAmount(t *testing.T) {
	assert.Equal(t, int64(50000), RoundAmount(50000))
	assert.Equal(t, int64(1000), RoundAmount(999.6))
	assert.Equal(t, int64(0), RoundAmount(0.2))
}
