package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gymdesk/middleware"
	"gymdesk/models"
	"gymdesk/services"
	"gymdesk/store"
)

func (h *Handler) CreateOrder(c *gin.Context) {
	// Feature Flag Check
	if !h.Features.PaymentsEnabled {
		c.JSON(http.StatusNotFound, gin.H{"error": "Payments not enabled"})
		return
	}

	var req struct {
		Amount   float64 `json:"amount"`
		Currency string  `json:"currency"`
		Receipt  string  `json:"receipt"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	amount := services.RoundAmount(req.Amount)
	if amount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Amount must be greater than zero"})
		return
	}

	order, err := h.Gateway.CreateOrder(c.Request.Context(), services.OrderRequest{
		Amount:   amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
	})
	if errors.Is(err, services.ErrNotConfigured) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Payment gateway not configured"})
		return
	}
	if err != nil {
		h.internalError(c, "Failed to create order", err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// VerifyPayment checks the gateway signature, records the payment and marks
// the caller's fee Paid. A payment is accepted once.
func (h *Handler) VerifyPayment(c *gin.Context) {
	if !h.Features.PaymentsEnabled {
		c.JSON(http.StatusNotFound, gin.H{"error": "Payments not enabled"})
		return
	}

	var req struct {
		OrderID   string `json:"razorpay_order_id"`
		PaymentID string `json:"razorpay_payment_id"`
		Signature string `json:"razorpay_signature"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.OrderID == "" || req.PaymentID == "" || req.Signature == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Order id, payment id and signature are required"})
		return
	}

	err := h.Gateway.VerifySignature(req.OrderID, req.PaymentID, req.Signature)
	if errors.Is(err, services.ErrInvalidSignature) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment signature"})
		return
	}
	if errors.Is(err, services.ErrNotConfigured) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Payment gateway not configured"})
		return
	}
	if err != nil {
		h.internalError(c, "Payment verification failed", err)
		return
	}

	userID := middleware.UserID(c)
	payment := &models.Payment{UserID: userID, OrderID: req.OrderID, PaymentID: req.PaymentID, Status: "captured"}
	err = h.Payments.Capture(c.Request.Context(), payment)
	if errors.Is(err, store.ErrDuplicatePayment) {
		h.Log.Warn("payment replay rejected", "user_id", userID, "order_id", req.OrderID, "payment_id", req.PaymentID)
		c.JSON(http.StatusConflict, gin.H{"error": "Payment already recorded"})
		return
	}
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		h.internalError(c, "Database error", err)
		return
	}

	h.Log.Info("payment verified", "user_id", userID, "order_id", req.OrderID)
	c.JSON(http.StatusOK, gin.H{"message": "Payment verified", "feeStatus": models.FeeStatusPaid})
}
