package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Read-only admin overview
func (h *Handler) AdminDashboard(c *gin.Context) {
	var stats struct {
		TotalMembers      int `json:"totalMembers"`
		PendingFees       int `json:"pendingFees"`
		PaidMembers       int `json:"paidMembers"`
		TotalPlans        int `json:"totalPlans"`
		NotificationsSent int `json:"notificationsLast24h"`
	}
	ctx := c.Request.Context()

	// 1. Member counts
	counts, err := h.Users.CountMembers(ctx)
	if err != nil {
		h.internalError(c, "Database error", err)
		return
	}
	stats.TotalMembers = counts.Total
	stats.PendingFees = counts.Pending
	stats.PaidMembers = counts.Paid

	// 2. Plans and recent activity are best effort
	if n, err := h.Plans.Count(ctx); err == nil {
		stats.TotalPlans = n
	} else {
		h.Log.Warn("plan count failed", "error", err)
	}
	if n, err := h.Logs.CountSince(ctx, h.now().Add(-24*time.Hour)); err == nil {
		stats.NotificationsSent = n
	} else {
		h.Log.Warn("notification count failed", "error", err)
	}

	c.JSON(http.StatusOK, stats)
}
