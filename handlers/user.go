package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gymdesk/middleware"
	"gymdesk/services"
	"gymdesk/store"
)

// UserDashboard returns the calling member's plan and fee summary.
func (h *Handler) UserDashboard(c *gin.Context) {
	ctx := c.Request.Context()
	u, err := h.Users.GetByID(ctx, middleware.UserID(c))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		h.internalError(c, "Error fetching dashboard data", err)
		return
	}

	now := h.now()
	end := u.EffectivePlanEndDate()
	remaining := services.DaysBetween(now, end)
	if remaining < 0 {
		remaining = 0
	}

	upcoming := []string{}
	if plans, err := h.Plans.List(ctx); err != nil {
		h.Log.Warn("dashboard plans lookup failed", "error", err)
	} else {
		for _, p := range plans {
			if p.Name != u.CurrentPlan {
				upcoming = append(upcoming, p.Name)
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"name":          u.Name,
		"email":         u.Email,
		"phone":         u.Phone,
		"currentPlan":   u.CurrentPlan,
		"planStartDate": u.PlanStartDate,
		"planEndDate":   end,
		"feeStatus":     u.FeeStatus,
		"membershipId":  u.ID,
		"joinedOn":      u.CreatedAt,
		"daysActive":    services.DaysBetween(u.CreatedAt, now),
		"daysRemaining": remaining,
		"upcomingPlans": upcoming,
	})
}
