package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gymdesk/models"
	"gymdesk/services"
	"gymdesk/store"
)

type updateUserInput struct {
	CurrentPlan   *string           `json:"currentPlan"`
	FeeStatus     *models.FeeStatus `json:"feeStatus"`
	PlanStartDate *time.Time        `json:"planStartDate"`
	PlanEndDate   *time.Time        `json:"planEndDate"`
	PlanID        *string           `json:"planId"`
}

func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.Users.List(c.Request.Context())
	if err != nil {
		h.internalError(c, "Database error", err)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	c.JSON(http.StatusOK, users)
}

// UpdateUser edits a member's plan and fee fields. Assigning planId copies the
// plan name and derives the end date from its duration.
func (h *Handler) UpdateUser(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}

	var input updateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	if input.FeeStatus != nil && !input.FeeStatus.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid fee status. Must be Paid or Pending"})
		return
	}

	u, err := h.Users.GetByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		h.internalError(c, "Database error", err)
		return
	}

	if input.PlanStartDate != nil {
		u.PlanStartDate = *input.PlanStartDate
	}
	if input.PlanEndDate != nil {
		u.PlanEndDate = input.PlanEndDate
	}
	if input.CurrentPlan != nil {
		if name := strings.TrimSpace(*input.CurrentPlan); name != "" {
			u.CurrentPlan = name
		}
	}
	if input.FeeStatus != nil {
		u.FeeStatus = *input.FeeStatus
	}

	if input.PlanID != nil {
		if _, err := uuid.Parse(*input.PlanID); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid plan id"})
			return
		}
		plan, err := h.Plans.GetByID(ctx, *input.PlanID)
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Plan not found"})
			return
		}
		if err != nil {
			h.internalError(c, "Database error", err)
			return
		}
		start := u.PlanStartDate
		if input.PlanStartDate == nil {
			start = h.now()
		}
		services.ApplyPlan(u, *plan, start)
	}

	if err := h.Users.UpdateMembership(ctx, u); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		h.internalError(c, "Failed to update user", err)
		return
	}

	h.Log.Info("membership updated", "user_id", u.ID, "plan", u.CurrentPlan, "fee_status", u.FeeStatus)
	c.JSON(http.StatusOK, u)
}
