package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gymdesk/models"
	"gymdesk/services"
	"gymdesk/store"
)

func (h *Handler) CreatePlan(c *gin.Context) {
	var req struct {
		Name     string   `json:"name"`
		Duration int      `json:"duration"`
		Price    float64  `json:"price"`
		Features []string `json:"features"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}

	plan := models.Plan{
		Name:           req.Name,
		DurationMonths: req.Duration,
		Price:          req.Price,
		Features:       req.Features,
	}
	if err := services.ValidatePlan(&plan); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Plans.Create(c.Request.Context(), &plan); err != nil {
		h.internalError(c, "Failed to create plan", err)
		return
	}

	c.JSON(http.StatusCreated, plan)
}

func (h *Handler) ListPlans(c *gin.Context) {
	plans, err := h.Plans.List(c.Request.Context())
	if err != nil {
		h.internalError(c, "Database error", err)
		return
	}
	if plans == nil {
		plans = []models.Plan{}
	}
	c.JSON(http.StatusOK, plans)
}

func (h *Handler) DeletePlan(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid plan id"})
		return
	}
	err := h.Plans.Delete(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Plan not found"})
		return
	}
	if err != nil {
		h.internalError(c, "Failed to delete plan", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Plan deleted"})
}
