package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"gymdesk/models"
	"gymdesk/services"
)

const recentLogLimit = 100

// Notify runs one fee reminder dispatch. The response is 200 even when single
// channels failed; per member statuses are in results.
func (h *Handler) Notify(c *gin.Context) {
	var req struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}

	channel, err := models.ParseChannel(req.Type)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid type. Must be Email, SMS or Both"})
		return
	}

	// a client disconnect must not abandon a half finished run
	ctx := context.WithoutCancel(c.Request.Context())
	summary, err := h.Dispatcher.Run(ctx, services.DispatchRequest{Type: channel, Note: req.Message})
	if err != nil {
		h.internalError(c, "Notification failed", err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *Handler) NotificationLogs(c *gin.Context) {
	logs, err := h.Logs.Recent(c.Request.Context(), recentLogLimit)
	if err != nil {
		h.internalError(c, "Failed to fetch logs", err)
		return
	}
	if logs == nil {
		logs = []models.NotificationLog{}
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs})
}
