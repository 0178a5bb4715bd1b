package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/flowsight/flowsight/internal/apiserver/database"
	"github.com/flowsight/flowsight/internal/common/dto"
)

// ListUsers returns every member and imported customer of the workspace.
func (h *Handler) ListUsers(c *gin.Context) {
	ws, err := h.dataWorkspace(c)
	if err != nil {
		h.logger.Error("workspace resolution failed", zap.Error(err))
		internalError(c)
		return
	}

	users, err := h.db.ListUsers(c.Request.Context(), ws.ID)
	if err != nil {
		internalError(c)
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

// UserStats breaks the user base down by role and recent growth.
func (h *Handler) UserStats(c *gin.Context) {
	ws, err := h.dataWorkspace(c)
	if err != nil {
		h.logger.Error("workspace resolution failed", zap.Error(err))
		internalError(c)
		return
	}
	ctx := c.Request.Context()

	total, err := h.db.CountUsers(ctx, ws.ID)
	if err != nil {
		internalError(c)
		return
	}
	admins, err := h.db.CountUsersByRole(ctx, ws.ID, database.RoleAdmin)
	if err != nil {
		internalError(c)
		return
	}
	managers, err := h.db.CountUsersByRole(ctx, ws.ID, database.RoleManager)
	if err != nil {
		internalError(c)
		return
	}
	newThisMonth, err := h.db.CountUsersCreatedSince(ctx, ws.ID, pastDate(30))
	if err != nil {
		internalError(c)
		return
	}

	c.JSON(http.StatusOK, dto.UserStatsResponse{
		TotalUsers:   total,
		AdminCount:   admins,
		ManagerCount: managers,
		UserCount:    total - admins - managers,
		NewThisMonth: newThisMonth,
	})
}
