package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/flowsight/flowsight/internal/apiserver/database"
	"github.com/flowsight/flowsight/internal/apiserver/middleware"
)

// WorkspaceInfo reports the caller's workspace name, data mode and
// entity summary. Unlike the read endpoints it requires a signed-in
// caller, since anonymous traffic has no workspace of its own.
func (h *Handler) WorkspaceInfo(c *gin.Context) {
	identity := middleware.IdentityFromContext(c)
	if identity == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	info, err := h.resolver.WorkspaceInfo(c.Request.Context(), identity)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		h.logger.Error("workspace info failed", zap.Error(err))
		internalError(c)
		return
	}

	c.JSON(http.StatusOK, info)
}
