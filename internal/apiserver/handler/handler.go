// Package handler implements the HTTP surface of the API server.
package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/flowsight/flowsight/internal/ai"
	"github.com/flowsight/flowsight/internal/apiserver/database"
	"github.com/flowsight/flowsight/internal/apiserver/middleware"
	"github.com/flowsight/flowsight/internal/auth/jwt"
	"github.com/flowsight/flowsight/internal/common/config"
	"github.com/flowsight/flowsight/internal/imports"
	"github.com/flowsight/flowsight/internal/workspace"
)

// Handler carries the collaborators every endpoint needs.
type Handler struct {
	db         database.Database
	jwtService *jwt.Service
	resolver   *workspace.Resolver
	importer   *imports.Importer
	ai         *ai.Service
	cfg        *config.APIServerConfig
	logger     *zap.Logger
}

// NewHandler creates the shared handler for all routes.
func NewHandler(db database.Database, jwtService *jwt.Service, aiService *ai.Service, cfg *config.APIServerConfig, logger *zap.Logger) *Handler {
	return &Handler{
		db:         db,
		jwtService: jwtService,
		resolver:   workspace.NewResolver(db, logger),
		importer:   imports.NewImporter(db, logger),
		ai:         aiService,
		cfg:        cfg,
		logger:     logger,
	}
}

// dataWorkspace resolves which workspace backs this request's reads.
func (h *Handler) dataWorkspace(c *gin.Context) (*database.Workspace, error) {
	return h.resolver.ResolveDataWorkspace(c.Request.Context(), middleware.IdentityFromContext(c))
}

func internalError(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

// recordActivity is best effort; a failed audit row never fails the
// request that triggered it.
func (h *Handler) recordActivity(ctx context.Context, userID, workspaceID uint, action, description string) {
	err := h.db.CreateActivity(ctx, &database.Activity{
		UserID:      userID,
		WorkspaceID: workspaceID,
		Action:      action,
		Description: description,
	})
	if err != nil {
		h.logger.Warn("failed to record activity",
			zap.String("action", action), zap.Error(err))
	}
}
