package imports

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/flowsight/flowsight/internal/apiserver/database"
)

// importedUserPassword is stored for users materialized by an import.
// It is not a valid bcrypt digest, so password comparison always fails
// until the account owner sets a real password.
const importedUserPassword = "$2a$10$imported-account-no-password"

// Result summarizes one import run. Per-row failures land in Errors and
// do not abort the run; Success is false only for run-level failures
// such as an unknown workspace.
type Result struct {
	Success  bool     `json:"success"`
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors"`
}

// Importer writes validated rows into a workspace.
type Importer struct {
	db     database.Database
	logger *zap.Logger
}

func NewImporter(db database.Database, logger *zap.Logger) *Importer {
	return &Importer{db: db, logger: logger}
}

func (im *Importer) workspace(ctx context.Context, workspaceID uint) (*database.Workspace, *Result) {
	ws, err := im.db.GetWorkspaceByID(ctx, workspaceID)
	if err != nil {
		msg := "Workspace not found"
		if !errors.Is(err, database.ErrNotFound) {
			msg = err.Error()
		}
		return nil, &Result{Success: false, Errors: []string{msg}}
	}
	return ws, nil
}

// ImportUsers upserts users by email within the workspace. Existing
// users keep their password; name, role and created_at are overwritten.
func (im *Importer) ImportUsers(ctx context.Context, workspaceID uint, rows []UserRow) *Result {
	ws, fail := im.workspace(ctx, workspaceID)
	if fail != nil {
		return fail
	}

	result := &Result{Success: true}
	for i, row := range rows {
		email := strings.ToLower(strings.TrimSpace(row.Email))
		createdAt := time.Now()
		if row.CreatedAt != nil {
			createdAt = *row.CreatedAt
		}

		existing, err := im.db.GetUserByEmailAndWorkspace(ctx, email, ws.ID)
		switch {
		case err == nil:
			existing.Name = strings.TrimSpace(row.Name)
			existing.Role = row.Role
			existing.CreatedAt = createdAt
			err = im.db.UpdateUser(ctx, existing)
		case errors.Is(err, database.ErrNotFound):
			err = im.db.CreateUser(ctx, &database.User{
				Email:       email,
				Name:        strings.TrimSpace(row.Name),
				Password:    importedUserPassword,
				Role:        row.Role,
				WorkspaceID: ws.ID,
				CreatedAt:   createdAt,
			})
		}
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
			continue
		}
		result.Imported++
	}

	im.logger.Info("users import finished",
		zap.Uint("workspace_id", ws.ID),
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped))
	return result
}

// ImportOrders creates orders, materializing a minimal user record for
// any email not yet present in the workspace. Any successfully imported
// order switches the workspace to real data.
func (im *Importer) ImportOrders(ctx context.Context, workspaceID uint, rows []OrderRow) *Result {
	ws, fail := im.workspace(ctx, workspaceID)
	if fail != nil {
		return fail
	}

	result := &Result{Success: true}
	for i, row := range rows {
		email := strings.ToLower(strings.TrimSpace(row.Email))

		user, err := im.db.GetUserByEmailAndWorkspace(ctx, email, ws.ID)
		if errors.Is(err, database.ErrNotFound) {
			user = &database.User{
				Email:       email,
				Name:        strings.SplitN(email, "@", 2)[0],
				Password:    importedUserPassword,
				Role:        database.RoleUser,
				WorkspaceID: ws.ID,
			}
			err = im.db.CreateUser(ctx, user)
		}
		if err == nil {
			err = im.db.CreateOrder(ctx, &database.Order{
				UserID:      user.ID,
				WorkspaceID: ws.ID,
				Amount:      row.Amount,
				Status:      row.Status,
				CreatedAt:   row.CreatedAt,
			})
		}
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
			continue
		}
		result.Imported++
	}

	if result.Imported > 0 {
		im.enableRealData(ctx, ws)
	}

	im.logger.Info("orders import finished",
		zap.Uint("workspace_id", ws.ID),
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped))
	return result
}

// ImportSubscriptions creates subscriptions for users that already
// exist in the workspace; rows for unknown emails are skipped. Any
// successfully imported subscription switches the workspace to real data.
func (im *Importer) ImportSubscriptions(ctx context.Context, workspaceID uint, rows []SubscriptionRow) *Result {
	ws, fail := im.workspace(ctx, workspaceID)
	if fail != nil {
		return fail
	}

	result := &Result{Success: true}
	for i, row := range rows {
		email := strings.ToLower(strings.TrimSpace(row.Email))

		user, err := im.db.GetUserByEmailAndWorkspace(ctx, email, ws.ID)
		if errors.Is(err, database.ErrNotFound) {
			result.Skipped++
			result.Errors = append(result.Errors,
				fmt.Sprintf("Row %d: User with email %s not found. Import users first.", i+1, email))
			continue
		}
		if err == nil {
			err = im.db.CreateSubscription(ctx, &database.Subscription{
				UserID:      user.ID,
				WorkspaceID: ws.ID,
				Plan:        strings.TrimSpace(row.Plan),
				Status:      row.Status,
				StartDate:   row.StartDate,
				EndDate:     row.EndDate,
			})
		}
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
			continue
		}
		result.Imported++
	}

	if result.Imported > 0 {
		im.enableRealData(ctx, ws)
	}

	im.logger.Info("subscriptions import finished",
		zap.Uint("workspace_id", ws.ID),
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped))
	return result
}

func (im *Importer) enableRealData(ctx context.Context, ws *database.Workspace) {
	if ws.RealDataEnabled {
		return
	}
	if err := im.db.SetRealDataEnabled(ctx, ws.ID, true); err != nil {
		im.logger.Error("failed to enable real data mode",
			zap.Uint("workspace_id", ws.ID), zap.Error(err))
		return
	}
	ws.RealDataEnabled = true
	im.logger.Info("real data mode enabled", zap.Uint("workspace_id", ws.ID))
}
