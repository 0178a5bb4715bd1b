// Package workspace decides which workspace backs a request: the shared
// demo dataset or the caller's own, once real data has been imported.
package workspace

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/flowsight/flowsight/internal/apiserver/database"
	"github.com/flowsight/flowsight/internal/common/cnst"
)

// Identity is the authenticated caller, taken from verified JWT claims.
// A nil *Identity means an unauthenticated request.
type Identity struct {
	UserID uint
	Email  string
}

// Mode labels which dataset a workspace resolution landed on.
type Mode string

const (
	ModeDemo Mode = "Demo"
	ModeReal Mode = "Real"
)

// NewExternalID mints the client-facing id for a fresh workspace.
func NewExternalID() string {
	return "workspace_" + uuid.NewString()
}

// Resolver picks the workspace behind every analytics read. All read
// paths must go through it; querying the caller's workspace id directly
// would break the demo/real separation.
type Resolver struct {
	db     database.Database
	logger *zap.Logger
}

func NewResolver(db database.Database, logger *zap.Logger) *Resolver {
	return &Resolver{db: db, logger: logger}
}

// DemoWorkspace returns the reserved shared demo workspace, creating it
// on first need.
func (r *Resolver) DemoWorkspace(ctx context.Context) (*database.Workspace, error) {
	return r.db.GetOrCreateWorkspace(ctx, cnst.DemoWorkspaceID, cnst.DemoWorkspaceName)
}

// WorkspaceForUser loads the user's own workspace, repairing a dangling
// reference by creating a fresh one and reassigning the user to it.
func (r *Resolver) WorkspaceForUser(ctx context.Context, user *database.User) (*database.Workspace, error) {
	ws, err := r.db.GetWorkspaceByID(ctx, user.WorkspaceID)
	if err == nil {
		return ws, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}

	ws, err = r.db.GetOrCreateWorkspace(ctx, NewExternalID(), user.Email+"'s Workspace")
	if err != nil {
		return nil, err
	}
	user.WorkspaceID = ws.ID
	if err := r.db.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	r.logger.Warn("reassigned user to a fresh workspace",
		zap.Uint("user_id", user.ID), zap.Uint("workspace_id", ws.ID))
	return ws, nil
}

// ResolveDataWorkspace decides which workspace's rows back the response.
//
// No caller resolves to demo. With a caller the stored realDataEnabled
// flag alone is not trusted: a live recount must also find imported data
// (any order, any subscription, or any user beyond the owner account).
// When the recount finds data but the flag was never set, the flag is
// repaired in place; the current request still sees demo data and the
// next one lands on the caller's workspace.
func (r *Resolver) ResolveDataWorkspace(ctx context.Context, identity *Identity) (*database.Workspace, error) {
	if identity == nil {
		return r.DemoWorkspace(ctx)
	}

	user, err := r.db.GetUserByID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			// Token outlived the account.
			return r.DemoWorkspace(ctx)
		}
		return nil, err
	}

	ws, err := r.WorkspaceForUser(ctx, user)
	if err != nil {
		return nil, err
	}

	hasData, err := r.hasImportedData(ctx, ws.ID)
	if err != nil {
		return nil, err
	}

	if ws.RealDataEnabled && hasData {
		return ws, nil
	}

	if hasData && !ws.RealDataEnabled {
		if err := r.db.SetRealDataEnabled(ctx, ws.ID, true); err != nil {
			r.logger.Error("failed to repair real data flag",
				zap.Uint("workspace_id", ws.ID), zap.Error(err))
		} else {
			r.logger.Info("repaired real data flag from live recount",
				zap.Uint("workspace_id", ws.ID))
		}
	}

	return r.DemoWorkspace(ctx)
}

// hasImportedData recounts live. The owner account created at signup
// does not count as imported data.
func (r *Resolver) hasImportedData(ctx context.Context, workspaceID uint) (bool, error) {
	orders, err := r.db.CountOrders(ctx, workspaceID)
	if err != nil {
		return false, err
	}
	if orders > 0 {
		return true, nil
	}

	subs, err := r.db.CountSubscriptions(ctx, workspaceID)
	if err != nil {
		return false, err
	}
	if subs > 0 {
		return true, nil
	}

	users, err := r.db.CountUsers(ctx, workspaceID)
	if err != nil {
		return false, err
	}
	return users > 1, nil
}

// Summary is the per-workspace entity tally shown on the settings page.
type Summary struct {
	Users         int64 `json:"users"`
	Orders        int64 `json:"orders"`
	Subscriptions int64 `json:"subscriptions"`
}

// Info describes the caller's own workspace, regardless of which
// dataset their reads currently resolve to.
type Info struct {
	Name          string     `json:"name"`
	Mode          Mode       `json:"mode"`
	RealDataSince *time.Time `json:"realDataSince"`
	DataSummary   Summary    `json:"dataSummary"`
}

// WorkspaceInfo reports the caller's workspace name, mode and data
// summary. RealDataSince is the earliest timestamp among imported rows,
// only set once real data mode is effective.
func (r *Resolver) WorkspaceInfo(ctx context.Context, identity *Identity) (*Info, error) {
	user, err := r.db.GetUserByID(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}
	ws, err := r.WorkspaceForUser(ctx, user)
	if err != nil {
		return nil, err
	}

	summary := Summary{}
	if summary.Users, err = r.db.CountUsers(ctx, ws.ID); err != nil {
		return nil, err
	}
	if summary.Orders, err = r.db.CountOrders(ctx, ws.ID); err != nil {
		return nil, err
	}
	if summary.Subscriptions, err = r.db.CountSubscriptions(ctx, ws.ID); err != nil {
		return nil, err
	}

	name := ws.Name
	if user.Name != "" {
		name = user.Name + "'s Workspace"
	}

	info := &Info{Name: name, Mode: ModeDemo, DataSummary: summary}
	hasRows := summary.Orders > 0 || summary.Users > 0 || summary.Subscriptions > 0
	if ws.RealDataEnabled && hasRows {
		info.Mode = ModeReal
		info.RealDataSince = r.earliestImport(ctx, ws.ID)
	}
	return info, nil
}

// earliestImport finds the oldest timestamp among the workspace's
// orders, users and subscription starts. Best effort; lookup errors
// just leave the field empty.
func (r *Resolver) earliestImport(ctx context.Context, workspaceID uint) *time.Time {
	var earliest *time.Time
	consider := func(t *time.Time, err error) {
		if err != nil {
			r.logger.Warn("first-timestamp lookup failed",
				zap.Uint("workspace_id", workspaceID), zap.Error(err))
			return
		}
		if t != nil && (earliest == nil || t.Before(*earliest)) {
			earliest = t
		}
	}
	consider(r.db.FirstOrderCreatedAt(ctx, workspaceID))
	consider(r.db.FirstUserCreatedAt(ctx, workspaceID))
	consider(r.db.FirstSubscriptionStart(ctx, workspaceID))
	return earliest
}
