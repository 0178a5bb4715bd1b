package database

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// OrderFilter narrows order listings.
type OrderFilter struct {
	Since  *time.Time
	Status OrderStatus // empty means all
	Search string      // matches user name or email, case-insensitive
}

// SubscriptionFilter narrows subscription listings.
type SubscriptionFilter struct {
	Since  *time.Time         // start_date lower bound
	Status SubscriptionStatus // empty means all
	Plan   string             // empty means all
	Search string
}

// ActivityFilter narrows activity listings.
type ActivityFilter struct {
	Since  *time.Time
	Action string
	Search string
	Limit  int // 0 means unlimited
}

// PlanCount is one slice of the subscription plan breakdown.
type PlanCount struct {
	Plan  string `json:"plan"`
	Count int64  `json:"count"`
}

// Database defines the persistence capability the application is built on:
// create, upsert, count, find, findMany and transaction over the
// workspace-scoped entities.
type Database interface {
	// Close closes the database connection.
	Close() error

	// Transaction runs fn inside a transaction carried through ctx.
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Workspaces
	GetWorkspaceByID(ctx context.Context, id uint) (*Workspace, error)
	GetWorkspaceByExternalID(ctx context.Context, externalID string) (*Workspace, error)
	CreateWorkspace(ctx context.Context, ws *Workspace) error
	// GetOrCreateWorkspace idempotently resolves the workspace with the
	// given external id, creating it with realDataEnabled=false when absent.
	GetOrCreateWorkspace(ctx context.Context, externalID, name string) (*Workspace, error)
	SetRealDataEnabled(ctx context.Context, id uint, enabled bool) error

	// Users
	CreateUser(ctx context.Context, u *User) error
	UpdateUser(ctx context.Context, u *User) error
	GetUserByID(ctx context.Context, id uint) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByEmailAndWorkspace(ctx context.Context, email string, workspaceID uint) (*User, error)
	ListUsers(ctx context.Context, workspaceID uint) ([]*User, error)
	CountUsers(ctx context.Context, workspaceID uint) (int64, error)
	CountUsersByRole(ctx context.Context, workspaceID uint, role Role) (int64, error)
	CountUsersCreatedSince(ctx context.Context, workspaceID uint, since time.Time) (int64, error)
	FirstUserCreatedAt(ctx context.Context, workspaceID uint) (*time.Time, error)

	// Orders
	CreateOrder(ctx context.Context, o *Order) error
	ListOrders(ctx context.Context, workspaceID uint, f OrderFilter) ([]*Order, error)
	ListCompletedOrders(ctx context.Context, workspaceID uint) ([]*Order, error)
	CountOrders(ctx context.Context, workspaceID uint) (int64, error)
	CountOrdersByStatus(ctx context.Context, workspaceID uint, status OrderStatus) (int64, error)
	CountOrdersCreatedSince(ctx context.Context, workspaceID uint, since time.Time) (int64, error)
	SumCompletedOrderAmount(ctx context.Context, workspaceID uint, since *time.Time) (decimal.Decimal, error)
	FirstOrderCreatedAt(ctx context.Context, workspaceID uint) (*time.Time, error)

	// Subscriptions
	CreateSubscription(ctx context.Context, s *Subscription) error
	ListSubscriptions(ctx context.Context, workspaceID uint, f SubscriptionFilter) ([]*Subscription, error)
	CountSubscriptions(ctx context.Context, workspaceID uint) (int64, error)
	CountSubscriptionsByStatus(ctx context.Context, workspaceID uint, status SubscriptionStatus) (int64, error)
	CountSubscriptionsUpdatedBetween(ctx context.Context, workspaceID uint, status SubscriptionStatus, from, to time.Time) (int64, error)
	PlanBreakdown(ctx context.Context, workspaceID uint) ([]PlanCount, error)
	FirstSubscriptionStart(ctx context.Context, workspaceID uint) (*time.Time, error)

	// Activities
	CreateActivity(ctx context.Context, a *Activity) error
	ListActivities(ctx context.Context, workspaceID uint, f ActivityFilter) ([]*Activity, error)
	ListActivityActions(ctx context.Context, workspaceID uint) ([]string, error)
	CountActivities(ctx context.Context, workspaceID uint) (int64, error)
	CountActivitiesSince(ctx context.Context, workspaceID uint, since time.Time) (int64, error)
}
