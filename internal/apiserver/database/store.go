package database

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Store implements the Database interface on top of a GORM handle.
// The driver-specific constructors (sqlite, postgres, mysql) only differ
// in how they open the handle.
type Store struct {
	db *gorm.DB
}

func newStore(gormDB *gorm.DB) (*Store, error) {
	if err := gormDB.AutoMigrate(&Workspace{}, &User{}, &Order{}, &Subscription{}, &Activity{}); err != nil {
		return nil, err
	}
	return &Store{db: gormDB}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Transaction runs fn in a transaction propagated through the context.
func (s *Store) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ContextWithTransaction(ctx, tx))
	})
}

func (s *Store) handle(ctx context.Context) *gorm.DB {
	return getDBFromContext(ctx, s.db)
}

func wrapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// --- Workspaces ---

func (s *Store) GetWorkspaceByID(ctx context.Context, id uint) (*Workspace, error) {
	var ws Workspace
	if err := s.handle(ctx).First(&ws, id).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &ws, nil
}

func (s *Store) GetWorkspaceByExternalID(ctx context.Context, externalID string) (*Workspace, error) {
	var ws Workspace
	err := s.handle(ctx).Where("external_id = ?", externalID).First(&ws).Error
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return &ws, nil
}

func (s *Store) CreateWorkspace(ctx context.Context, ws *Workspace) error {
	return s.handle(ctx).Create(ws).Error
}

func (s *Store) GetOrCreateWorkspace(ctx context.Context, externalID, name string) (*Workspace, error) {
	ws := Workspace{
		ExternalID:      externalID,
		Name:            name,
		RealDataEnabled: false,
	}
	err := s.handle(ctx).
		Where(Workspace{ExternalID: externalID}).
		Attrs(Workspace{Name: name}).
		FirstOrCreate(&ws).Error
	if err != nil {
		return nil, err
	}
	return &ws, nil
}

func (s *Store) SetRealDataEnabled(ctx context.Context, id uint, enabled bool) error {
	return s.handle(ctx).
		Model(&Workspace{}).
		Where("id = ?", id).
		Update("real_data_enabled", enabled).Error
}

// --- Users ---

func (s *Store) CreateUser(ctx context.Context, u *User) error {
	return s.handle(ctx).Create(u).Error
}

func (s *Store) UpdateUser(ctx context.Context, u *User) error {
	return s.handle(ctx).Save(u).Error
}

func (s *Store) GetUserByID(ctx context.Context, id uint) (*User, error) {
	var u User
	if err := s.handle(ctx).First(&u, id).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &u, nil
}

// GetUserByEmail returns the first user with the given email across
// workspaces. Emails are only unique per workspace, so this is reserved
// for the login path, mirroring the signup-time uniqueness check.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := s.handle(ctx).
		Where("LOWER(email) = ?", strings.ToLower(email)).
		First(&u).Error
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return &u, nil
}

func (s *Store) GetUserByEmailAndWorkspace(ctx context.Context, email string, workspaceID uint) (*User, error) {
	var u User
	err := s.handle(ctx).
		Where("LOWER(email) = ? AND workspace_id = ?", strings.ToLower(email), workspaceID).
		First(&u).Error
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return &u, nil
}

func (s *Store) ListUsers(ctx context.Context, workspaceID uint) ([]*User, error) {
	var users []*User
	err := s.handle(ctx).
		Where("workspace_id = ?", workspaceID).
		Order("created_at desc").
		Find(&users).Error
	return users, err
}

func (s *Store) CountUsers(ctx context.Context, workspaceID uint) (int64, error) {
	var count int64
	err := s.handle(ctx).
		Model(&User{}).
		Where("workspace_id = ?", workspaceID).
		Count(&count).Error
	return count, err
}

func (s *Store) CountUsersByRole(ctx context.Context, workspaceID uint, role Role) (int64, error) {
	var count int64
	err := s.handle(ctx).
		Model(&User{}).
		Where("workspace_id = ? AND role = ?", workspaceID, role).
		Count(&count).Error
	return count, err
}

func (s *Store) CountUsersCreatedSince(ctx context.Context, workspaceID uint, since time.Time) (int64, error) {
	var count int64
	err := s.handle(ctx).
		Model(&User{}).
		Where("workspace_id = ? AND created_at >= ?", workspaceID, since).
		Count(&count).Error
	return count, err
}

func (s *Store) FirstUserCreatedAt(ctx context.Context, workspaceID uint) (*time.Time, error) {
	return s.firstTimestamp(ctx, &User{}, "created_at", workspaceID)
}

// --- Orders ---

func (s *Store) CreateOrder(ctx context.Context, o *Order) error {
	return s.handle(ctx).Create(o).Error
}

func (s *Store) ListOrders(ctx context.Context, workspaceID uint, f OrderFilter) ([]*Order, error) {
	q := s.handle(ctx).
		Model(&Order{}).
		Preload("User").
		Where("orders.workspace_id = ?", workspaceID).
		Order("orders.created_at desc")

	if f.Since != nil {
		q = q.Where("orders.created_at >= ?", *f.Since)
	}
	if f.Status != "" {
		q = q.Where("orders.status = ?", f.Status)
	}
	if f.Search != "" {
		pattern := "%" + strings.ToLower(f.Search) + "%"
		q = q.Joins("JOIN users ON users.id = orders.user_id").
			Where("LOWER(users.name) LIKE ? OR LOWER(users.email) LIKE ?", pattern, pattern)
	}

	var orders []*Order
	err := q.Find(&orders).Error
	return orders, err
}

func (s *Store) ListCompletedOrders(ctx context.Context, workspaceID uint) ([]*Order, error) {
	var orders []*Order
	err := s.handle(ctx).
		Where("workspace_id = ? AND status = ?", workspaceID, OrderCompleted).
		Order("created_at asc").
		Find(&orders).Error
	return orders, err
}

func (s *Store) CountOrders(ctx context.Context, workspaceID uint) (int64, error) {
	var count int64
	err := s.handle(ctx).
		Model(&Order{}).
		Where("workspace_id = ?", workspaceID).
		Count(&count).Error
	return count, err
}

func (s *Store) CountOrdersByStatus(ctx context.Context, workspaceID uint, status OrderStatus) (int64, error) {
	var count int64
	err := s.handle(ctx).
		Model(&Order{}).
		Where("workspace_id = ? AND status = ?", workspaceID, status).
		Count(&count).Error
	return count, err
}

func (s *Store) CountOrdersCreatedSince(ctx context.Context, workspaceID uint, since time.Time) (int64, error) {
	var count int64
	err := s.handle(ctx).
		Model(&Order{}).
		Where("workspace_id = ? AND created_at >= ?", workspaceID, since).
		Count(&count).Error
	return count, err
}

func (s *Store) SumCompletedOrderAmount(ctx context.Context, workspaceID uint, since *time.Time) (decimal.Decimal, error) {
	q := s.handle(ctx).
		Model(&Order{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("workspace_id = ? AND status = ?", workspaceID, OrderCompleted)
	if since != nil {
		q = q.Where("created_at >= ?", *since)
	}

	var sum decimal.Decimal
	if err := q.Row().Scan(&sum); err != nil {
		return decimal.Zero, err
	}
	return sum, nil
}

func (s *Store) FirstOrderCreatedAt(ctx context.Context, workspaceID uint) (*time.Time, error) {
	return s.firstTimestamp(ctx, &Order{}, "created_at", workspaceID)
}

// --- Subscriptions ---

func (s *Store) CreateSubscription(ctx context.Context, sub *Subscription) error {
	return s.handle(ctx).Create(sub).Error
}

func (s *Store) ListSubscriptions(ctx context.Context, workspaceID uint, f SubscriptionFilter) ([]*Subscription, error) {
	q := s.handle(ctx).
		Model(&Subscription{}).
		Preload("User").
		Where("subscriptions.workspace_id = ?", workspaceID).
		Order("subscriptions.start_date desc")

	if f.Since != nil {
		q = q.Where("subscriptions.start_date >= ?", *f.Since)
	}
	if f.Status != "" {
		q = q.Where("subscriptions.status = ?", f.Status)
	}
	if f.Plan != "" {
		q = q.Where("subscriptions.plan = ?", f.Plan)
	}
	if f.Search != "" {
		pattern := "%" + strings.ToLower(f.Search) + "%"
		q = q.Joins("JOIN users ON users.id = subscriptions.user_id").
			Where("LOWER(users.name) LIKE ? OR LOWER(users.email) LIKE ? OR LOWER(subscriptions.plan) LIKE ?", pattern, pattern, pattern)
	}

	var subs []*Subscription
	err := q.Find(&subs).Error
	return subs, err
}

func (s *Store) CountSubscriptions(ctx context.Context, workspaceID uint) (int64, error) {
	var count int64
	err := s.handle(ctx).
		Model(&Subscription{}).
		Where("workspace_id = ?", workspaceID).
		Count(&count).Error
	return count, err
}

func (s *Store) CountSubscriptionsByStatus(ctx context.Context, workspaceID uint, status SubscriptionStatus) (int64, error) {
	var count int64
	err := s.handle(ctx).
		Model(&Subscription{}).
		Where("workspace_id = ? AND status = ?", workspaceID, status).
		Count(&count).Error
	return count, err
}

func (s *Store) CountSubscriptionsUpdatedBetween(ctx context.Context, workspaceID uint, status SubscriptionStatus, from, to time.Time) (int64, error) {
	var count int64
	err := s.handle(ctx).
		Model(&Subscription{}).
		Where("workspace_id = ? AND status = ? AND updated_at BETWEEN ? AND ?", workspaceID, status, from, to).
		Count(&count).Error
	return count, err
}

func (s *Store) PlanBreakdown(ctx context.Context, workspaceID uint) ([]PlanCount, error) {
	var out []PlanCount
	err := s.handle(ctx).
		Model(&Subscription{}).
		Select("plan, COUNT(*) AS count").
		Where("workspace_id = ?", workspaceID).
		Group("plan").
		Order("count desc").
		Scan(&out).Error
	return out, err
}

func (s *Store) FirstSubscriptionStart(ctx context.Context, workspaceID uint) (*time.Time, error) {
	return s.firstTimestamp(ctx, &Subscription{}, "start_date", workspaceID)
}

// --- Activities ---

func (s *Store) CreateActivity(ctx context.Context, a *Activity) error {
	return s.handle(ctx).Create(a).Error
}

func (s *Store) ListActivities(ctx context.Context, workspaceID uint, f ActivityFilter) ([]*Activity, error) {
	q := s.handle(ctx).
		Model(&Activity{}).
		Preload("User").
		Where("activities.workspace_id = ?", workspaceID).
		Order("activities.created_at desc")

	if f.Since != nil {
		q = q.Where("activities.created_at >= ?", *f.Since)
	}
	if f.Action != "" {
		q = q.Where("activities.action = ?", f.Action)
	}
	if f.Search != "" {
		pattern := "%" + strings.ToLower(f.Search) + "%"
		q = q.Joins("JOIN users ON users.id = activities.user_id").
			Where("LOWER(users.name) LIKE ? OR LOWER(users.email) LIKE ? OR LOWER(activities.description) LIKE ?", pattern, pattern, pattern)
	}

	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var activities []*Activity
	err := q.Find(&activities).Error
	return activities, err
}

func (s *Store) ListActivityActions(ctx context.Context, workspaceID uint) ([]string, error) {
	var actions []string
	err := s.handle(ctx).
		Model(&Activity{}).
		Distinct("action").
		Where("workspace_id = ?", workspaceID).
		Order("action asc").
		Pluck("action", &actions).Error
	return actions, err
}

func (s *Store) CountActivities(ctx context.Context, workspaceID uint) (int64, error) {
	var count int64
	err := s.handle(ctx).
		Model(&Activity{}).
		Where("workspace_id = ?", workspaceID).
		Count(&count).Error
	return count, err
}

func (s *Store) CountActivitiesSince(ctx context.Context, workspaceID uint, since time.Time) (int64, error) {
	var count int64
	err := s.handle(ctx).
		Model(&Activity{}).
		Where("workspace_id = ? AND created_at >= ?", workspaceID, since).
		Count(&count).Error
	return count, err
}

// firstTimestamp returns the smallest value of column for the workspace,
// or nil when the table has no rows for it.
func (s *Store) firstTimestamp(ctx context.Context, model any, column string, workspaceID uint) (*time.Time, error) {
	var stamps []time.Time
	err := s.handle(ctx).
		Model(model).
		Where("workspace_id = ?", workspaceID).
		Order(column + " asc").
		Limit(1).
		Pluck(column, &stamps).Error
	if err != nil {
		return nil, err
	}
	if len(stamps) == 0 {
		return nil, nil
	}
	return &stamps[0], nil
}
