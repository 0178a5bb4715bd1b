package database

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role represents the role of a workspace member.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
	RoleUser    Role = "USER"
)

// ValidRole reports whether s is one of the member roles.
func ValidRole(s string) bool {
	switch Role(s) {
	case RoleAdmin, RoleManager, RoleUser:
		return true
	}
	return false
}

// OrderStatus represents the stored state of an order.
// COMPLETED is the only revenue-counted state.
type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderCompleted OrderStatus = "COMPLETED"
	OrderCancelled OrderStatus = "CANCELLED"
)

// SubscriptionStatus represents the stored state of a subscription.
type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "ACTIVE"
	SubscriptionCancelled SubscriptionStatus = "CANCELLED"
	SubscriptionExpired   SubscriptionStatus = "EXPIRED"
)

// ValidSubscriptionStatus reports whether s is a stored subscription state.
func ValidSubscriptionStatus(s string) bool {
	switch SubscriptionStatus(s) {
	case SubscriptionActive, SubscriptionCancelled, SubscriptionExpired:
		return true
	}
	return false
}

// Workspace is the tenancy boundary. Every other entity belongs to
// exactly one workspace. ExternalID is the client-facing key, distinct
// from the numeric primary key.
type Workspace struct {
	ID              uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	ExternalID      string    `json:"workspaceId" gorm:"column:external_id;type:varchar(100);uniqueIndex;not null"`
	Name            string    `json:"name" gorm:"type:varchar(255);not null"`
	RealDataEnabled bool      `json:"realDataEnabled" gorm:"not null;default:false"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// User is a workspace member or an imported customer record.
// Email is unique within a workspace, not globally.
type User struct {
	ID          uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Email       string    `json:"email" gorm:"type:varchar(255);not null;uniqueIndex:idx_users_email_ws"`
	Name        string    `json:"name" gorm:"type:varchar(255);not null"`
	Password    string    `json:"-" gorm:"not null"` // bcrypt digest, never exposed
	Role        Role      `json:"role" gorm:"type:varchar(20);not null;default:'USER'"`
	WorkspaceID uint      `json:"workspaceId" gorm:"not null;index;uniqueIndex:idx_users_email_ws"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Order belongs to one workspace and one user.
type Order struct {
	ID          uint            `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID      uint            `json:"userId" gorm:"not null;index"`
	WorkspaceID uint            `json:"workspaceId" gorm:"not null;index"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:decimal(12,2);not null"`
	Status      OrderStatus     `json:"status" gorm:"type:varchar(20);not null"`
	CreatedAt   time.Time       `json:"createdAt" gorm:"index"`
	UpdatedAt   time.Time       `json:"updatedAt"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// Subscription belongs to one workspace and one user.
// EndDate, when present, should be >= StartDate; a violation is accepted
// with a warning at import time, so reads must tolerate it.
type Subscription struct {
	ID          uint               `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID      uint               `json:"userId" gorm:"not null;index"`
	WorkspaceID uint               `json:"workspaceId" gorm:"not null;index"`
	Plan        string             `json:"plan" gorm:"type:varchar(100);not null"`
	Status      SubscriptionStatus `json:"status" gorm:"type:varchar(20);not null"`
	StartDate   time.Time          `json:"startDate" gorm:"not null"`
	EndDate     *time.Time         `json:"endDate"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// Activity is a workspace-scoped event feed entry.
type Activity struct {
	ID          uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID      uint      `json:"userId" gorm:"not null;index"`
	WorkspaceID uint      `json:"workspaceId" gorm:"not null;index"`
	Action      string    `json:"action" gorm:"type:varchar(50);not null;index"`
	Description string    `json:"description" gorm:"type:text"`
	CreatedAt   time.Time `json:"createdAt" gorm:"index"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
