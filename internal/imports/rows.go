package imports

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/flowsight/flowsight/internal/apiserver/database"
)

// UserRow is a validated users-CSV row ready for import.
// CreatedAt is nil when the column was absent or unparseable; the
// importer substitutes the import time.
type UserRow struct {
	Email     string
	Name      string
	Role      database.Role
	CreatedAt *time.Time
}

// OrderRow is a validated orders-CSV row ready for import. Status has
// already been normalized to a stored state.
type OrderRow struct {
	Email     string
	Amount    decimal.Decimal
	Status    database.OrderStatus
	CreatedAt time.Time
}

// SubscriptionRow is a validated subscriptions-CSV row ready for import.
// EndDate is nil when the column was empty or unparseable.
type SubscriptionRow struct {
	Email     string
	Plan      string
	Status    database.SubscriptionStatus
	StartDate time.Time
	EndDate   *time.Time
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
}

// parseDate accepts ISO 8601 timestamps and plain dates.
func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
