package imports

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/flowsight/flowsight/internal/apiserver/database"
)

// ValidationError describes one problem found while validating a CSV.
// Row 0 with field "headers" marks a file-level problem.
type ValidationError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validation is the outcome of validating one CSV. Rows holds the typed
// rows that passed; rows that only produced warnings are included.
// Valid is true iff Errors is empty.
type Validation[T any] struct {
	Valid    bool
	Errors   []ValidationError
	Warnings []ValidationError
	Rows     []T
}

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func validEmail(email string) bool {
	return emailRe.MatchString(email)
}

// orderStatusAliases folds payment-provider vocabulary onto the stored
// order states. Keys are matched after trimming and uppercasing.
var orderStatusAliases = map[string]database.OrderStatus{
	"PAID":      database.OrderCompleted,
	"COMPLETED": database.OrderCompleted,
	"PENDING":   database.OrderPending,
	"REFUNDED":  database.OrderCancelled,
	"CANCELLED": database.OrderCancelled,
}

// NormalizeOrderStatus maps a raw status value to its stored state.
// The second return is false for unrecognized values.
func NormalizeOrderStatus(raw string) (database.OrderStatus, bool) {
	status, ok := orderStatusAliases[strings.ToUpper(strings.TrimSpace(raw))]
	return status, ok
}

// missingColumns checks that every required canonical column is present.
// A non-nil result is a file-level error and validation stops there.
func missingColumns(headers []string, required []string) *ValidationError {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[h] = true
	}
	var missing []string
	for _, field := range required {
		if !present[field] {
			missing = append(missing, field)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &ValidationError{
		Row:     0,
		Field:   "headers",
		Message: "Missing required columns: " + strings.Join(missing, ", "),
	}
}

// ValidateUsers checks a users CSV. Required columns: email, name.
// Role defaults to USER; a bad created_at only warns, the importer falls
// back to the import time.
func ValidateUsers(headers []string, rows []Row) *Validation[UserRow] {
	v := &Validation[UserRow]{}
	headers, rows = NormalizeRows(headers, rows)

	if missing := missingColumns(headers, []string{"email", "name"}); missing != nil {
		v.Errors = append(v.Errors, *missing)
		return v
	}

	for i, row := range rows {
		rowNum := i + 2 // row 1 is the header line
		rowValid := true
		out := UserRow{Email: row["email"], Name: row["name"], Role: database.RoleUser}

		if row["email"] == "" || !validEmail(row["email"]) {
			v.Errors = append(v.Errors, ValidationError{rowNum, "email", "Invalid or missing email address"})
			rowValid = false
		}

		if strings.TrimSpace(row["name"]) == "" {
			v.Errors = append(v.Errors, ValidationError{rowNum, "name", "Name is required"})
			rowValid = false
		}

		if role := row["role"]; role != "" {
			if !database.ValidRole(role) {
				v.Errors = append(v.Errors, ValidationError{rowNum, "role",
					fmt.Sprintf("Role must be one of: %s, %s, %s", database.RoleAdmin, database.RoleManager, database.RoleUser)})
				rowValid = false
			} else {
				out.Role = database.Role(role)
			}
		}

		if raw := row["created_at"]; strings.TrimSpace(raw) != "" {
			if t, ok := parseDate(raw); ok {
				out.CreatedAt = &t
			} else {
				v.Warnings = append(v.Warnings, ValidationError{rowNum, "created_at", "Invalid date format, using current date"})
			}
		}

		if rowValid {
			v.Rows = append(v.Rows, out)
		}
	}

	v.Valid = len(v.Errors) == 0
	return v
}

// ValidateOrders checks an orders CSV. Required columns: email, amount,
// status, created_at. Unlike users, a missing or unparseable created_at
// is a hard error here.
func ValidateOrders(headers []string, rows []Row) *Validation[OrderRow] {
	v := &Validation[OrderRow]{}
	headers, rows = NormalizeRows(headers, rows)

	if missing := missingColumns(headers, []string{"email", "amount", "status", "created_at"}); missing != nil {
		v.Errors = append(v.Errors, *missing)
		return v
	}

	for i, row := range rows {
		rowNum := i + 2
		rowValid := true
		out := OrderRow{Email: row["email"]}

		if row["email"] == "" || !validEmail(row["email"]) {
			v.Errors = append(v.Errors, ValidationError{rowNum, "email", "Invalid or missing email address"})
			rowValid = false
		}

		amount, err := decimal.NewFromString(row["amount"])
		if err != nil || !amount.IsPositive() {
			v.Errors = append(v.Errors, ValidationError{rowNum, "amount", "Amount must be a positive number"})
			rowValid = false
		} else {
			out.Amount = amount
		}

		if status, ok := NormalizeOrderStatus(row["status"]); ok {
			out.Status = status
		} else {
			v.Errors = append(v.Errors, ValidationError{rowNum, "status",
				fmt.Sprintf("Status must be one of: PAID, COMPLETED, PENDING, REFUNDED, CANCELLED (mapped to: %s, %s, %s)",
					database.OrderCompleted, database.OrderPending, database.OrderCancelled)})
			rowValid = false
		}

		if t, ok := parseDate(strings.TrimSpace(row["created_at"])); ok {
			out.CreatedAt = t
		} else {
			v.Errors = append(v.Errors, ValidationError{rowNum, "created_at", "Valid created_at date is required (ISO 8601 format)"})
			rowValid = false
		}

		if rowValid {
			v.Rows = append(v.Rows, out)
		}
	}

	v.Valid = len(v.Errors) == 0
	return v
}

// ValidateSubscriptions checks a subscriptions CSV. Required columns:
// email, plan, status, start_date. end_date problems only warn.
func ValidateSubscriptions(headers []string, rows []Row) *Validation[SubscriptionRow] {
	v := &Validation[SubscriptionRow]{}
	headers, rows = NormalizeRows(headers, rows)

	if missing := missingColumns(headers, []string{"email", "plan", "status", "start_date"}); missing != nil {
		v.Errors = append(v.Errors, *missing)
		return v
	}

	for i, row := range rows {
		rowNum := i + 2
		rowValid := true
		out := SubscriptionRow{Email: row["email"], Plan: row["plan"]}

		if row["email"] == "" || !validEmail(row["email"]) {
			v.Errors = append(v.Errors, ValidationError{rowNum, "email", "Invalid or missing email address"})
			rowValid = false
		}

		if strings.TrimSpace(row["plan"]) == "" {
			v.Errors = append(v.Errors, ValidationError{rowNum, "plan", "Plan name is required"})
			rowValid = false
		}

		if !database.ValidSubscriptionStatus(row["status"]) {
			v.Errors = append(v.Errors, ValidationError{rowNum, "status",
				fmt.Sprintf("Status must be one of: %s, %s, %s",
					database.SubscriptionActive, database.SubscriptionCancelled, database.SubscriptionExpired)})
			rowValid = false
		} else {
			out.Status = database.SubscriptionStatus(row["status"])
		}

		start, startOK := parseDate(strings.TrimSpace(row["start_date"]))
		if !startOK {
			v.Errors = append(v.Errors, ValidationError{rowNum, "start_date", "Valid start_date is required (ISO 8601 format)"})
			rowValid = false
		} else {
			out.StartDate = start
		}

		if raw := strings.TrimSpace(row["end_date"]); raw != "" {
			if end, ok := parseDate(raw); !ok {
				v.Warnings = append(v.Warnings, ValidationError{rowNum, "end_date", "Invalid end_date format, will be set to null"})
			} else {
				out.EndDate = &end
				if startOK && end.Before(start) {
					v.Warnings = append(v.Warnings, ValidationError{rowNum, "end_date", "end_date is before start_date"})
				}
			}
		}

		if rowValid {
			v.Rows = append(v.Rows, out)
		}
	}

	v.Valid = len(v.Errors) == 0
	return v
}
