package imports

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowsight/flowsight/internal/apiserver/database"
)

func TestValidateUsers(t *testing.T) {
	parsed := Parse(`email,name,role,created_at
alice@example.com,Alice,ADMIN,2024-01-01T00:00:00Z
bob@example.com,Bob,,
carol@example.com,Carol,MANAGER,not-a-date`)
	require.Empty(t, parsed.Errors)

	v := ValidateUsers(parsed.Headers, parsed.Rows)
	assert.True(t, v.Valid)
	assert.Empty(t, v.Errors)
	require.Len(t, v.Rows, 3)

	assert.Equal(t, database.RoleAdmin, v.Rows[0].Role)
	require.NotNil(t, v.Rows[0].CreatedAt)
	assert.Equal(t, 2024, v.Rows[0].CreatedAt.Year())

	// Blank role defaults to USER.
	assert.Equal(t, database.RoleUser, v.Rows[1].Role)
	assert.Nil(t, v.Rows[1].CreatedAt)

	// Unparseable created_at is only a warning; the row stays importable.
	require.Len(t, v.Warnings, 1)
	assert.Equal(t, 4, v.Warnings[0].Row)
	assert.Equal(t, "created_at", v.Warnings[0].Field)
	assert.Equal(t, "Invalid date format, using current date", v.Warnings[0].Message)
	assert.Nil(t, v.Rows[2].CreatedAt)
}

func TestValidateUsersErrors(t *testing.T) {
	parsed := Parse(`email,name,role
not-an-email,Alice,ADMIN
bob@example.com,,USER
carol@example.com,Carol,SUPERADMIN`)

	v := ValidateUsers(parsed.Headers, parsed.Rows)
	assert.False(t, v.Valid)
	require.Len(t, v.Errors, 3)
	assert.Equal(t, ValidationError{2, "email", "Invalid or missing email address"}, v.Errors[0])
	assert.Equal(t, ValidationError{3, "name", "Name is required"}, v.Errors[1])
	assert.Equal(t, ValidationError{4, "role", "Role must be one of: ADMIN, MANAGER, USER"}, v.Errors[2])
	assert.Empty(t, v.Rows)
}

func TestValidateUsersMissingColumns(t *testing.T) {
	parsed := Parse("email,role\na@example.com,USER")

	v := ValidateUsers(parsed.Headers, parsed.Rows)
	assert.False(t, v.Valid)
	require.Len(t, v.Errors, 1)
	assert.Equal(t, 0, v.Errors[0].Row)
	assert.Equal(t, "headers", v.Errors[0].Field)
	assert.Equal(t, "Missing required columns: name", v.Errors[0].Message)
	// Per-row checks do not run once columns are missing.
	assert.Empty(t, v.Rows)
}

func TestValidateUsersAliasedHeaders(t *testing.T) {
	parsed := Parse("userEmail,Name,CreatedAt\na@example.com,Alice,2024-03-01")

	v := ValidateUsers(parsed.Headers, parsed.Rows)
	assert.True(t, v.Valid)
	require.Len(t, v.Rows, 1)
	assert.Equal(t, "a@example.com", v.Rows[0].Email)
	require.NotNil(t, v.Rows[0].CreatedAt)
}

func TestValidateOrders(t *testing.T) {
	parsed := Parse(`email,amount,status,created_at
a@example.com,99.50,paid,2024-01-15T10:30:00Z
b@example.com,10,REFUNDED,2024-01-16
c@example.com,25.00,Pending,2024-01-17T00:00:00Z`)

	v := ValidateOrders(parsed.Headers, parsed.Rows)
	assert.True(t, v.Valid)
	require.Len(t, v.Rows, 3)

	// Aliases fold onto stored states, case-insensitively.
	assert.Equal(t, database.OrderCompleted, v.Rows[0].Status)
	assert.Equal(t, database.OrderCancelled, v.Rows[1].Status)
	assert.Equal(t, database.OrderPending, v.Rows[2].Status)
	assert.Equal(t, "99.5", v.Rows[0].Amount.String())
}

func TestValidateOrdersCollectsPerFieldErrors(t *testing.T) {
	parsed := Parse(`email,amount,status,created_at
good@example.com,50,COMPLETED,2024-01-01
bad@example.com,-5,SHIPPED,2024-01-02`)

	v := ValidateOrders(parsed.Headers, parsed.Rows)
	assert.False(t, v.Valid)
	// Both problems on the same row are reported independently.
	require.Len(t, v.Errors, 2)
	assert.Equal(t, 3, v.Errors[0].Row)
	assert.Equal(t, "amount", v.Errors[0].Field)
	assert.Equal(t, "Amount must be a positive number", v.Errors[0].Message)
	assert.Equal(t, 3, v.Errors[1].Row)
	assert.Equal(t, "status", v.Errors[1].Field)
	assert.Equal(t,
		"Status must be one of: PAID, COMPLETED, PENDING, REFUNDED, CANCELLED (mapped to: COMPLETED, PENDING, CANCELLED)",
		v.Errors[1].Message)
	// The good row still validates.
	require.Len(t, v.Rows, 1)
	assert.Equal(t, "good@example.com", v.Rows[0].Email)
}

func TestValidateOrdersCreatedAtRequired(t *testing.T) {
	parsed := Parse(`email,amount,status,created_at
a@example.com,50,COMPLETED,
b@example.com,50,COMPLETED,yesterday`)

	v := ValidateOrders(parsed.Headers, parsed.Rows)
	assert.False(t, v.Valid)
	require.Len(t, v.Errors, 2)
	for _, e := range v.Errors {
		assert.Equal(t, "created_at", e.Field)
		assert.Equal(t, "Valid created_at date is required (ISO 8601 format)", e.Message)
	}
	assert.Empty(t, v.Warnings)
}

func TestValidateSubscriptions(t *testing.T) {
	parsed := Parse(`email,plan,status,start_date,end_date
a@example.com,Pro,ACTIVE,2024-01-01,2024-12-31
b@example.com,Basic,ACTIVE,2024-01-15,
c@example.com,Pro,CANCELLED,2024-06-01,2024-01-01
d@example.com,Pro,EXPIRED,2024-01-01,soon`)

	v := ValidateSubscriptions(parsed.Headers, parsed.Rows)
	assert.True(t, v.Valid)
	require.Len(t, v.Rows, 4)

	assert.Nil(t, v.Rows[1].EndDate)

	// end_date before start_date and an unparseable end_date both warn
	// without invalidating the row.
	require.Len(t, v.Warnings, 2)
	assert.Equal(t, 4, v.Warnings[0].Row)
	assert.Equal(t, "end_date is before start_date", v.Warnings[0].Message)
	require.NotNil(t, v.Rows[2].EndDate)
	assert.True(t, v.Rows[2].EndDate.Before(v.Rows[2].StartDate))

	assert.Equal(t, 5, v.Warnings[1].Row)
	assert.Equal(t, "Invalid end_date format, will be set to null", v.Warnings[1].Message)
	assert.Nil(t, v.Rows[3].EndDate)
}

func TestValidateSubscriptionsStatusStrict(t *testing.T) {
	parsed := Parse(`email,plan,status,start_date
a@example.com,Pro,active,2024-01-01`)

	v := ValidateSubscriptions(parsed.Headers, parsed.Rows)
	assert.False(t, v.Valid)
	require.Len(t, v.Errors, 1)
	assert.Equal(t, "Status must be one of: ACTIVE, CANCELLED, EXPIRED", v.Errors[0].Message)
}

func TestParseDateFormats(t *testing.T) {
	for _, s := range []string{
		"2024-01-15T10:30:00Z",
		"2024-01-15T10:30:00+02:00",
		"2024-01-15T10:30:00",
		"2024-01-15 10:30:00",
		"2024-01-15",
		"2024/01/15",
	} {
		got, ok := parseDate(s)
		assert.True(t, ok, "expected %q to parse", s)
		assert.Equal(t, time.January, got.Month())
	}
	for _, s := range []string{"", "yesterday", "15-01-2024"} {
		_, ok := parseDate(s)
		assert.False(t, ok, "expected %q to fail", s)
	}
}
