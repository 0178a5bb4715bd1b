package imports

import "github.com/flowsight/flowsight/internal/common/cnst"

// Template returns a sample CSV for the given import type, suitable for
// download as a starting point. Empty string for unknown types.
func Template(importType cnst.ImportType) string {
	switch importType {
	case cnst.ImportUsers:
		return `email,name,role,created_at
admin@example.com,John Admin,ADMIN,2024-01-01T00:00:00Z
manager@example.com,Jane Manager,MANAGER,2024-01-05T10:00:00Z
user@example.com,Bob User,USER,2024-01-10T15:30:00Z`

	case cnst.ImportOrders:
		return `email,amount,status,created_at
john@example.com,99.00,COMPLETED,2024-01-15T10:30:00Z
jane@example.com,149.00,COMPLETED,2024-01-16T14:20:00Z
bob@example.com,49.00,PENDING,2024-01-17T09:15:00Z`

	case cnst.ImportSubscriptions:
		return `email,plan,status,start_date,end_date
john@example.com,Pro,ACTIVE,2024-01-01T00:00:00Z,2024-12-31T23:59:59Z
jane@example.com,Basic,ACTIVE,2024-01-15T00:00:00Z,
bob@example.com,Enterprise,CANCELLED,2024-01-10T00:00:00Z,2024-02-10T00:00:00Z`

	default:
		return ""
	}
}
