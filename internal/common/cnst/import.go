package cnst

// ImportType identifies which entity a CSV upload targets.
type ImportType string

const (
	// ImportUsers imports user rows
	ImportUsers ImportType = "users"
	// ImportOrders imports order rows
	ImportOrders ImportType = "orders"
	// ImportSubscriptions imports subscription rows
	ImportSubscriptions ImportType = "subscriptions"
)

// Valid reports whether t is one of the recognized import types.
func (t ImportType) Valid() bool {
	switch t {
	case ImportUsers, ImportOrders, ImportSubscriptions:
		return true
	}
	return false
}

// DemoWorkspaceID is the external id of the reserved shared demo workspace.
// It is created lazily and never deleted.
const DemoWorkspaceID = "workspace_demo"

// DemoWorkspaceName is the display name of the demo workspace.
const DemoWorkspaceName = "Demo Workspace"
