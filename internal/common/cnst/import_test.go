package cnst

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImportType_Valid(t *testing.T) {
	assert.True(t, ImportUsers.Valid())
	assert.True(t, ImportOrders.Valid())
	assert.True(t, ImportSubscriptions.Valid())
	assert.False(t, ImportType("invoices").Valid())
	assert.False(t, ImportType("").Valid())
}

func TestDemoWorkspaceConstants(t *testing.T) {
	assert.Equal(t, "workspace_demo", DemoWorkspaceID)
	assert.Equal(t, "Demo Workspace", DemoWorkspaceName)
}
