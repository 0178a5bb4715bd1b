package version

import (
	_ "embed"
)

//go:embed VERSION
var Version string

// Get returns the current FlowSight release string.
func Get() string {
	return Version
}
