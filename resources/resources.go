// Package resources holds assets embedded into the binary.
package resources

import (
	"embed"
)

//go:embed scenarios/*.yaml
var ScenarioFiles embed.FS
