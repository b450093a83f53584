package util

import (
	"time"

	"github.com/dendrascience/imgdedup/version"
)

// Metadata identifies the build and time that produced a JSON document.
type Metadata struct {
	ToolVersion string    `json:"tool_version"`
	GeneratedAt time.Time `json:"generated_at"`
}

// GetVersion returns the current imgdedup version string.
// It delegates to the version package to get the version information.
func GetVersion() string {
	return version.GetVersion()
}

// NewMetadata stamps the current version and UTC time.
func NewMetadata() Metadata {
	return Metadata{
		ToolVersion: GetVersion(),
		GeneratedAt: time.Now().UTC(),
	}
}
