// Package version provides version information and build metadata for imgdedup.
//
// Values come from, in order of preference:
//   - Compile-time variables (Version, Commit, Date) set via -ldflags
//   - Runtime build info from debug.ReadBuildInfo()
//   - Fallback defaults for development builds
//
// Build Integration:
//
//	-ldflags "-X github.com/dendrascience/imgdedup/version.Version=v1.0.0 -X github.com/dendrascience/imgdedup/version.Commit=abc123"
//
// The same Info value backs `imgdedup --version` and the tool_version field
// of JSON run summaries.
package version
