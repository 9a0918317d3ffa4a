// Package version holds build metadata of the snafu-upgrade binary.
// The variables can be overridden at build time via -ldflags.
package version

import (
	"strings"

	"github.com/fatih/color"
)

var (
	versionMajorColor = color.New(color.FgYellow, color.Bold)
	versionMinorColor = color.New(color.FgGreen, color.Bold)
	versionPatchColor = color.New(color.FgBlue, color.Bold)

	// Version is the semantic version of the tool.
	Version = "0.3.0"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// GitMessage is an optional git commit message.
	GitMessage = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

// Colored renders Version with each numeric component in its own color.
// Anything after the patch number (a pre-release tag) is left plain.
func Colored() string {
	v := strings.TrimSpace(Version)
	parts := strings.SplitN(v, ".", 3)
	if len(parts) != 3 {
		return v
	}
	patch, rest := parts[2], ""
	if i := strings.IndexAny(patch, "-+"); i >= 0 {
		patch, rest = patch[:i], patch[i:]
	}
	return versionMajorColor.Sprint(parts[0]) + "." +
		versionMinorColor.Sprint(parts[1]) + "." +
		versionPatchColor.Sprint(patch) + rest
}
