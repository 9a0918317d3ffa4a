package diagfmt

import (
	"io"

	"snafu-upgrade/internal/observ"
)

// PathMode specifies how file paths are displayed.
type PathMode uint8

const (
	// PathModeAuto shows paths as the build tool reported them (relative to the root).
	PathModeAuto PathMode = iota
	// PathModeAbsolute always uses absolute paths.
	PathModeAbsolute
	PathModeBasename
)

// PrettyOpts configures the human-readable report.
type PrettyOpts struct {
	Color    bool
	PathMode PathMode
	// ShowAnchors lists every anchor with its line and column.
	ShowAnchors bool
	// ShowDiff prints a line diff for every dry-run change.
	ShowDiff bool
	// Stderr receives the status line of a run that did not converge.
	// When nil it goes to the report writer.
	Stderr io.Writer
}

// JSONOpts configures the JSON report.
type JSONOpts struct {
	IncludePositions bool // добавить line/col
	PathMode         PathMode
	IncludeAnchors   bool
	Timings          *observ.Report
}
