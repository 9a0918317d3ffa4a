package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// toggle is the auto|on|off value shared by --color and --ui.
type toggle uint8

const (
	toggleAuto toggle = iota
	toggleOn
	toggleOff
)

func (t toggle) String() string {
	switch t {
	case toggleOn:
		return "on"
	case toggleOff:
		return "off"
	default:
		return "auto"
	}
}

// parseToggle reads the value of the flag called name.
func parseToggle(name, value string) (toggle, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "auto":
		return toggleAuto, nil
	case "on":
		return toggleOn, nil
	case "off":
		return toggleOff, nil
	default:
		return toggleAuto, fmt.Errorf("invalid --%s value %q (expected auto|on|off)", name, value)
	}
}

// enabled resolves auto by asking whether f is a terminal.
func (t toggle) enabled(f *os.File) bool {
	switch t {
	case toggleOn:
		return true
	case toggleOff:
		return false
	default:
		return isTerminal(f)
	}
}

// readColor resolves the global --color flag against the terminal.
// NO_COLOR only turns off the auto mode.
func readColor(cmd *cobra.Command, out *os.File) (bool, error) {
	value, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false, fmt.Errorf("failed to get color flag: %w", err)
	}
	mode, err := parseToggle("color", value)
	if err != nil {
		return false, err
	}
	if mode == toggleAuto && os.Getenv("NO_COLOR") != "" {
		return false, nil
	}
	return mode.enabled(out), nil
}

// applyColor sets the process-wide default used by packages that print
// through fatih/color without their own palette.
func applyColor(enabled bool) {
	color.NoColor = !enabled
}
