package diag

import "strings"

// Level mirrors the build tool's diagnostic level. It is informative only:
// classification is driven by Code.
type Level uint8

const (
	LevelUnknown Level = iota
	LevelHelp
	LevelNote
	LevelWarning
	// LevelError covers "error" and internal compiler errors.
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelHelp:
		return "help"
	case LevelNote:
		return "note"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	}
	return "unknown"
}

// ParseLevel maps the wire representation onto Level.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "help":
		return LevelHelp
	case "note", "failure-note":
		return LevelNote
	case "warning":
		return LevelWarning
	case "error", "error: internal compiler error":
		return LevelError
	}
	return LevelUnknown
}
