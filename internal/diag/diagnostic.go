package diag

import (
	"cmp"
	"strings"
)

// ReasonCompilerMessage tags the only record kind that carries a Message.
const ReasonCompilerMessage = "compiler-message"

// Code is the opaque identifier the build tool assigns to a diagnostic shape.
type Code string

func (c Code) String() string {
	return string(c)
}

// Record is one decoded line of build tool output.
// Message is nil for every reason other than ReasonCompilerMessage.
type Record struct {
	Reason  string
	Message *Message
}

// IsCompilerMessage reports whether the record carries a diagnostic.
func (r Record) IsCompilerMessage() bool {
	return r.Reason == ReasonCompilerMessage && r.Message != nil
}

// Message is a single compiler diagnostic.
type Message struct {
	Code  *Code // nil when the diagnostic has no code
	Level Level
	Text  string
	Spans []Span
}

// HasCode reports whether the message carries a diagnostic code.
func (m *Message) HasCode() bool {
	return m != nil && m.Code != nil && *m.Code != ""
}

// Span points at a byte range of a file relative to the project root.
type Span struct {
	ByteStart uint32
	ByteEnd   uint32
	FileName  string
	IsPrimary bool
	Label     string
}

// CompareSpans orders spans by (ByteStart, ByteEnd, FileName, IsPrimary).
// Label does not take part in ordering or identity.
func CompareSpans(a, b Span) int {
	if c := cmp.Compare(a.ByteStart, b.ByteStart); c != 0 {
		return c
	}
	if c := cmp.Compare(a.ByteEnd, b.ByteEnd); c != 0 {
		return c
	}
	if c := strings.Compare(a.FileName, b.FileName); c != 0 {
		return c
	}
	switch {
	case a.IsPrimary == b.IsPrimary:
		return 0
	case !a.IsPrimary:
		return -1
	default:
		return 1
	}
}
