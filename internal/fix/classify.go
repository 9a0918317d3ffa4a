package fix

import (
	"snafu-upgrade/internal/diag"
	"snafu-upgrade/internal/source"
)

// Anchor is a rewrite located in a file named relative to the project root.
type Anchor struct {
	File    string
	Rewrite Rewrite
}

// Classify turns one message into anchors. A message without a code, or with
// a code outside both allow-lists, yields nothing. Every span that passes the
// category's primary/secondary filter becomes its own anchor.
func Classify(m *diag.Message, codes diag.CodeTable) []Anchor {
	if m == nil {
		return nil
	}
	cat := codes.Classify(m)
	if cat == diag.CategoryNone {
		return nil
	}
	wantPrimary := cat.WantsPrimary()

	var out []Anchor
	for _, sp := range m.Spans {
		if sp.IsPrimary != wantPrimary {
			continue
		}
		rw, ok := NewRewrite(cat, source.Range{Start: sp.ByteStart, End: sp.ByteEnd})
		if !ok {
			continue
		}
		out = append(out, Anchor{File: sp.FileName, Rewrite: rw})
	}
	return out
}
