package fix

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Preview writes a line diff of a dry-run change. Only changed lines are
// shown, each hunk headed by its line number in the original file.
func Preview(w io.Writer, change FileChange, colored bool) error {
	removed := color.New(color.FgRed)
	added := color.New(color.FgGreen)
	header := color.New(color.FgCyan)
	for _, c := range []*color.Color{removed, added, header} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	if _, err := fmt.Fprintf(w, "--- a/%s\n+++ b/%s\n", change.Path, change.Path); err != nil {
		return err
	}

	dmp := diffmatchpatch.New()
	before, after, lines := dmp.DiffLinesToChars(string(change.Before), string(change.After))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(before, after, false), lines)

	oldLine, newLine := 1, 1
	inHunk := false
	for _, d := range diffs {
		chunk := splitLines(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			oldLine += len(chunk)
			newLine += len(chunk)
			inHunk = false
		case diffmatchpatch.DiffDelete:
			if !inHunk {
				if _, err := header.Fprintf(w, "@@ -%d +%d @@\n", oldLine, newLine); err != nil {
					return err
				}
				inHunk = true
			}
			for _, l := range chunk {
				if _, err := removed.Fprintf(w, "-%s\n", l); err != nil {
					return err
				}
			}
			oldLine += len(chunk)
		case diffmatchpatch.DiffInsert:
			if !inHunk {
				if _, err := header.Fprintf(w, "@@ -%d +%d @@\n", oldLine, newLine); err != nil {
					return err
				}
				inHunk = true
			}
			for _, l := range chunk {
				if _, err := added.Fprintf(w, "+%s\n", l); err != nil {
					return err
				}
			}
			newLine += len(chunk)
		}
	}
	return nil
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}
