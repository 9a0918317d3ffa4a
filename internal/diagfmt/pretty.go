package diagfmt

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"snafu-upgrade/internal/driver"
	"snafu-upgrade/internal/fix"
)

// Pretty форматирует отчёт о прогоне в человекочитаемый вид.
// Для каждого цикла печатает:
//
//	cycle <n>: <messages> messages, <anchors> anchors in <files> files
//	  <path>: <applied> applied, <skipped> skipped
//
// затем (опционально) якоря в виде <path>:<line>:<col>, diff для dry-run и
// итоговую строку статуса. Строка о несходимости уходит в opts.Stderr,
// если он задан. Цвет включается опцией.
func Pretty(w io.Writer, res *driver.Result, files *Files, opts PrettyOpts) error {
	p := newPalette(opts.Color)

	for _, c := range res.Cycles {
		seedDryRun(files, c.Changes)
		if _, err := fmt.Fprintf(w, "%s %d: %d %s, %d %s in %d %s\n",
			p.heading.Sprint("cycle"), c.Index,
			c.Messages, plural(c.Messages, "message"),
			c.Plan.Len(), plural(c.Plan.Len(), "anchor"),
			len(c.Plan), plural(len(c.Plan), "file")); err != nil {
			return err
		}
		changes := changesByPath(c.Changes)
		for _, path := range c.Plan.Files() {
			ch, ok := changes[path]
			if err := prettyFile(w, p, path, ch, ok, files, opts); err != nil {
				return err
			}
			if opts.ShowAnchors {
				if err := prettyAnchors(w, p, path, c.Plan[path], files, opts); err != nil {
					return err
				}
			}
			if opts.ShowDiff && ok && ch.Before != nil && ch.Changed() {
				if err := fix.Preview(w, ch, opts.Color); err != nil {
					return err
				}
			}
		}
	}

	for _, warning := range res.Warnings {
		if _, err := fmt.Fprintf(w, "%s %s\n", p.warn.Sprint("warning:"), warning); err != nil {
			return err
		}
	}
	return prettyStatus(w, p, res, opts.Stderr)
}

func prettyFile(w io.Writer, p palette, path string, ch fix.FileChange, ok bool, files *Files, opts PrettyOpts) error {
	display := files.displayPath(path, opts.PathMode)
	if !ok {
		_, err := fmt.Fprintf(w, "  %s: %s\n", p.path.Sprint(display), p.dim.Sprint("not reached"))
		return err
	}
	var state string
	switch {
	case ch.Written:
		state = p.ok.Sprint("written")
	case ch.Before != nil && ch.Changed():
		state = p.warn.Sprintf("would write modified content to '%s'", display)
	default:
		state = p.dim.Sprint("unchanged")
	}
	_, err := fmt.Fprintf(w, "  %s: %d applied, %d skipped, %s\n", p.path.Sprint(display), ch.Applied, ch.Skipped, state)
	return err
}

func prettyAnchors(w io.Writer, p palette, path string, rewrites []fix.Rewrite, files *Files, opts PrettyOpts) error {
	display := files.displayPath(path, opts.PathMode)
	f := files.Get(path)
	for _, rw := range rewrites {
		r := rw.Range()
		loc := fmt.Sprintf("%s@%s", display, r)
		if f != nil {
			start := f.Position(r.Start)
			loc = fmt.Sprintf("%s:%d:%d", display, start.Line, start.Col)
		}
		if _, err := fmt.Fprintf(w, "    %s %s\n", p.dim.Sprint(loc), rw.Category()); err != nil {
			return err
		}
	}
	return nil
}

func prettyStatus(w io.Writer, p palette, res *driver.Result, stderr io.Writer) error {
	n := len(res.Cycles)
	var line string
	switch res.Status {
	case driver.StatusConverged:
		line = p.ok.Sprintf("converged after %d %s", n, plural(n, "cycle"))
	case driver.StatusDryRun:
		line = p.ok.Sprint("dry run finished; no files were written")
	default:
		line = p.err.Sprint(res.Err().Error())
		if stderr != nil {
			w = stderr
		}
	}
	_, err := fmt.Fprintln(w, line)
	return err
}

type palette struct {
	heading, path, ok, warn, err, dim *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		heading: color.New(color.Bold),
		path:    color.New(color.FgCyan),
		ok:      color.New(color.FgGreen),
		warn:    color.New(color.FgYellow),
		err:     color.New(color.FgRed, color.Bold),
		dim:     color.New(color.Faint),
	}
	for _, c := range []*color.Color{p.heading, p.path, p.ok, p.warn, p.err, p.dim} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
