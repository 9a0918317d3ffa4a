package diagfmt

import (
	"encoding/json"
	"io"

	"snafu-upgrade/internal/driver"
	"snafu-upgrade/internal/fix"
	"snafu-upgrade/internal/observ"
	"snafu-upgrade/internal/source"
)

// LocationJSON представляет местоположение в файле для JSON
type LocationJSON struct {
	File      string `json:"file"`
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
	StartLine uint32 `json:"start_line,omitempty"`
	StartCol  uint32 `json:"start_col,omitempty"`
	EndLine   uint32 `json:"end_line,omitempty"`
	EndCol    uint32 `json:"end_col,omitempty"`
}

// AnchorJSON is one planned rewrite.
type AnchorJSON struct {
	Kind     string       `json:"kind"`
	Location LocationJSON `json:"location"`
}

// FileJSON is the outcome of patching one file in one cycle.
type FileJSON struct {
	Path    string       `json:"path"`
	Applied int          `json:"applied"`
	Skipped int          `json:"skipped"`
	Written bool         `json:"written"`
	Anchors []AnchorJSON `json:"anchors,omitempty"`
}

// CycleJSON is one check cycle.
type CycleJSON struct {
	Index    int        `json:"index"`
	Messages int        `json:"messages"`
	Anchors  int        `json:"anchors"`
	Files    []FileJSON `json:"files"`
}

// ReportOutput представляет корневую структуру JSON вывода
type ReportOutput struct {
	Status   string         `json:"status"`
	Message  string         `json:"message,omitempty"`
	Cycles   []CycleJSON    `json:"cycles"`
	Timings  *observ.Report `json:"timings,omitempty"`
	Warnings []string       `json:"warnings,omitempty"`
}

func makeLocation(file string, r source.Range, files *Files, pathMode PathMode, includePositions bool) LocationJSON {
	loc := LocationJSON{
		File:      files.displayPath(file, pathMode),
		StartByte: r.Start,
		EndByte:   r.End,
	}
	if includePositions {
		if f := files.Get(file); f != nil {
			startPos, endPos := f.Resolve(r)
			loc.StartLine = startPos.Line
			loc.StartCol = startPos.Col
			loc.EndLine = endPos.Line
			loc.EndCol = endPos.Col
		}
	}
	return loc
}

// BuildReportOutput формирует структуру JSON-вывода без сериализации.
func BuildReportOutput(res *driver.Result, files *Files, opts JSONOpts) ReportOutput {
	out := ReportOutput{
		Status:   res.Status.String(),
		Cycles:   make([]CycleJSON, 0, len(res.Cycles)),
		Timings:  opts.Timings,
		Warnings: res.Warnings,
	}
	if err := res.Err(); err != nil {
		out.Message = err.Error()
	}
	for _, c := range res.Cycles {
		seedDryRun(files, c.Changes)
		cj := CycleJSON{
			Index:    c.Index,
			Messages: c.Messages,
			Anchors:  c.Plan.Len(),
			Files:    make([]FileJSON, 0, len(c.Plan)),
		}
		changes := changesByPath(c.Changes)
		for _, path := range c.Plan.Files() {
			fj := FileJSON{Path: files.displayPath(path, opts.PathMode)}
			if ch, ok := changes[path]; ok {
				fj.Applied, fj.Skipped, fj.Written = ch.Applied, ch.Skipped, ch.Written
			}
			if opts.IncludeAnchors {
				for _, rw := range c.Plan[path] {
					fj.Anchors = append(fj.Anchors, AnchorJSON{
						Kind:     rw.Category().String(),
						Location: makeLocation(path, rw.Range(), files, opts.PathMode, opts.IncludePositions),
					})
				}
			}
			cj.Files = append(cj.Files, fj)
		}
		out.Cycles = append(out.Cycles, cj)
	}
	return out
}

// JSON writes the run report as indented JSON.
func JSON(w io.Writer, res *driver.Result, files *Files, opts JSONOpts) error {
	output := BuildReportOutput(res, files, opts)
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

func changesByPath(changes []fix.FileChange) map[string]fix.FileChange {
	m := make(map[string]fix.FileChange, len(changes))
	for _, ch := range changes {
		m[ch.Path] = ch
	}
	return m
}

func seedDryRun(files *Files, changes []fix.FileChange) {
	for _, ch := range changes {
		files.Seed(ch.Path, ch.Before)
	}
}
