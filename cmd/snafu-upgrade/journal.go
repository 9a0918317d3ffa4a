package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"snafu-upgrade/internal/driver"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Show the last recorded run for this project",
	Long: `Show the last run recorded with --journal for the project root,
cycle by cycle, with the anchors planned in each file.`,
	Args: cobra.NoArgs,
	RunE: runJournal,
}

func init() {
	journalCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

func runJournal(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fatal(fmt.Errorf("failed to get format flag: %w", err))
	}
	useColor, err := readColor(cmd, os.Stdout)
	if err != nil {
		return fatal(err)
	}
	applyColor(useColor)

	root, err := resolveProjectRoot(cmd.Context())
	if err != nil {
		return fatal(err)
	}
	journal, err := driver.OpenJournal(appName)
	if err != nil {
		return fatal(err)
	}
	entry, ok, err := journal.Get(root.Dir)
	if err != nil {
		return fatal(err)
	}
	if !ok {
		return fatal(fmt.Errorf("no journal for %s; run with --journal first", root.Dir))
	}

	switch format {
	case "pretty":
		return renderJournal(cmd.OutOrStdout(), entry)
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(entry)
	default:
		return fatal(fmt.Errorf("unknown format: %s", format))
	}
}

// renderJournal prints entry with one line per cycle and file and one line
// per anchor.
func renderJournal(w io.Writer, entry *driver.JournalEntry) error {
	heading := color.New(color.Bold)
	mode := "write"
	if entry.DryRun {
		mode = "dry run"
	}
	elapsed := entry.FinishedAt.Sub(entry.StartedAt).Round(time.Millisecond)
	if _, err := fmt.Fprintf(w, "%s\n", heading.Sprintf("%s (%s, suffix %s)", entry.Root, mode, entry.Suffix)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "started %s, took %s: %s\n",
		entry.StartedAt.Format(time.RFC3339), elapsed, entry.Status); err != nil {
		return err
	}
	if entry.Error != "" {
		if _, err := fmt.Fprintf(w, "error: %s\n", entry.Error); err != nil {
			return err
		}
	}
	for _, c := range entry.Cycles {
		if _, err := fmt.Fprintf(w, "cycle %d: %d messages, %d files\n", c.Index, c.Messages, len(c.Files)); err != nil {
			return err
		}
		for _, f := range c.Files {
			state := "unchanged"
			if f.Written {
				state = "written"
			}
			if _, err := fmt.Fprintf(w, "  %s: %d applied, %d skipped, %s\n", f.Path, f.Applied, f.Skipped, state); err != nil {
				return err
			}
			for _, a := range f.Anchors {
				if _, err := fmt.Fprintf(w, "    %d..%d %s\n", a.Start, a.End, a.Category); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
