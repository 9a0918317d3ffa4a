package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"snafu-upgrade/internal/diag"
	"snafu-upgrade/internal/project"
)

var codesCmd = &cobra.Command{
	Use:   "codes",
	Short: "Print the diagnostic codes that trigger a rewrite",
	Long: `Print the active code tables: the built-in defaults, overridden by the
[codes] section of the project's configuration file when there is one.`,
	Args: cobra.NoArgs,
	RunE: runCodes,
}

func runCodes(cmd *cobra.Command, args []string) error {
	settings := project.DefaultSettings()
	source := "built-in defaults"

	root, err := resolveProjectRoot(cmd.Context())
	if err == nil {
		var path string
		settings, path, err = loadSettings(cmd, root.Dir)
		if err != nil {
			return fatal(err)
		}
		if path != "" {
			source = path
		}
	} else {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v; showing defaults\n", err)
	}

	return renderCodes(cmd.OutOrStdout(), settings.Codes, source)
}

func renderCodes(w io.Writer, table diag.CodeTable, source string) error {
	if _, err := fmt.Fprintf(w, "# %s\n", source); err != nil {
		return err
	}
	rows := []struct {
		category diag.Category
		codes    []diag.Code
	}{
		{diag.CategoryContextSelector, table.ContextSelector},
		{diag.CategoryWithContext, table.WithContext},
	}
	for _, row := range rows {
		names := make([]string, len(row.codes))
		for i, c := range row.codes {
			names[i] = string(c)
		}
		if _, err := fmt.Fprintf(w, "%-16s %s\n", row.category, strings.Join(names, " ")); err != nil {
			return err
		}
	}
	return nil
}
