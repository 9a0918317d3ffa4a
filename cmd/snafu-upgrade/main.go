package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"snafu-upgrade/internal/project"
	"snafu-upgrade/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "snafu-upgrade",
	Short: "Helps upgrade SNAFU between semver-incompatible versions",
	Long: `snafu-upgrade runs cargo check, rewrites the context selectors and
with_context closures the compiler complains about, and repeats until the
build has nothing left to rewrite.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runUpgrade,
}

// main registers subcommands and global flags and executes the root command.
// Exit status: 0 converged or dry run, 1 no convergence, 2 fatal error.
func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(journalCmd)
	rootCmd.AddCommand(codesCmd)

	// Глобальные флаги
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().String("directory", "", "only change files within this directory (default: the workspace root)")
	rootCmd.PersistentFlags().String("config", "", "configuration file (default: <root>/"+project.ConfigFileName+")")

	rootCmd.PersistentFlags().String("trace", "", "write trace events to a file (- for stderr)")
	rootCmd.PersistentFlags().String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	rootCmd.PersistentFlags().String("trace-mode", "stream", "trace storage (stream|ring|both)")
	rootCmd.PersistentFlags().String("trace-format", "auto", "trace output format (auto|text|ndjson)")
	rootCmd.PersistentFlags().Int("trace-ring-size", 4096, "events kept by the ring tracer")
	rootCmd.PersistentFlags().Duration("trace-heartbeat", 0, "emit a heartbeat event at this interval (0 disables)")

	// Ctrl-C cancels the running cargo check and the loop
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(reportError(os.Stderr, err))
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
