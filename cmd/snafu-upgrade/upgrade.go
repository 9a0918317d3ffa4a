package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"snafu-upgrade/internal/buildpipeline"
	"snafu-upgrade/internal/diagfmt"
	"snafu-upgrade/internal/driver"
	"snafu-upgrade/internal/observ"
	"snafu-upgrade/internal/project"
)

const appName = "snafu-upgrade"

// init registers the flags of the upgrade run itself.
func init() {
	flags := rootCmd.Flags()
	flags.Bool("dry-run", false, "do not write changes to disk")
	flags.StringArray("extra-check-arg", nil, "extra argument to `cargo check`; may be used multiple times")
	flags.String("suffix", "Snafu", "what context selector suffix to use")
	flags.Int("max-iterations", project.DefaultMaxIterations, "how many follow-up iterations to perform before giving up")
	flags.BoolP("verbose", "v", false, "show detailed information (debug trace on stderr)")
	flags.Bool("diff", false, "with --dry-run, print a diff of every file that would change")
	flags.String("format", "pretty", "report format (pretty|json)")
	flags.Bool("journal", false, "record this run in the journal (see `snafu-upgrade journal`)")
	flags.String("ui", "auto", "progress view (auto|on|off)")
	flags.Bool("fullpath", false, "emit absolute file paths in the report")
}

type upgradeFlags struct {
	dryRun  bool
	verbose bool
	diff    bool
	format  string
	journal bool
	ui      toggle
	full    bool
	timings bool
}

func readUpgradeFlags(cmd *cobra.Command) (upgradeFlags, error) {
	var (
		f   upgradeFlags
		err error
	)
	if f.dryRun, err = cmd.Flags().GetBool("dry-run"); err != nil {
		return f, fmt.Errorf("failed to get dry-run flag: %w", err)
	}
	if f.verbose, err = cmd.Flags().GetBool("verbose"); err != nil {
		return f, fmt.Errorf("failed to get verbose flag: %w", err)
	}
	if f.diff, err = cmd.Flags().GetBool("diff"); err != nil {
		return f, fmt.Errorf("failed to get diff flag: %w", err)
	}
	if f.format, err = cmd.Flags().GetString("format"); err != nil {
		return f, fmt.Errorf("failed to get format flag: %w", err)
	}
	f.format = strings.ToLower(strings.TrimSpace(f.format))
	switch f.format {
	case "pretty", "json":
	default:
		return f, fmt.Errorf("unknown format: %s", f.format)
	}
	if f.journal, err = cmd.Flags().GetBool("journal"); err != nil {
		return f, fmt.Errorf("failed to get journal flag: %w", err)
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return f, fmt.Errorf("failed to get ui flag: %w", err)
	}
	if f.ui, err = parseToggle("ui", uiValue); err != nil {
		return f, err
	}
	if f.full, err = cmd.Flags().GetBool("fullpath"); err != nil {
		return f, fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	if f.timings, err = cmd.Root().PersistentFlags().GetBool("timings"); err != nil {
		return f, fmt.Errorf("failed to get timings flag: %w", err)
	}
	return f, nil
}

// runUpgrade executes the root command: resolve the project, merge the
// configuration, run the fix-up loop and print the report.
func runUpgrade(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic(cmd)

	f, err := readUpgradeFlags(cmd)
	if err != nil {
		return fatal(err)
	}
	useColor, err := readColor(cmd, os.Stdout)
	if err != nil {
		return fatal(err)
	}
	applyColor(useColor)

	cleanup, err := setupTracing(cmd, f.verbose)
	if err != nil {
		return fatal(err)
	}
	defer cleanup()

	ctx := cmd.Context()
	root, err := resolveProjectRoot(ctx)
	if err != nil {
		return fatal(err)
	}
	safeDir, err := resolveSafeDir(cmd, root)
	if err != nil {
		return fatal(err)
	}
	settings, cfgPath, err := loadSettings(cmd, root.Dir)
	if err != nil {
		return fatal(err)
	}

	cfg := driver.Config{
		Root:           root.Dir,
		SafeDir:        safeDir,
		DryRun:         f.dryRun,
		Suffix:         settings.Suffix,
		LegacySuffixes: settings.LegacySuffixes,
		Placeholder:    settings.Placeholder,
		MaxIterations:  settings.MaxIterations,
		ExtraArgs:      settings.ExtraArgs,
		Codes:          settings.Codes,
	}

	checker := &buildpipeline.CargoChecker{Program: cargoProgram()}
	opts := driver.Options{}
	if f.timings {
		opts.Timer = observ.NewTimer()
	}
	if f.journal {
		journal, err := driver.OpenJournal(appName)
		if err != nil {
			return fatal(err)
		}
		opts.Journal = journal
	}

	stderr := cmd.ErrOrStderr()
	if f.verbose {
		fmt.Fprintf(stderr, "project root: %s (%s)\n", root.Dir, root.Source)
		fmt.Fprintf(stderr, "safe directory: %s\n", safeDir)
		if cfgPath != "" {
			fmt.Fprintf(stderr, "config: %s\n", cfgPath)
		}
	}

	var res *driver.Result
	if f.format == "pretty" && f.ui.enabled(os.Stdout) {
		res, err = runWithUI(ctx, cfg, checker, opts)
	} else {
		opts.Progress = announceSink(stderr)
		if f.verbose {
			checker.Stderr = stderr
		}
		res, err = driver.Run(ctx, cfg, checker, opts)
	}
	if err != nil {
		return fatal(err)
	}

	if err := printReport(os.Stdout, stderr, res, root.Dir, f, useColor, opts.Timer); err != nil {
		return fatal(fmt.Errorf("failed to write report: %w", err))
	}
	if f.timings && f.format == "pretty" {
		printStageTimings(stderr, res.Timings)
		if f.verbose {
			fmt.Fprint(stderr, opts.Timer.Summary())
		}
	}

	if res.Err() != nil {
		// the report already states the outcome
		return &exitError{code: exitOutcome}
	}
	return nil
}

func printReport(w, stderr io.Writer, res *driver.Result, root string, f upgradeFlags, useColor bool, timer *observ.Timer) error {
	files := diagfmt.NewFiles(root)
	pathMode := diagfmt.PathModeAuto
	if f.full {
		pathMode = diagfmt.PathModeAbsolute
	}
	if f.format == "json" {
		jsonOpts := diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			IncludeAnchors:   true,
		}
		if timer != nil {
			report := timer.Report()
			jsonOpts.Timings = &report
		}
		return diagfmt.JSON(w, res, files, jsonOpts)
	}
	return diagfmt.Pretty(w, res, files, diagfmt.PrettyOpts{
		Color:       useColor,
		PathMode:    pathMode,
		ShowAnchors: f.verbose,
		ShowDiff:    f.diff,
		Stderr:      stderr,
	})
}

// resolveProjectRoot asks cargo for the workspace root of the working
// directory, falling back to the manifests above it.
func resolveProjectRoot(ctx context.Context) (project.Root, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return project.Root{}, fmt.Errorf("failed to get working directory: %w", err)
	}
	return project.ResolveRoot(ctx, cwd, &project.MetadataRunner{Program: cargoProgram(), Dir: cwd})
}

// resolveSafeDir returns the --directory boundary for writes, the workspace
// root by default.
func resolveSafeDir(cmd *cobra.Command, root project.Root) (string, error) {
	dir, err := cmd.Root().PersistentFlags().GetString("directory")
	if err != nil {
		return "", fmt.Errorf("failed to get directory flag: %w", err)
	}
	if dir == "" {
		return root.Dir, nil
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %q: %w", dir, err)
	}
	st, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("failed to stat directory: %w", err)
	}
	if !st.IsDir() {
		return "", fmt.Errorf("%s is not a directory", abs)
	}
	return abs, nil
}

// loadSettings merges defaults, the config file and explicitly set flags,
// in that order of precedence.
func loadSettings(cmd *cobra.Command, root string) (project.Settings, string, error) {
	settings := project.DefaultSettings()

	explicit, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return settings, "", fmt.Errorf("failed to get config flag: %w", err)
	}
	path, ok, err := project.FindConfig(root, explicit)
	if err != nil {
		return settings, "", err
	}
	if ok {
		fileCfg, err := project.LoadConfig(path)
		if err != nil {
			return settings, "", err
		}
		settings.Apply(fileCfg)
	}

	flags := cmd.Flags()
	if flags.Lookup("suffix") != nil && flags.Changed("suffix") {
		if settings.Suffix, err = flags.GetString("suffix"); err != nil {
			return settings, "", fmt.Errorf("failed to get suffix flag: %w", err)
		}
	}
	if flags.Lookup("max-iterations") != nil && flags.Changed("max-iterations") {
		if settings.MaxIterations, err = flags.GetInt("max-iterations"); err != nil {
			return settings, "", fmt.Errorf("failed to get max-iterations flag: %w", err)
		}
	}
	if flags.Lookup("extra-check-arg") != nil && flags.Changed("extra-check-arg") {
		if settings.ExtraArgs, err = flags.GetStringArray("extra-check-arg"); err != nil {
			return settings, "", fmt.Errorf("failed to get extra-check-arg flag: %w", err)
		}
	}

	if err := settings.Validate(); err != nil {
		if ok {
			return settings, "", fmt.Errorf("%s: %w", path, err)
		}
		return settings, "", err
	}
	return settings, path, nil
}

// cargoProgram prefers $CARGO, which cargo sets when it runs us as a subcommand.
func cargoProgram() string {
	if p := strings.TrimSpace(os.Getenv("CARGO")); p != "" {
		return p
	}
	return buildpipeline.DefaultProgram
}

// announceSink prints the start of every check build, as the line-mode
// stand-in for the progress view.
func announceSink(w io.Writer) buildpipeline.ProgressSink {
	return buildpipeline.SinkFunc(func(ev buildpipeline.Event) {
		if ev.Stage != buildpipeline.StageCheck || ev.Status != buildpipeline.StatusWorking || ev.File != "" {
			return
		}
		if ev.Cycle == 1 {
			fmt.Fprintln(w, "Performing initial check build; this may take a while")
			return
		}
		fmt.Fprintln(w, "Performing follow-up check build")
	})
}
