package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/ofir/maccabi-ics/internal/calendar"
	"github.com/ofir/maccabi-ics/internal/config"
	"github.com/ofir/maccabi-ics/internal/fixture"
	"github.com/ofir/maccabi-ics/internal/logger"
	"github.com/ofir/maccabi-ics/internal/runner"
	"github.com/ofir/maccabi-ics/internal/scraper"
	"github.com/ofir/maccabi-ics/internal/storage"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

// now is the clock of a run; tests replace it.
var now = time.Now

type rootOptions struct {
	configPath string
	format     string
	verbose    bool
	logLevel   string

	output  string
	stdout  bool
	dataDir string
	lang    string
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "maccabi-ics",
		Short: "Build an iCalendar feed of upcoming Maccabi Tel Aviv basketball games",
		Long: `Fetches the EuroLeague and Winner League fixture pages of maccabi.co.il,
extracts the upcoming games and writes them as an iCalendar file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := logger.ParseLevel(opts.logLevel)
			if opts.verbose {
				level = logger.LevelDebug
			}
			logger.SetDefault(logger.New(level, cmd.ErrOrStderr()))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, opts)
		},
	}

	// Define flags
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML config file")
	cmd.PersistentFlags().StringVar(&opts.format, "format", "text", "Output format: text or json")
	cmd.PersistentFlags().BoolVar(&opts.verbose, "verbose", false, "Enable verbose logging")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "Log level: debug, info, warn or error (--verbose implies debug)")

	cmd.PersistentFlags().StringVarP(&opts.output, "output", "o", config.DefaultOutput, "Calendar file to write")
	cmd.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "", "Data directory for snapshots; enables change reporting")
	cmd.PersistentFlags().StringVar(&opts.lang, "lang", scraper.DefaultLang, "Language parameter of the fixture pages")
	cmd.Flags().BoolVar(&opts.stdout, "stdout", false, "Print the calendar to stdout instead of writing it")

	cmd.AddCommand(newValidateCmd(opts), newSeasonCmd(opts), newWatchCmd(opts))

	return cmd
}

// loadConfig loads the config file and applies the flags set on the command line.
func loadConfig(cmd *cobra.Command, opts *rootOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.Output = opts.output
	}
	if flags.Changed("data-dir") {
		cfg.DataDir = opts.dataDir
	}
	if flags.Changed("lang") {
		cfg.Lang = opts.lang
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// runBuild is the main command logic
func runBuild(cmd *cobra.Command, opts *rootOptions) error {
	format, err := ParseFormat(opts.format)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	return build(contextOf(cmd), cmd, opts, cfg, format)
}

// build runs one fetch, writes the calendar and reports the summary.
func build(ctx context.Context, cmd *cobra.Command, opts *rootOptions, cfg *config.Config, format OutputFormat) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	runNow := now().In(loc)
	logger.Debug("Starting build", logger.Fields{
		"now":          runNow.Format(time.RFC3339),
		"competitions": len(cfg.Competitions),
		"output":       cfg.Output,
	})

	r := runner.New(scraper.NewFetcher(cfg.FetcherOptions()), runner.Options{
		Competitions: cfg.Competitions,
		Location:     loc,
		Radius:       cfg.Radius,
		MaxEvents:    cfg.MaxEvents,
	})
	result := r.Run(ctx, runNow)

	payload := calendar.NewDocument(cfg.Metadata(loc), result.Events, runNow).Serialize()
	if err := calendar.Verify(payload, len(result.Events)); err != nil {
		return err
	}

	summary := &BuildSummary{
		GeneratedAt:  runNow,
		SeasonYear:   result.SeasonYear,
		Competitions: result.Competitions,
		EventCount:   len(result.Events),
		Events:       result.Events,
	}

	// The summary moves to stderr when stdout carries the calendar.
	summaryOut := cmd.OutOrStdout()
	if opts.stdout {
		summaryOut = cmd.ErrOrStderr()
		if _, err := io.WriteString(cmd.OutOrStdout(), payload); err != nil {
			return errors.Wrap(err, "writing calendar")
		}
	} else {
		if err := storage.WriteCalendar(cfg.Output, payload); err != nil {
			return err
		}
		summary.Output = cfg.Output
	}

	if cfg.DataDir != "" {
		diff, err := updateSnapshot(cfg.DataDir, result.Events, runNow)
		if err != nil {
			return err
		}
		summary.Diff = diff
	}

	logger.Info("Calendar built", logger.Fields{
		"events": len(result.Events),
		"failed": result.Failed(),
		"output": summary.Output,
	})
	logger.Debug("Run metrics", logger.Fields{"metrics": logger.GetMetricsSnapshot()})

	if err := WriteBuildSummary(summaryOut, summary, format, opts.verbose); err != nil {
		return errors.Wrap(err, "writing output")
	}
	return nil
}

// updateSnapshot diffs events against the stored snapshot and replaces it.
func updateSnapshot(dataDir string, events []*fixture.Event, at time.Time) (*fixture.DiffResult, error) {
	store, err := storage.New(dataDir)
	if err != nil {
		return nil, errors.Wrap(err, "initializing storage")
	}

	previous, err := store.LoadSnapshot()
	if err != nil {
		return nil, errors.Wrap(err, "loading snapshot")
	}
	logger.Debug("Loaded previous snapshot", logger.Fields{"events": len(previous.Events), "updated_at": previous.UpdatedAt})

	diff := fixture.Diff(previous, events, at)

	if err := store.SaveEvents(events, at); err != nil {
		return nil, errors.Wrap(err, "saving snapshot")
	}
	return diff, nil
}

func newValidateCmd(opts *rootOptions) *cobra.Command {
	var sortOrder string

	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Parse an iCalendar file and list its events",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := ParseFormat(opts.format)
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return errors.Wrap(err, "opening calendar")
			}
			defer f.Close()

			summary, err := calendar.Inspect(f)
			if err != nil {
				return errors.Wrapf(err, "validating %s", args[0])
			}
			if err := sortEvents(summary.Events, SortOrder(sortOrder)); err != nil {
				return err
			}

			logger.Debug("Validated calendar", logger.Fields{"file": args[0], "events": len(summary.Events)})
			return WriteCalendarSummary(cmd.OutOrStdout(), summary, format)
		},
	}

	cmd.Flags().StringVar(&sortOrder, "sort", string(SortByDate), "Event order: date, title, uid or none")
	return cmd
}

func newSeasonCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "season",
		Short: "Print the season-year parameter used for today's fetch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			loc, err := cfg.Location()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), fixture.SeasonYear(now().In(loc)))
			return nil
		},
	}
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	cmd := NewRootCmd()
	err := cmd.Execute()
	logger.Default().Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}
	return ExitSuccess
}
