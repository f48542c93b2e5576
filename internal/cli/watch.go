package cli

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/ofir/maccabi-ics/internal/logger"
)

func newWatchCmd(opts *rootOptions) *cobra.Command {
	var (
		schedule string
		runNow   bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Rebuild the calendar on a cron schedule until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := ParseFormat(opts.format)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("schedule") {
				cfg.Schedule = schedule
				if err := cfg.Validate(); err != nil {
					return err
				}
			}
			loc, err := cfg.Location()
			if err != nil {
				return err
			}
			sched, err := cron.ParseStandard(cfg.Schedule)
			if err != nil {
				return errors.Wrapf(err, "parsing schedule %q", cfg.Schedule)
			}

			ctx, stop := signal.NotifyContext(contextOf(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			job := func() {
				if err := build(ctx, cmd, opts, cfg, format); err != nil {
					logger.Error("Scheduled build failed", logger.Fields{"schedule": cfg.Schedule}, err)
				}
			}

			guarded := overlapGuard().Then(cron.FuncJob(job))
			if runNow {
				guarded.Run()
			}

			c := cron.New(cron.WithLocation(loc))
			c.Schedule(sched, guarded)
			c.Start()
			logger.Info("Watching fixtures", logger.Fields{
				"schedule": cfg.Schedule,
				"next":     sched.Next(now().In(loc)).Format(time.RFC3339),
			})

			<-ctx.Done()
			<-c.Stop().Done()
			logger.Info("Stopped watching", nil)
			return nil
		},
	}

	cmd.Flags().StringVar(&schedule, "schedule", "", "Cron schedule (standard five fields); overrides the config file")
	cmd.Flags().BoolVar(&runNow, "run-now", true, "Build once immediately before waiting for the schedule")
	return cmd
}

// overlapGuard skips a scheduled build while the previous one is still running.
func overlapGuard() cron.Chain {
	return cron.NewChain(cron.SkipIfStillRunning(skipLogger{}))
}

// skipLogger reports the builds cron skipped.
type skipLogger struct{}

func (skipLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Warn("Skipped scheduled build: previous build still running", cronFields(msg, keysAndValues), nil)
}

func (skipLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Error("Scheduler error", cronFields(msg, keysAndValues), err)
}

func cronFields(msg string, keysAndValues []interface{}) logger.Fields {
	fields := logger.Fields{"cron": msg}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		if k, ok := keysAndValues[i].(string); ok {
			fields[k] = keysAndValues[i+1]
		}
	}
	return fields
}
