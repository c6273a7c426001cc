package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/octomirror/pkg/cli/config"
	"github.com/m-mizutani/octomirror/pkg/domain/interfaces"
	"github.com/m-mizutani/octomirror/pkg/domain/model"
	"github.com/m-mizutani/octomirror/pkg/usecase"
	"github.com/m-mizutani/octomirror/pkg/utils/progress"
	"github.com/urfave/cli/v3"
)

func cmdSync() *cli.Command {
	var (
		syncCfg   config.Sync
		githubCfg config.GitHub
		slackCfg  config.Slack
		sentryCfg config.Sentry
	)

	flags := append(syncCfg.Flags(), githubCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)

	return &cli.Command{
		Name:    "sync",
		Aliases: []string{"s"},
		Usage:   "Copy releases from the source repository to the target repository",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			if err := githubCfg.Validate(); err != nil {
				return err
			}
			input, err := syncCfg.Configure()
			if err != nil {
				return err
			}
			client, err := githubCfg.Configure()
			if err != nil {
				return err
			}
			notifier := slackCfg.Configure()

			sentryEnabled, err := sentryCfg.Configure()
			if err != nil {
				return err
			}
			if sentryEnabled {
				defer sentry.Flush(2 * time.Second)
			}

			uc := usecase.NewSync(client, usecase.WithProgress(progress.Auto()))

			report, runErr := uc.Sync(ctx, input)
			if runErr != nil {
				if sentryEnabled {
					sentry.CaptureException(runErr)
				}
				notifyFailure(ctx, notifier, input, runErr)
				return runErr
			}

			printSummary(report)

			if notifier != nil {
				if err := notifier.NotifyReport(ctx, report); err != nil {
					// A lost notification must not fail a completed sync
					logger.Warn("Failed to notify sync report", "error", err)
				}
			}

			return nil
		},
	}
}

func notifyFailure(ctx context.Context, notifier interfaces.Notifier, input *model.SyncInput, runErr error) {
	if notifier == nil {
		return
	}
	if err := notifier.NotifyFailure(ctx, input, runErr); err != nil {
		ctxlog.From(ctx).Warn("Failed to notify sync failure", "error", err)
	}
}

func printSummary(report *model.SyncReport) {
	headline := fmt.Sprintf("Synced %s -> %s", report.Source.FullName(), report.Target.FullName())
	if report.DryRun {
		headline += " (dry-run)"
	}
	color.New(color.FgGreen, color.Bold).Println(headline)

	fmt.Printf("  created:  %d\n", report.Created)
	fmt.Printf("  replaced: %d\n", report.Replaced)
	fmt.Printf("  skipped:  %d\n", report.Skipped)
	fmt.Printf("  assets:   %d (%s)\n", report.Assets, humanize.Bytes(uint64(report.Bytes)))
	fmt.Printf("  duration: %s\n", report.Duration.Round(time.Millisecond))
}
