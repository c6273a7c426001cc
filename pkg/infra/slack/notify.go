package slack

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/octomirror/pkg/domain/interfaces"
	"github.com/m-mizutani/octomirror/pkg/domain/model"
	"github.com/m-mizutani/octomirror/pkg/domain/types"
	"github.com/slack-go/slack"
)

type notifier struct {
	webhookURL string
}

// New creates a Notifier posting run outcomes to a Slack incoming webhook
func New(webhookURL string) interfaces.Notifier {
	return &notifier{webhookURL: webhookURL}
}

// NotifyReport announces a completed run
func (x *notifier) NotifyReport(ctx context.Context, report *model.SyncReport) error {
	title := fmt.Sprintf("%s: synced %s → %s", types.AppName, report.Source.FullName(), report.Target.FullName())
	if report.DryRun {
		title += " (dry-run)"
	}

	msg := &slack.WebhookMessage{
		Text: title,
		Attachments: []slack.Attachment{
			{
				Color: "good",
				Fields: []slack.AttachmentField{
					{Title: "Created", Value: fmt.Sprint(report.Created), Short: true},
					{Title: "Replaced", Value: fmt.Sprint(report.Replaced), Short: true},
					{Title: "Skipped", Value: fmt.Sprint(report.Skipped), Short: true},
					{Title: "Assets", Value: fmt.Sprint(report.Assets), Short: true},
					{Title: "Transferred", Value: humanize.Bytes(uint64(report.Bytes)), Short: true},
					{Title: "Duration", Value: report.Duration.Round(time.Millisecond).String(), Short: true},
				},
				Footer: "run_id: " + report.RunID,
			},
		},
	}

	if err := slack.PostWebhookContext(ctx, x.webhookURL, msg); err != nil {
		return goerr.Wrap(err, "failed to post Slack report")
	}

	return nil
}

// NotifyFailure announces an aborted run
func (x *notifier) NotifyFailure(ctx context.Context, input *model.SyncInput, runErr error) error {
	msg := &slack.WebhookMessage{
		Text: fmt.Sprintf("%s: sync %s → %s failed", types.AppName, input.Source, input.Target),
		Attachments: []slack.Attachment{
			{
				Color: "danger",
				Text:  runErr.Error(),
			},
		},
	}

	if err := slack.PostWebhookContext(ctx, x.webhookURL, msg); err != nil {
		return goerr.Wrap(err, "failed to post Slack failure")
	}

	return nil
}
