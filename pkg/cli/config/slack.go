package config

import (
	"github.com/m-mizutani/octomirror/pkg/domain/interfaces"
	slackinfra "github.com/m-mizutani/octomirror/pkg/infra/slack"
	"github.com/urfave/cli/v3"
)

// Slack holds Slack notification configuration
type Slack struct {
	WebhookURL string `masq:"secret"`
}

// Flags returns CLI flags for Slack configuration
func (c *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-webhook-url",
			Usage:       "Slack incoming webhook URL for run notifications",
			Destination: &c.WebhookURL,
			Sources:     cli.EnvVars("OCTOMIRROR_SLACK_WEBHOOK_URL"),
		},
	}
}

// Configure returns the Slack notifier, or nil when not configured
func (c *Slack) Configure() interfaces.Notifier {
	if c.WebhookURL == "" {
		return nil
	}
	return slackinfra.New(c.WebhookURL)
}
