package config

import (
	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/octomirror/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

// Sentry holds error reporting configuration for scheduled runs
type Sentry struct {
	DSN string
	Env string
}

// Flags returns CLI flags for Sentry configuration
func (c *Sentry) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "sentry-dsn",
			Usage:       "Sentry DSN for error reporting",
			Destination: &c.DSN,
			Sources:     cli.EnvVars("OCTOMIRROR_SENTRY_DSN"),
		},
		&cli.StringFlag{
			Name:        "sentry-env",
			Usage:       "Sentry environment name",
			Destination: &c.Env,
			Sources:     cli.EnvVars("OCTOMIRROR_SENTRY_ENV"),
		},
	}
}

// Configure initializes the Sentry SDK. It reports whether reporting is
// enabled.
func (c *Sentry) Configure() (bool, error) {
	if c.DSN == "" {
		return false, nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:         c.DSN,
		Environment: c.Env,
		Release:     types.AppName + "@" + types.Version,
	})
	if err != nil {
		return false, goerr.Wrap(err, "failed to initialize Sentry",
			goerr.T(types.ErrTagConfig),
		)
	}

	return true, nil
}
