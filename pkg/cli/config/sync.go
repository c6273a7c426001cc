package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/octomirror/pkg/domain/model"
	"github.com/m-mizutani/octomirror/pkg/domain/types"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
)

// Sync holds the sync run options. A TOML config file may supply any option
// not already set by flag or environment.
type Sync struct {
	SourceRepo     string `toml:"source_repo"`
	TargetRepo     string `toml:"target_repo"`
	DeleteReleases bool   `toml:"delete_releases"`
	StartFrom      string `toml:"start_from"`
	DryRun         bool   `toml:"dry_run"`

	ConfigFile string `toml:"-"`
}

// Flags returns CLI flags for sync configuration
func (c *Sync) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "source-repo",
			Usage:       "Repository to read releases from (owner/name)",
			Destination: &c.SourceRepo,
			Sources:     cli.EnvVars("OCTOMIRROR_SOURCE_REPO"),
		},
		&cli.StringFlag{
			Name:        "target-repo",
			Usage:       "Repository to write releases to (owner/name); defaults to the repository the run executes within",
			Destination: &c.TargetRepo,
			Sources:     cli.EnvVars("OCTOMIRROR_TARGET_REPO", "GITHUB_REPOSITORY"),
		},
		&cli.BoolFlag{
			Name:        "delete-releases",
			Usage:       "Delete and recreate existing same-tag releases instead of skipping them",
			Destination: &c.DeleteReleases,
			Sources:     cli.EnvVars("OCTOMIRROR_DELETE_RELEASES"),
		},
		&cli.StringFlag{
			Name:        "start-from",
			Usage:       "Tag name to resume from; earlier releases are not considered",
			Destination: &c.StartFrom,
			Sources:     cli.EnvVars("OCTOMIRROR_START_FROM"),
		},
		&cli.BoolFlag{
			Name:        "dry-run",
			Usage:       "Plan the sync without mutating the target",
			Destination: &c.DryRun,
			Sources:     cli.EnvVars("OCTOMIRROR_DRY_RUN"),
		},
		&cli.StringFlag{
			Name:        "config",
			Usage:       "TOML file supplying options not set by flag or environment",
			Destination: &c.ConfigFile,
			Sources:     cli.EnvVars("OCTOMIRROR_CONFIG"),
		},
	}
}

// Configure merges the TOML config file, if any, into options left unset by
// flags and environment, then returns the use case input. Flags and
// environment always win over the file.
func (c *Sync) Configure() (*model.SyncInput, error) {
	if c.ConfigFile != "" {
		data, err := os.ReadFile(c.ConfigFile)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read config file",
				goerr.T(types.ErrTagConfig),
				goerr.V("path", c.ConfigFile),
			)
		}

		var file Sync
		if err := toml.Unmarshal(data, &file); err != nil {
			return nil, goerr.Wrap(err, "failed to parse config file",
				goerr.T(types.ErrTagConfig),
				goerr.V("path", c.ConfigFile),
			)
		}

		if c.SourceRepo == "" {
			c.SourceRepo = file.SourceRepo
		}
		if c.TargetRepo == "" {
			c.TargetRepo = file.TargetRepo
		}
		if c.StartFrom == "" {
			c.StartFrom = file.StartFrom
		}
		if !c.DeleteReleases {
			c.DeleteReleases = file.DeleteReleases
		}
		if !c.DryRun {
			c.DryRun = file.DryRun
		}
	}

	input := &model.SyncInput{
		Source:         c.SourceRepo,
		Target:         c.TargetRepo,
		DeleteReleases: c.DeleteReleases,
		StartFrom:      c.StartFrom,
		DryRun:         c.DryRun,
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	return input, nil
}
