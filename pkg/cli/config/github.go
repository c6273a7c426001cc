package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/octomirror/pkg/domain/interfaces"
	"github.com/m-mizutani/octomirror/pkg/domain/types"
	githubinfra "github.com/m-mizutani/octomirror/pkg/infra/github"
	"github.com/urfave/cli/v3"
)

// GitHub holds GitHub API credentials and endpoints. Either a token or the
// App credential triple must be set.
type GitHub struct {
	Token          string `masq:"secret"`
	AppID          int64
	InstallationID int64
	PrivateKeyFile string
	APIURL         string
	UploadURL      string
}

// Flags returns CLI flags for GitHub configuration
func (c *GitHub) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "github-token",
			Usage:       "GitHub token (personal access token or Actions GITHUB_TOKEN)",
			Destination: &c.Token,
			Sources:     cli.EnvVars("OCTOMIRROR_GITHUB_TOKEN", "GITHUB_TOKEN"),
		},
		&cli.Int64Flag{
			Name:        "github-app-id",
			Usage:       "GitHub App ID (alternative to a token)",
			Destination: &c.AppID,
			Sources:     cli.EnvVars("OCTOMIRROR_GITHUB_APP_ID"),
		},
		&cli.Int64Flag{
			Name:        "github-installation-id",
			Usage:       "GitHub App installation ID",
			Destination: &c.InstallationID,
			Sources:     cli.EnvVars("OCTOMIRROR_GITHUB_INSTALLATION_ID"),
		},
		&cli.StringFlag{
			Name:        "github-private-key",
			Usage:       "Path to the GitHub App private key (PEM)",
			Destination: &c.PrivateKeyFile,
			Sources:     cli.EnvVars("OCTOMIRROR_GITHUB_PRIVATE_KEY"),
		},
		&cli.StringFlag{
			Name:        "github-api-url",
			Usage:       "GitHub Enterprise API base URL",
			Destination: &c.APIURL,
			Sources:     cli.EnvVars("OCTOMIRROR_GITHUB_API_URL"),
		},
		&cli.StringFlag{
			Name:        "github-upload-url",
			Usage:       "GitHub Enterprise upload base URL",
			Destination: &c.UploadURL,
			Sources:     cli.EnvVars("OCTOMIRROR_GITHUB_UPLOAD_URL"),
		},
	}
}

// Validate checks that exactly one credential path is usable
func (c *GitHub) Validate() error {
	hasApp := c.AppID != 0 || c.InstallationID != 0 || c.PrivateKeyFile != ""
	if c.Token == "" && !hasApp {
		return goerr.New("either a GitHub token or App credentials are required",
			goerr.T(types.ErrTagConfig),
		)
	}
	if hasApp && (c.AppID == 0 || c.InstallationID == 0 || c.PrivateKeyFile == "") {
		return goerr.New("GitHub App credentials need app ID, installation ID and private key together",
			goerr.T(types.ErrTagConfig),
		)
	}
	if (c.APIURL == "") != (c.UploadURL == "") {
		return goerr.New("GitHub Enterprise needs both API and upload URLs",
			goerr.T(types.ErrTagConfig),
		)
	}
	return nil
}

// Configure builds the GitHub client from the validated credentials
func (c *GitHub) Configure() (interfaces.GitHubClient, error) {
	var opts []githubinfra.Option
	if c.APIURL != "" {
		opts = append(opts, githubinfra.WithEnterprise(c.APIURL, c.UploadURL))
	}

	if c.AppID != 0 {
		privateKey, err := os.ReadFile(c.PrivateKeyFile)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read GitHub App private key",
				goerr.T(types.ErrTagConfig),
				goerr.V("path", c.PrivateKeyFile),
			)
		}
		return githubinfra.NewAppClient(c.AppID, c.InstallationID, privateKey, opts...)
	}

	return githubinfra.NewClient(c.Token, opts...)
}
