package github

import (
	"net/http"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/octomirror/pkg/domain/interfaces"
	"github.com/m-mizutani/octomirror/pkg/domain/types"
	"golang.org/x/oauth2"
)

type client struct {
	githubClient *github.Client
}

type clientConfig struct {
	apiURL    string
	uploadURL string
}

// Option customizes the GitHub client
type Option func(*clientConfig)

// WithEnterprise points the client at a GitHub Enterprise Server instance.
// Both URLs must be set together.
func WithEnterprise(apiURL, uploadURL string) Option {
	return func(cfg *clientConfig) {
		cfg.apiURL = apiURL
		cfg.uploadURL = uploadURL
	}
}

// NewClient creates a GitHub client authenticated with a personal access
// token or an Actions-provided GITHUB_TOKEN.
func NewClient(token string, opts ...Option) (interfaces.GitHubClient, error) {
	if token == "" {
		return nil, goerr.New("GitHub token is empty", goerr.T(types.ErrTagConfig))
	}

	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	githubClient := github.NewClient(&http.Client{
		Transport: &oauth2.Transport{Source: src},
	})

	return newClient(githubClient, opts)
}

// NewAppClient creates a GitHub client authenticated as a GitHub App
// installation.
func NewAppClient(appID, installationID int64, privateKey []byte, opts ...Option) (interfaces.GitHubClient, error) {
	itr, err := ghinstallation.New(http.DefaultTransport, appID, installationID, privateKey)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create GitHub App transport",
			goerr.T(types.ErrTagConfig),
			goerr.V("app_id", appID),
			goerr.V("installation_id", installationID),
		)
	}

	return newClient(github.NewClient(&http.Client{Transport: itr}), opts)
}

func newClient(githubClient *github.Client, opts []Option) (interfaces.GitHubClient, error) {
	var cfg clientConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.apiURL != "" {
		enterprise, err := githubClient.WithEnterpriseURLs(cfg.apiURL, cfg.uploadURL)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid GitHub Enterprise URL",
				goerr.T(types.ErrTagConfig),
				goerr.V("api_url", cfg.apiURL),
				goerr.V("upload_url", cfg.uploadURL),
			)
		}
		githubClient = enterprise
	}

	return &client{githubClient: githubClient}, nil
}
