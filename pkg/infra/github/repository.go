package github

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/octomirror/pkg/domain/model"
	"github.com/m-mizutani/octomirror/pkg/domain/types"
)

// RepositoryExists reports whether the repository exists. A 404 is a normal
// answer, not an error.
func (c *client) RepositoryExists(ctx context.Context, repo model.Repository) (bool, error) {
	_, err := withThrottleRetry(ctx, "get_repository", func() (*github.Repository, error) {
		r, _, err := c.githubClient.Repositories.Get(ctx, repo.Owner, repo.Name)
		return r, err
	})
	if err != nil {
		var errResp *github.ErrorResponse
		if errors.As(err, &errResp) && errResp.Response.StatusCode == http.StatusNotFound {
			return false, nil
		}
		return false, goerr.Wrap(err, "failed to get repository",
			goerr.T(types.ErrTagAPI),
			goerr.V("repository", repo.FullName()),
		)
	}

	return true, nil
}
