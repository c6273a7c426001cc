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

const perPage = 100

// ListReleases retrieves all releases of the repository, following every
// continuation page. Results stay in platform order (newest first).
func (c *client) ListReleases(ctx context.Context, repo model.Repository) ([]*model.Release, error) {
	var releases []*model.Release

	opt := &github.ListOptions{PerPage: perPage}
	for {
		page, resp, err := listReleasesPage(ctx, c.githubClient, repo, opt)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list releases",
				goerr.T(types.ErrTagAPI),
				goerr.V("repository", repo.FullName()),
				goerr.V("page", opt.Page),
			)
		}

		for _, r := range page {
			releases = append(releases, toRelease(r))
		}

		if resp.NextPage == 0 {
			return releases, nil
		}
		opt.Page = resp.NextPage
	}
}

func listReleasesPage(ctx context.Context, gh *github.Client, repo model.Repository, opt *github.ListOptions) ([]*github.RepositoryRelease, *github.Response, error) {
	type pageResult struct {
		releases []*github.RepositoryRelease
		resp     *github.Response
	}

	result, err := withThrottleRetry(ctx, "list_releases", func() (pageResult, error) {
		releases, resp, err := gh.Repositories.ListReleases(ctx, repo.Owner, repo.Name, opt)
		return pageResult{releases: releases, resp: resp}, err
	})
	return result.releases, result.resp, err
}

// GetReleaseByTag looks up a release by tag. When no release carries the tag
// the returned error wraps types.ErrReleaseNotFound; any other error means
// the lookup itself failed.
func (c *client) GetReleaseByTag(ctx context.Context, repo model.Repository, tag string) (*model.Release, error) {
	release, err := withThrottleRetry(ctx, "get_release_by_tag", func() (*github.RepositoryRelease, error) {
		r, _, err := c.githubClient.Repositories.GetReleaseByTag(ctx, repo.Owner, repo.Name, tag)
		return r, err
	})
	if err != nil {
		var errResp *github.ErrorResponse
		if errors.As(err, &errResp) && errResp.Response.StatusCode == http.StatusNotFound {
			return nil, goerr.Wrap(types.ErrReleaseNotFound, "no release with tag",
				goerr.V("repository", repo.FullName()),
				goerr.V("tag", tag),
			)
		}
		return nil, goerr.Wrap(err, "failed to get release by tag",
			goerr.T(types.ErrTagAPI),
			goerr.V("repository", repo.FullName()),
			goerr.V("tag", tag),
		)
	}

	return toRelease(release), nil
}

// CreateRelease creates a published release in the repository. The mirror
// always publishes: draft and prerelease flags are not carried over.
func (c *client) CreateRelease(ctx context.Context, repo model.Repository, release *model.Release) (*model.Release, error) {
	created, err := withThrottleRetry(ctx, "create_release", func() (*github.RepositoryRelease, error) {
		r, _, err := c.githubClient.Repositories.CreateRelease(ctx, repo.Owner, repo.Name, &github.RepositoryRelease{
			TagName:    github.Ptr(release.TagName),
			Name:       github.Ptr(release.Name),
			Body:       github.Ptr(release.Body),
			Draft:      github.Ptr(false),
			Prerelease: github.Ptr(false),
		})
		return r, err
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create release",
			goerr.T(types.ErrTagAPI),
			goerr.V("repository", repo.FullName()),
			goerr.V("tag", release.TagName),
		)
	}

	return toRelease(created), nil
}

// DeleteRelease deletes a release by ID. The git tag is left in place.
func (c *client) DeleteRelease(ctx context.Context, repo model.Repository, releaseID int64) error {
	_, err := withThrottleRetry(ctx, "delete_release", func() (struct{}, error) {
		_, err := c.githubClient.Repositories.DeleteRelease(ctx, repo.Owner, repo.Name, releaseID)
		return struct{}{}, err
	})
	if err != nil {
		return goerr.Wrap(err, "failed to delete release",
			goerr.T(types.ErrTagAPI),
			goerr.V("repository", repo.FullName()),
			goerr.V("release_id", releaseID),
		)
	}

	return nil
}

func toRelease(r *github.RepositoryRelease) *model.Release {
	release := &model.Release{
		ID:         r.GetID(),
		TagName:    r.GetTagName(),
		Name:       r.GetName(),
		Body:       r.GetBody(),
		Draft:      r.GetDraft(),
		Prerelease: r.GetPrerelease(),
	}
	for _, a := range r.Assets {
		release.Assets = append(release.Assets, toAsset(a))
	}
	return release
}
