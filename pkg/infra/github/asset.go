package github

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/octomirror/pkg/domain/model"
	"github.com/m-mizutani/octomirror/pkg/domain/types"
)

// ListReleaseAssets retrieves all assets of a release, following every
// continuation page.
func (c *client) ListReleaseAssets(ctx context.Context, repo model.Repository, releaseID int64) ([]*model.Asset, error) {
	var assets []*model.Asset

	opt := &github.ListOptions{PerPage: perPage}
	for {
		page, resp, err := listAssetsPage(ctx, c.githubClient, repo, releaseID, opt)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list release assets",
				goerr.T(types.ErrTagAPI),
				goerr.V("repository", repo.FullName()),
				goerr.V("release_id", releaseID),
				goerr.V("page", opt.Page),
			)
		}

		for _, a := range page {
			assets = append(assets, toAsset(a))
		}

		if resp.NextPage == 0 {
			return assets, nil
		}
		opt.Page = resp.NextPage
	}
}

func listAssetsPage(ctx context.Context, gh *github.Client, repo model.Repository, releaseID int64, opt *github.ListOptions) ([]*github.ReleaseAsset, *github.Response, error) {
	type pageResult struct {
		assets []*github.ReleaseAsset
		resp   *github.Response
	}

	result, err := withThrottleRetry(ctx, "list_release_assets", func() (pageResult, error) {
		assets, resp, err := gh.Repositories.ListReleaseAssets(ctx, repo.Owner, repo.Name, releaseID, opt)
		return pageResult{assets: assets, resp: resp}, err
	})
	return result.assets, result.resp, err
}

// DownloadAsset opens the binary content of an asset. GitHub answers with a
// redirect to a pre-signed URL; the follower client carries no credentials
// so the token never reaches the storage backend.
func (c *client) DownloadAsset(ctx context.Context, repo model.Repository, assetID int64) (io.ReadCloser, error) {
	rc, err := withThrottleRetry(ctx, "download_asset", func() (io.ReadCloser, error) {
		rc, _, err := c.githubClient.Repositories.DownloadReleaseAsset(ctx, repo.Owner, repo.Name, assetID, http.DefaultClient)
		return rc, err
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to download asset",
			goerr.T(types.ErrTagAPI),
			goerr.V("repository", repo.FullName()),
			goerr.V("asset_id", assetID),
		)
	}

	return rc, nil
}

// UploadAsset attaches content to a release under the asset's file name.
// The request declares the exact byte count in Content-Length and keeps the
// original content type.
func (c *client) UploadAsset(ctx context.Context, repo model.Repository, releaseID int64, asset *model.Asset, content []byte) error {
	u := fmt.Sprintf("%srepos/%s/%s/releases/%d/assets?name=%s",
		c.githubClient.UploadURL.String(), repo.Owner, repo.Name, releaseID, url.QueryEscape(asset.Name))

	_, err := withThrottleRetry(ctx, "upload_asset", func() (struct{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(content))
		if err != nil {
			return struct{}{}, err
		}
		req.ContentLength = int64(len(content))
		contentType := asset.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		req.Header.Set("Content-Type", contentType)

		resp, err := c.githubClient.Client().Do(req)
		if err != nil {
			return struct{}{}, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusCreated {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			return struct{}{}, goerr.New("unexpected status from asset upload",
				goerr.V("status", resp.StatusCode),
				goerr.V("body", string(body)),
			)
		}
		return struct{}{}, nil
	})
	if err != nil {
		return goerr.Wrap(err, "failed to upload asset",
			goerr.T(types.ErrTagAPI),
			goerr.V("repository", repo.FullName()),
			goerr.V("release_id", releaseID),
			goerr.V("asset", asset.Name),
		)
	}

	return nil
}

func toAsset(a *github.ReleaseAsset) *model.Asset {
	return &model.Asset{
		ID:          a.GetID(),
		Name:        a.GetName(),
		Size:        int64(a.GetSize()),
		ContentType: a.GetContentType(),
	}
}
