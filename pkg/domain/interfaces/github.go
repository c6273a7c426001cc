package interfaces

import (
	"context"
	"io"

	"github.com/m-mizutani/octomirror/pkg/domain/model"
)

// GitHubClient defines operations for interacting with the GitHub API.
// GetReleaseByTag returns types.ErrReleaseNotFound when no release carries
// the tag; any other error means the lookup itself failed and must not be
// treated as absence.
type GitHubClient interface {
	// RepositoryExists reports whether the repository exists. A 404 is not
	// an error; it yields (false, nil).
	RepositoryExists(ctx context.Context, repo model.Repository) (bool, error)

	// ListReleases retrieves all releases of the repository, following every
	// continuation page. Results are in platform order (newest first).
	ListReleases(ctx context.Context, repo model.Repository) ([]*model.Release, error)

	// GetReleaseByTag looks up a release by its tag name
	GetReleaseByTag(ctx context.Context, repo model.Repository, tag string) (*model.Release, error)

	// CreateRelease creates a published release with the given tag, name and
	// body. The created release is returned with its new ID.
	CreateRelease(ctx context.Context, repo model.Repository, release *model.Release) (*model.Release, error)

	// DeleteRelease deletes a release by its ID
	DeleteRelease(ctx context.Context, repo model.Repository, releaseID int64) error

	// ListReleaseAssets retrieves all assets of a release, following every
	// continuation page.
	ListReleaseAssets(ctx context.Context, repo model.Repository, releaseID int64) ([]*model.Asset, error)

	// DownloadAsset opens the binary content of an asset. The caller must
	// close the returned reader.
	DownloadAsset(ctx context.Context, repo model.Repository, assetID int64) (io.ReadCloser, error)

	// UploadAsset attaches content to a release under the asset's file name,
	// declaring the exact byte length.
	UploadAsset(ctx context.Context, repo model.Repository, releaseID int64, asset *model.Asset, content []byte) error

	// GetRateLimit samples the current API quota
	GetRateLimit(ctx context.Context) (*model.RateLimit, error)
}
