package usecase_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/octomirror/pkg/domain/model"
	"github.com/m-mizutani/octomirror/pkg/domain/types"
	"github.com/m-mizutani/octomirror/pkg/usecase"
)

// mockGitHubClient implements interfaces.GitHubClient with function fields
// and records every call in order.
type mockGitHubClient struct {
	repositoryExists  func(ctx context.Context, repo model.Repository) (bool, error)
	listReleases      func(ctx context.Context, repo model.Repository) ([]*model.Release, error)
	getReleaseByTag   func(ctx context.Context, repo model.Repository, tag string) (*model.Release, error)
	createRelease     func(ctx context.Context, repo model.Repository, release *model.Release) (*model.Release, error)
	deleteRelease     func(ctx context.Context, repo model.Repository, releaseID int64) error
	listReleaseAssets func(ctx context.Context, repo model.Repository, releaseID int64) ([]*model.Asset, error)
	downloadAsset     func(ctx context.Context, repo model.Repository, assetID int64) (io.ReadCloser, error)
	uploadAsset       func(ctx context.Context, repo model.Repository, releaseID int64, asset *model.Asset, content []byte) error
	getRateLimit      func(ctx context.Context) (*model.RateLimit, error)

	calls []string
}

func (m *mockGitHubClient) record(format string, args ...any) {
	m.calls = append(m.calls, fmt.Sprintf(format, args...))
}

// callsLike returns the recorded calls whose name contains substr
func (m *mockGitHubClient) callsLike(substr string) []string {
	var matched []string
	for _, call := range m.calls {
		if strings.Contains(call, substr) {
			matched = append(matched, call)
		}
	}
	return matched
}

func (m *mockGitHubClient) RepositoryExists(ctx context.Context, repo model.Repository) (bool, error) {
	m.record("repository_exists(%s)", repo.FullName())
	return m.repositoryExists(ctx, repo)
}

func (m *mockGitHubClient) ListReleases(ctx context.Context, repo model.Repository) ([]*model.Release, error) {
	m.record("list_releases(%s)", repo.FullName())
	return m.listReleases(ctx, repo)
}

func (m *mockGitHubClient) GetReleaseByTag(ctx context.Context, repo model.Repository, tag string) (*model.Release, error) {
	m.record("get_release_by_tag(%s)", tag)
	return m.getReleaseByTag(ctx, repo, tag)
}

func (m *mockGitHubClient) CreateRelease(ctx context.Context, repo model.Repository, release *model.Release) (*model.Release, error) {
	m.record("create_release(%s)", release.TagName)
	return m.createRelease(ctx, repo, release)
}

func (m *mockGitHubClient) DeleteRelease(ctx context.Context, repo model.Repository, releaseID int64) error {
	m.record("delete_release(%d)", releaseID)
	return m.deleteRelease(ctx, repo, releaseID)
}

func (m *mockGitHubClient) ListReleaseAssets(ctx context.Context, repo model.Repository, releaseID int64) ([]*model.Asset, error) {
	m.record("list_release_assets(%d)", releaseID)
	return m.listReleaseAssets(ctx, repo, releaseID)
}

func (m *mockGitHubClient) DownloadAsset(ctx context.Context, repo model.Repository, assetID int64) (io.ReadCloser, error) {
	m.record("download_asset(%d)", assetID)
	return m.downloadAsset(ctx, repo, assetID)
}

func (m *mockGitHubClient) UploadAsset(ctx context.Context, repo model.Repository, releaseID int64, asset *model.Asset, content []byte) error {
	m.record("upload_asset(%d,%s)", releaseID, asset.Name)
	return m.uploadAsset(ctx, repo, releaseID, asset, content)
}

func (m *mockGitHubClient) GetRateLimit(ctx context.Context) (*model.RateLimit, error) {
	m.record("get_rate_limit")
	return m.getRateLimit(ctx)
}

// newMockClient returns a mock with a healthy default behavior: both
// repositories exist, three source releases v1..v3 with no assets, nothing
// in the target yet, plenty of quota.
func newMockClient() *mockGitHubClient {
	return &mockGitHubClient{
		repositoryExists: func(ctx context.Context, repo model.Repository) (bool, error) {
			return true, nil
		},
		listReleases: func(ctx context.Context, repo model.Repository) ([]*model.Release, error) {
			// Platform order: newest first
			return []*model.Release{
				{ID: 3, TagName: "v3", Name: "Third"},
				{ID: 2, TagName: "v2", Name: "Second"},
				{ID: 1, TagName: "v1", Name: "First"},
			}, nil
		},
		getReleaseByTag: func(ctx context.Context, repo model.Repository, tag string) (*model.Release, error) {
			return nil, goerr.Wrap(types.ErrReleaseNotFound, "no release with tag", goerr.V("tag", tag))
		},
		createRelease: func(ctx context.Context, repo model.Repository, release *model.Release) (*model.Release, error) {
			created := *release
			created.ID = release.ID + 100
			return &created, nil
		},
		deleteRelease: func(ctx context.Context, repo model.Repository, releaseID int64) error {
			return nil
		},
		listReleaseAssets: func(ctx context.Context, repo model.Repository, releaseID int64) ([]*model.Asset, error) {
			return nil, nil
		},
		downloadAsset: func(ctx context.Context, repo model.Repository, assetID int64) (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(nil)), nil
		},
		uploadAsset: func(ctx context.Context, repo model.Repository, releaseID int64, asset *model.Asset, content []byte) error {
			return nil
		},
		getRateLimit: func(ctx context.Context) (*model.RateLimit, error) {
			return &model.RateLimit{Remaining: 4500, Limit: 5000}, nil
		},
	}
}

func syncInput() *model.SyncInput {
	return &model.SyncInput{
		Source: "upstream/app",
		Target: "mirror/app",
	}
}

func TestSync_CreatesAllReleasesInOrder(t *testing.T) {
	mock := newMockClient()
	uc := usecase.NewSync(mock)

	report, err := uc.Sync(context.Background(), syncInput())
	gt.NoError(t, err)
	gt.Value(t, report.Created).Equal(3)
	gt.Value(t, report.Skipped).Equal(0)
	gt.Value(t, report.Replaced).Equal(0)

	// Oldest first, and v2 is never touched before v1 is fully synced
	gt.Value(t, mock.callsLike("create_release")).Equal([]string{
		"create_release(v1)",
		"create_release(v2)",
		"create_release(v3)",
	})
	gt.Value(t, mock.callsLike("get_release_by_tag")).Equal([]string{
		"get_release_by_tag(v1)",
		"get_release_by_tag(v2)",
		"get_release_by_tag(v3)",
	})
}

func TestSync_Idempotence(t *testing.T) {
	mock := newMockClient()
	mock.getReleaseByTag = func(ctx context.Context, repo model.Repository, tag string) (*model.Release, error) {
		return &model.Release{ID: 500, TagName: tag}, nil
	}
	uc := usecase.NewSync(mock)

	report, err := uc.Sync(context.Background(), syncInput())
	gt.NoError(t, err)
	gt.Value(t, report.Skipped).Equal(3)
	gt.Value(t, report.Created).Equal(0)

	// A second run with nothing new must not mutate the target
	gt.Array(t, mock.callsLike("create_release")).Length(0)
	gt.Array(t, mock.callsLike("delete_release")).Length(0)
	gt.Array(t, mock.callsLike("upload_asset")).Length(0)
}

func TestSync_DeleteModeReplacesExisting(t *testing.T) {
	mock := newMockClient()
	mock.getReleaseByTag = func(ctx context.Context, repo model.Repository, tag string) (*model.Release, error) {
		if tag == "v2" {
			return &model.Release{ID: 777, TagName: "v2"}, nil
		}
		return nil, goerr.Wrap(types.ErrReleaseNotFound, "no release with tag")
	}
	uc := usecase.NewSync(mock)

	input := syncInput()
	input.DeleteReleases = true

	report, err := uc.Sync(context.Background(), input)
	gt.NoError(t, err)
	gt.Value(t, report.Created).Equal(2)
	gt.Value(t, report.Replaced).Equal(1)

	// The old release is deleted before the same-tag create
	gt.Value(t, mock.callsLike("delete_release")).Equal([]string{"delete_release(777)"})
	var deleteIdx, createIdx int
	for i, call := range mock.calls {
		switch call {
		case "delete_release(777)":
			deleteIdx = i
		case "create_release(v2)":
			createIdx = i
		}
	}
	gt.True(t, deleteIdx < createIdx)
}

func TestSync_ResumeCursor(t *testing.T) {
	mock := newMockClient()
	uc := usecase.NewSync(mock)

	input := syncInput()
	input.StartFrom = "v2"

	report, err := uc.Sync(context.Background(), input)
	gt.NoError(t, err)
	gt.Value(t, report.Created).Equal(2)

	// v1 is never queried for existence in the target
	gt.Value(t, mock.callsLike("get_release_by_tag")).Equal([]string{
		"get_release_by_tag(v2)",
		"get_release_by_tag(v3)",
	})
}

func TestSync_UnmatchedCursorIsNoOp(t *testing.T) {
	mock := newMockClient()
	uc := usecase.NewSync(mock)

	input := syncInput()
	input.StartFrom = "v99"

	report, err := uc.Sync(context.Background(), input)
	gt.NoError(t, err)
	gt.Value(t, report.Total()).Equal(0)
	gt.Array(t, mock.callsLike("get_release_by_tag")).Length(0)
	gt.Array(t, mock.callsLike("create_release")).Length(0)
}

func TestSync_RateLimitGate(t *testing.T) {
	t.Run("gate trips before the first release", func(t *testing.T) {
		mock := newMockClient()
		mock.getRateLimit = func(ctx context.Context) (*model.RateLimit, error) {
			return &model.RateLimit{Remaining: 999, Limit: 5000}, nil
		}
		uc := usecase.NewSync(mock)

		_, err := uc.Sync(context.Background(), syncInput())
		gt.Error(t, err)
		gt.True(t, errors.Is(err, types.ErrRateLimitExhausted))
		gt.True(t, goerr.HasTag(err, types.ErrTagRateLimit))

		// The gated release's lookup and create never happen
		gt.Array(t, mock.callsLike("get_release_by_tag")).Length(0)
		gt.Array(t, mock.callsLike("create_release")).Length(0)
	})

	t.Run("gate trips mid-run", func(t *testing.T) {
		mock := newMockClient()
		quota := 1200
		mock.getRateLimit = func(ctx context.Context) (*model.RateLimit, error) {
			// Quota drains by 150 calls per release; the floor for a 5000
			// ceiling is 1000, so the gate trips before the third release.
			snapshot := &model.RateLimit{Remaining: quota, Limit: 5000}
			quota -= 150
			return snapshot, nil
		}
		uc := usecase.NewSync(mock)

		_, err := uc.Sync(context.Background(), syncInput())
		gt.Error(t, err)
		gt.True(t, errors.Is(err, types.ErrRateLimitExhausted))

		// v1 and v2 are synced, v3 is left for a future run
		gt.Value(t, mock.callsLike("create_release")).Equal([]string{
			"create_release(v1)",
			"create_release(v2)",
		})
	})

	t.Run("quota is re-queried for every release", func(t *testing.T) {
		mock := newMockClient()
		uc := usecase.NewSync(mock)

		_, err := uc.Sync(context.Background(), syncInput())
		gt.NoError(t, err)
		gt.Array(t, mock.callsLike("get_rate_limit")).Length(3)
	})
}

func TestSync_LookupFailureIsNotAbsence(t *testing.T) {
	mock := newMockClient()
	mock.getReleaseByTag = func(ctx context.Context, repo model.Repository, tag string) (*model.Release, error) {
		return nil, goerr.New("bad gateway", goerr.T(types.ErrTagAPI))
	}
	uc := usecase.NewSync(mock)

	_, err := uc.Sync(context.Background(), syncInput())
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, types.ErrTagAPI))

	// A failed lookup must never silently turn into a create
	gt.Array(t, mock.callsLike("create_release")).Length(0)
}

func TestSync_RepositoryResolution(t *testing.T) {
	t.Run("missing source repository", func(t *testing.T) {
		mock := newMockClient()
		mock.repositoryExists = func(ctx context.Context, repo model.Repository) (bool, error) {
			return repo.Owner != "upstream", nil
		}
		uc := usecase.NewSync(mock)

		_, err := uc.Sync(context.Background(), syncInput())
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, types.ErrTagNotFound))
	})

	t.Run("lookup failure is treated as non-existence", func(t *testing.T) {
		mock := newMockClient()
		mock.repositoryExists = func(ctx context.Context, repo model.Repository) (bool, error) {
			return false, goerr.New("boom")
		}
		uc := usecase.NewSync(mock)

		_, err := uc.Sync(context.Background(), syncInput())
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, types.ErrTagNotFound))
	})

	t.Run("bad identifier", func(t *testing.T) {
		uc := usecase.NewSync(newMockClient())

		input := syncInput()
		input.Source = "not-a-repo"

		_, err := uc.Sync(context.Background(), input)
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, types.ErrTagConfig))
	})
}

func TestSync_DryRun(t *testing.T) {
	mock := newMockClient()
	mock.getReleaseByTag = func(ctx context.Context, repo model.Repository, tag string) (*model.Release, error) {
		if tag == "v1" {
			return &model.Release{ID: 500, TagName: "v1"}, nil
		}
		return nil, goerr.Wrap(types.ErrReleaseNotFound, "no release with tag")
	}
	uc := usecase.NewSync(mock)

	input := syncInput()
	input.DeleteReleases = true
	input.DryRun = true

	report, err := uc.Sync(context.Background(), input)
	gt.NoError(t, err)
	gt.True(t, report.DryRun)
	gt.Value(t, report.Replaced).Equal(1)
	gt.Value(t, report.Created).Equal(2)

	// Decisions are made through read-only calls alone
	gt.Array(t, mock.callsLike("get_release_by_tag")).Length(3)
	gt.Array(t, mock.callsLike("delete_release")).Length(0)
	gt.Array(t, mock.callsLike("create_release")).Length(0)
	gt.Array(t, mock.callsLike("download_asset")).Length(0)
	gt.Array(t, mock.callsLike("upload_asset")).Length(0)
}
