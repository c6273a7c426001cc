package usecase_test

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/octomirror/pkg/domain/model"
	"github.com/m-mizutani/octomirror/pkg/usecase"
	"github.com/m-mizutani/octomirror/pkg/utils/progress"
)

// withAssets gives the mock one source release carrying the given assets,
// backed by the contents map keyed by asset ID.
func withAssets(mock *mockGitHubClient, assets []*model.Asset, contents map[int64][]byte) {
	mock.listReleases = func(ctx context.Context, repo model.Repository) ([]*model.Release, error) {
		return []*model.Release{{ID: 1, TagName: "v1", Name: "First"}}, nil
	}
	mock.listReleaseAssets = func(ctx context.Context, repo model.Repository, releaseID int64) ([]*model.Asset, error) {
		return assets, nil
	}
	mock.downloadAsset = func(ctx context.Context, repo model.Repository, assetID int64) (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(contents[assetID])), nil
	}
}

func TestTransfer_ByteFidelity(t *testing.T) {
	content := []byte("binary \x00\x01\x02 payload of release v1")

	mock := newMockClient()
	withAssets(mock,
		[]*model.Asset{{ID: 10, Name: "app.tar.gz", Size: int64(len(content)), ContentType: "application/gzip"}},
		map[int64][]byte{10: content},
	)

	var uploaded []byte
	var uploadedTo int64
	var uploadedAsset *model.Asset
	mock.uploadAsset = func(ctx context.Context, repo model.Repository, releaseID int64, asset *model.Asset, body []byte) error {
		uploadedTo = releaseID
		uploadedAsset = asset
		uploaded = append([]byte(nil), body...)
		return nil
	}

	uc := usecase.NewSync(mock, usecase.WithProgress(progress.Nop()))

	report, err := uc.Sync(context.Background(), syncInput())
	gt.NoError(t, err)

	gt.Value(t, uploaded).Equal(content)
	gt.Value(t, uploadedTo).Equal(int64(101)) // the ID of the created target release
	gt.Value(t, uploadedAsset.Name).Equal("app.tar.gz")
	gt.Value(t, report.Assets).Equal(1)
	gt.Value(t, report.Bytes).Equal(int64(len(content)))
}

func TestTransfer_AssetsInListOrder(t *testing.T) {
	mock := newMockClient()
	withAssets(mock,
		[]*model.Asset{
			{ID: 10, Name: "linux.tar.gz"},
			{ID: 11, Name: "darwin.tar.gz"},
			{ID: 12, Name: "checksums.txt"},
		},
		map[int64][]byte{10: []byte("l"), 11: []byte("d"), 12: []byte("c")},
	)
	uc := usecase.NewSync(mock)

	_, err := uc.Sync(context.Background(), syncInput())
	gt.NoError(t, err)

	gt.Value(t, mock.callsLike("upload_asset")).Equal([]string{
		"upload_asset(101,linux.tar.gz)",
		"upload_asset(101,darwin.tar.gz)",
		"upload_asset(101,checksums.txt)",
	})
}

func TestTransfer_FailedAssetDoesNotBlockTheRest(t *testing.T) {
	mock := newMockClient()
	withAssets(mock,
		[]*model.Asset{
			{ID: 10, Name: "linux.tar.gz"},
			{ID: 11, Name: "darwin.tar.gz"},
			{ID: 12, Name: "checksums.txt"},
		},
		map[int64][]byte{10: []byte("l"), 11: []byte("d"), 12: []byte("c")},
	)
	mock.uploadAsset = func(ctx context.Context, repo model.Repository, releaseID int64, asset *model.Asset, body []byte) error {
		if asset.Name == "darwin.tar.gz" {
			return goerr.New("upload rejected")
		}
		return nil
	}
	uc := usecase.NewSync(mock)

	_, err := uc.Sync(context.Background(), syncInput())

	// Every asset was attempted, then the run aborted
	gt.Array(t, mock.callsLike("upload_asset")).Length(3)
	gt.Error(t, err)
	gt.String(t, err.Error()).Contains("failed to transfer release assets")
}

func TestTransfer_CreateFailureAborts(t *testing.T) {
	mock := newMockClient()
	mock.createRelease = func(ctx context.Context, repo model.Repository, release *model.Release) (*model.Release, error) {
		return nil, goerr.New("create failed")
	}
	uc := usecase.NewSync(mock)

	_, err := uc.Sync(context.Background(), syncInput())
	gt.Error(t, err)

	// Release v1 failed, so v2 never starts
	gt.Value(t, mock.callsLike("create_release")).Equal([]string{"create_release(v1)"})
	gt.Array(t, mock.callsLike("list_release_assets")).Length(0)
}

func TestTransfer_DownloadFailureSurfaces(t *testing.T) {
	mock := newMockClient()
	withAssets(mock,
		[]*model.Asset{{ID: 10, Name: "app.tar.gz"}},
		nil,
	)
	mock.downloadAsset = func(ctx context.Context, repo model.Repository, assetID int64) (io.ReadCloser, error) {
		return nil, goerr.New("download failed")
	}
	uc := usecase.NewSync(mock)

	_, err := uc.Sync(context.Background(), syncInput())
	gt.Error(t, err)
	gt.Array(t, mock.callsLike("upload_asset")).Length(0)
}
