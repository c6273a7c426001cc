package usecase

import (
	"context"
	"errors"
	"io"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/octomirror/pkg/domain/model"
)

// transferRelease creates the release in the target and copies every asset
// of the source release, in list order. Every asset is attempted even when
// an earlier one fails; collected failures abort the run after the loop so
// the next release never starts on a broken one. Release metadata already
// created is not rolled back.
func (uc *syncUseCase) transferRelease(ctx context.Context, source, target model.Repository, release *model.Release, report *model.SyncReport) error {
	logger := ctxlog.From(ctx)

	created, err := uc.client.CreateRelease(ctx, target, release)
	if err != nil {
		return err
	}

	assets, err := uc.client.ListReleaseAssets(ctx, source, release.ID)
	if err != nil {
		return err
	}

	var errs []error
	for _, asset := range assets {
		copied, err := uc.transferAsset(ctx, source, target, created.ID, asset)
		if err != nil {
			logger.Error("Asset transfer failed",
				"tag", release.TagName,
				"asset", asset.Name,
				"error", err,
			)
			errs = append(errs, err)
			continue
		}

		report.Assets++
		report.Bytes += copied

		logger.Info("Transferred asset",
			"tag", release.TagName,
			"asset", asset.Name,
			"size", copied,
		)
	}

	if err := errors.Join(errs...); err != nil {
		return goerr.Wrap(err, "failed to transfer release assets",
			goerr.V("tag", release.TagName),
			goerr.V("failed", len(errs)),
			goerr.V("total", len(assets)),
		)
	}

	return nil
}

// transferAsset copies one asset byte-for-byte: download from the source,
// buffer fully in memory, upload to the created target release. The buffer
// lives only for the duration of this call.
func (uc *syncUseCase) transferAsset(ctx context.Context, source, target model.Repository, releaseID int64, asset *model.Asset) (int64, error) {
	rc, err := uc.client.DownloadAsset(ctx, source, asset.ID)
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	bar := uc.tracker.Start(asset.Name, asset.Size)
	defer bar.Finish()

	content, err := io.ReadAll(bar.Proxy(rc))
	if err != nil {
		return 0, goerr.Wrap(err, "failed to read asset content",
			goerr.V("asset", asset.Name),
		)
	}

	if err := uc.client.UploadAsset(ctx, target, releaseID, asset, content); err != nil {
		return 0, err
	}

	return int64(len(content)), nil
}
