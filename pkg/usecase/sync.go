package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/octomirror/pkg/domain/interfaces"
	"github.com/m-mizutani/octomirror/pkg/domain/model"
	"github.com/m-mizutani/octomirror/pkg/domain/types"
	"github.com/m-mizutani/octomirror/pkg/utils/progress"
)

// quotaFloor is the fraction of the rate limit ceiling that must remain
// before each release is processed. Crossing it aborts the run.
const quotaFloor = 0.2

type syncUseCase struct {
	client  interfaces.GitHubClient
	tracker progress.Tracker
}

// SyncOption customizes the sync use case
type SyncOption func(*syncUseCase)

// WithProgress sets the progress tracker for asset downloads
func WithProgress(tracker progress.Tracker) SyncOption {
	return func(uc *syncUseCase) {
		uc.tracker = tracker
	}
}

// NewSync creates a new instance of SyncUseCase
func NewSync(client interfaces.GitHubClient, opts ...SyncOption) interfaces.SyncUseCase {
	uc := &syncUseCase{
		client:  client,
		tracker: progress.Nop(),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Sync copies releases from the source repository to the target repository,
// oldest first. The run aborts on the first error that is not a normal
// branch of the plan; the resume cursor carried by the error is the only
// recovery mechanism across runs.
func (uc *syncUseCase) Sync(ctx context.Context, input *model.SyncInput) (*model.SyncReport, error) {
	startedAt := time.Now()
	runID := uuid.NewString()
	logger := ctxlog.From(ctx).With("run_id", runID)
	ctx = ctxlog.With(ctx, logger)

	if err := input.Validate(); err != nil {
		return nil, err
	}

	source, err := model.ParseRepository(input.Source)
	if err != nil {
		return nil, err
	}
	target, err := model.ParseRepository(input.Target)
	if err != nil {
		return nil, err
	}

	logger.Info("Starting release sync",
		"source", source.FullName(),
		"target", target.FullName(),
		"delete_releases", input.DeleteReleases,
		"start_from", input.StartFrom,
		"dry_run", input.DryRun,
	)

	if err := uc.resolve(ctx, source, target); err != nil {
		return nil, err
	}

	releases, err := uc.enumerate(ctx, source, input.StartFrom)
	if err != nil {
		return nil, err
	}

	report := &model.SyncReport{
		RunID:  runID,
		Source: source,
		Target: target,
		DryRun: input.DryRun,
	}

	for _, release := range releases {
		if err := uc.syncRelease(ctx, source, target, release, input, report); err != nil {
			return nil, err
		}
	}

	report.Duration = time.Since(startedAt)

	logger.Info("Release sync completed",
		"created", report.Created,
		"replaced", report.Replaced,
		"skipped", report.Skipped,
		"assets", report.Assets,
		"bytes", report.Bytes,
		"duration", report.Duration,
	)

	return report, nil
}

// resolve confirms both repositories exist. A failed lookup is reported as
// non-existence, matching the read-only contract of this step.
func (uc *syncUseCase) resolve(ctx context.Context, repos ...model.Repository) error {
	for _, repo := range repos {
		exists, err := uc.client.RepositoryExists(ctx, repo)
		if err != nil {
			return goerr.Wrap(err, "repository not found",
				goerr.T(types.ErrTagNotFound),
				goerr.V("repository", repo.FullName()),
			)
		}
		if !exists {
			return goerr.New("repository not found",
				goerr.T(types.ErrTagNotFound),
				goerr.V("repository", repo.FullName()),
			)
		}
	}
	return nil
}

// enumerate lists all source releases and returns the oldest-first
// candidates, honoring the resume cursor.
func (uc *syncUseCase) enumerate(ctx context.Context, source model.Repository, startFrom string) ([]*model.Release, error) {
	logger := ctxlog.From(ctx)

	listed, err := uc.client.ListReleases(ctx, source)
	if err != nil {
		return nil, err
	}

	releases := model.FromTag(model.Chronological(listed), startFrom)
	if len(releases) == 0 && startFrom != "" {
		logger.Warn("No release matches the resume cursor, nothing to do",
			"start_from", startFrom,
			"total", len(listed),
		)
	}

	logger.Info("Enumerated source releases",
		"total", len(listed),
		"candidates", len(releases),
	)

	return releases, nil
}

// syncRelease plans and executes the sync of one release. Releases are
// strictly sequential: this function does not return until the release is
// fully copied or skipped.
func (uc *syncUseCase) syncRelease(ctx context.Context, source, target model.Repository, release *model.Release, input *model.SyncInput, report *model.SyncReport) error {
	logger := ctxlog.From(ctx)

	limit, err := uc.client.GetRateLimit(ctx)
	if err != nil {
		return err
	}
	if limit.Below(quotaFloor) {
		return goerr.Wrap(types.ErrRateLimitExhausted, "aborting before the quota floor is crossed",
			goerr.V("remaining", limit.Remaining),
			goerr.V("limit", limit.Limit),
			goerr.V("resume_from", release.TagName),
		)
	}

	action := model.ActionCreate

	existing, err := uc.client.GetReleaseByTag(ctx, target, release.TagName)
	switch {
	case err == nil:
		if !input.DeleteReleases {
			logger.Info("Release already exists in target, skipping",
				"tag", release.TagName,
			)
			report.Count(model.ActionSkip)
			return nil
		}

		action = model.ActionReplace
		if !input.DryRun {
			if err := uc.client.DeleteRelease(ctx, target, existing.ID); err != nil {
				return err
			}
			logger.Info("Deleted existing release in target",
				"tag", release.TagName,
				"release_id", existing.ID,
			)
		}

	case errors.Is(err, types.ErrReleaseNotFound):
		// Normal branch: the release is new to the target

	default:
		// A failed lookup is not absence. Creating here could duplicate a
		// release that actually exists.
		return err
	}

	report.Count(action)

	if input.DryRun {
		logger.Info("Dry-run: would copy release",
			"tag", release.TagName,
			"action", action,
		)
		return nil
	}

	if err := uc.transferRelease(ctx, source, target, release, report); err != nil {
		return err
	}

	logger.Info("Synced release",
		"tag", release.TagName,
		"action", action,
	)

	return nil
}
