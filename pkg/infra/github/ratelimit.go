package github

import (
	"context"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/octomirror/pkg/domain/model"
	"github.com/m-mizutani/octomirror/pkg/domain/types"
)

// GetRateLimit samples the current core API quota. The rate limit endpoint
// itself does not consume quota, and the snapshot is never cached: the sync
// loop re-queries before every gating decision.
func (c *client) GetRateLimit(ctx context.Context) (*model.RateLimit, error) {
	limits, err := withThrottleRetry(ctx, "get_rate_limit", func() (*github.RateLimits, error) {
		limits, _, err := c.githubClient.RateLimit.Get(ctx)
		return limits, err
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get rate limit", goerr.T(types.ErrTagAPI))
	}

	core := limits.GetCore()
	if core == nil {
		return nil, goerr.New("rate limit response has no core quota", goerr.T(types.ErrTagAPI))
	}

	return &model.RateLimit{
		Remaining: core.Remaining,
		Limit:     core.Limit,
	}, nil
}
