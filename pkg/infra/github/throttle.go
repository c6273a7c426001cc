package github

import (
	"context"
	"errors"
	"time"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/octomirror/pkg/domain/types"
)

// withThrottleRetry runs one API call with the throttling policy: a primary
// rate-limit response is retried once after the platform-suggested delay, a
// second one is terminal. Secondary (abuse detection) responses are never
// retried.
func withThrottleRetry[T any](ctx context.Context, op string, fn func() (T, error)) (T, error) {
	result, err := fn()
	if err == nil {
		return result, nil
	}

	logger := ctxlog.From(ctx)

	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		logger.Warn("Secondary rate limit triggered, not retrying",
			"operation", op,
			"retry_after", abuseErr.GetRetryAfter(),
		)
		return result, goerr.Wrap(err, "secondary rate limit triggered",
			goerr.T(types.ErrTagThrottle),
			goerr.V("operation", op),
		)
	}

	var rateErr *github.RateLimitError
	if !errors.As(err, &rateErr) {
		return result, err
	}

	delay := time.Until(rateErr.Rate.Reset.Time)
	if delay < 0 {
		delay = 0
	}

	logger.Warn("Rate limited, retrying once after reset",
		"operation", op,
		"delay", delay,
	)

	select {
	case <-ctx.Done():
		return result, goerr.Wrap(ctx.Err(), "cancelled while waiting for rate limit reset",
			goerr.V("operation", op),
		)
	case <-time.After(delay):
	}

	result, err = fn()
	if err == nil {
		return result, nil
	}

	if errors.As(err, &rateErr) {
		return result, goerr.Wrap(err, "rate limited again after retry",
			goerr.T(types.ErrTagThrottle),
			goerr.V("operation", op),
		)
	}

	return result, err
}
