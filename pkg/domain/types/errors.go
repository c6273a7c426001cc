package types

import "github.com/m-mizutani/goerr/v2"

// Error tags classify failures for top-level handling. A run aborts on the
// first error that escapes the sync loop; tags tell the operator which knob
// to turn before the next run.
var (
	// ErrTagConfig marks bad or missing configuration values
	ErrTagConfig = goerr.NewTag("configuration")

	// ErrTagNotFound marks an absent source or target repository
	ErrTagNotFound = goerr.NewTag("not_found")

	// ErrTagRateLimit marks a run aborted by the quota guard
	ErrTagRateLimit = goerr.NewTag("rate_limit")

	// ErrTagThrottle marks a throttling response that survived the retry budget
	ErrTagThrottle = goerr.NewTag("throttle")

	// ErrTagAPI marks any other GitHub API failure
	ErrTagAPI = goerr.NewTag("api")
)

var (
	// ErrReleaseNotFound distinguishes "no release with this tag" from a
	// failed lookup. Callers branch on it with errors.Is; any other error
	// from a lookup must be treated as a real failure, never as absence.
	ErrReleaseNotFound = goerr.New("release not found")

	// ErrRateLimitExhausted is returned when the remaining API quota drops
	// below the safety floor before a release is processed.
	ErrRateLimitExhausted = goerr.New("API rate limit quota exhausted", goerr.T(ErrTagRateLimit))
)
