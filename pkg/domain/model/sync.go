package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/octomirror/pkg/domain/types"
)

// SyncInput holds the options for one sync run
type SyncInput struct {
	Source         string
	Target         string
	DeleteReleases bool
	StartFrom      string
	DryRun         bool
}

// Validate checks that both repository identifiers are present. Their shape
// is checked later by ParseRepository.
func (x *SyncInput) Validate() error {
	if x.Source == "" {
		return goerr.New("source repository is required", goerr.T(types.ErrTagConfig))
	}
	if x.Target == "" {
		return goerr.New("target repository is required and no default is available", goerr.T(types.ErrTagConfig))
	}
	return nil
}

// SyncAction is the decision made for one release
type SyncAction string

const (
	ActionCreate  SyncAction = "create"
	ActionReplace SyncAction = "replace"
	ActionSkip    SyncAction = "skip"
)

// SyncReport summarizes one sync run for the CLI summary and notifications
type SyncReport struct {
	RunID    string
	Source   Repository
	Target   Repository
	DryRun   bool
	Created  int
	Replaced int
	Skipped  int
	Assets   int
	Bytes    int64
	Duration time.Duration
}

// Count increments the counter for the given action
func (x *SyncReport) Count(action SyncAction) {
	switch action {
	case ActionCreate:
		x.Created++
	case ActionReplace:
		x.Replaced++
	case ActionSkip:
		x.Skipped++
	}
}

// Total returns the number of releases considered in this run
func (x *SyncReport) Total() int {
	return x.Created + x.Replaced + x.Skipped
}
