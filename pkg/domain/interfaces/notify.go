package interfaces

import (
	"context"

	"github.com/m-mizutani/octomirror/pkg/domain/model"
)

// Notifier delivers the outcome of a sync run to an external channel
type Notifier interface {
	// NotifyReport announces a completed run
	NotifyReport(ctx context.Context, report *model.SyncReport) error

	// NotifyFailure announces an aborted run
	NotifyFailure(ctx context.Context, input *model.SyncInput, runErr error) error
}
