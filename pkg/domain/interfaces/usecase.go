package interfaces

import (
	"context"

	"github.com/m-mizutani/octomirror/pkg/domain/model"
)

// SyncUseCase defines the release synchronization operation
type SyncUseCase interface {
	// Sync copies releases from the source repository to the target
	// repository and reports what was done.
	Sync(ctx context.Context, input *model.SyncInput) (*model.SyncReport, error)
}
