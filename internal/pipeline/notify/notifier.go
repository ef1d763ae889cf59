package notify

import (
	"context"

	dataset "analyzer-training/internal/dataset/domain"
)

// Notifier announces finished dataset builds.
type Notifier interface {
	Notify(ctx context.Context, summary dataset.BuildSummary) error
}
