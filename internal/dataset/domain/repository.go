package dataset

import (
	"context"
	"io"
)

// Repository stores build summaries and their rows. A summary without FinishedAt is a build in
// progress; DeleteBuild removes a build together with its rows and is a no-op for unknown ids.
type Repository interface {
	SaveBuild(ctx context.Context, summary BuildSummary) error
	SaveProcessedRows(ctx context.Context, buildID string, rows []ProcessedRow) error
	SaveSyntheticRows(ctx context.Context, buildID string, offset int, records []SyntheticRecord) error
	DeleteBuild(ctx context.Context, buildID string) error
}

// ArtifactStore receives exported files. Put returns where the artifact landed.
type ArtifactStore interface {
	Put(ctx context.Context, name, contentType string, body io.Reader) (string, error)
}
