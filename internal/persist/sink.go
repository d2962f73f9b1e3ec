// Package persist writes record sets to durable storage and reads them back.
package persist

import (
	"context"

	"go-jd-crawler/internal/models"
)

// Sink receives the current record set of one source. Every Write replaces what the sink
// holds for that source from earlier writes in the same run, so a pipeline can checkpoint
// after each stage.
type Sink interface {
	Name() string
	Write(ctx context.Context, source, runID string, jobs []models.Job) error
}
