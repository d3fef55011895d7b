package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/ekotlyar/kitsu-engine/internal/entities"
	"github.com/ekotlyar/kitsu-engine/internal/ingest"
)

// MetadataSyncTask runs one metadata sync job against Shikimori.
type MetadataSyncTask struct {
	JobID string            `json:"job_id"`
	Mode  entities.SyncMode `json:"mode"`
}

// Config returns the queue configuration for metadata sync tasks. The work
// itself tracks failures on the job record, so the queue does not retry:
// a rerun would double-count against a job already marked failed.
func (t MetadataSyncTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "metadata_sync",
		MaxAttempts: 1,
		Timeout:     30 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// MetadataSyncProcessor creates the processor for metadata sync tasks.
func MetadataSyncProcessor(orchestrator *ingest.Orchestrator) backlite.QueueProcessor[MetadataSyncTask] {
	return func(ctx context.Context, task MetadataSyncTask) error {
		if orchestrator == nil {
			return fmt.Errorf("orchestrator not configured")
		}
		return orchestrator.Run(ctx, task.JobID, task.Mode)
	}
}

// NewMetadataSyncQueue creates a backlite queue for metadata sync tasks.
func NewMetadataSyncQueue(orchestrator *ingest.Orchestrator) backlite.Queue {
	return backlite.NewQueue(MetadataSyncProcessor(orchestrator))
}
