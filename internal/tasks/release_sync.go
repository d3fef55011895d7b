package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/ekotlyar/kitsu-engine/internal/ingest"
)

// ReleaseSyncTask runs one delivery sync job against Kodik.
type ReleaseSyncTask struct {
	JobID string `json:"job_id"`
}

// Config returns the queue configuration for release sync tasks.
func (t ReleaseSyncTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "release_sync",
		MaxAttempts: 1,
		Timeout:     30 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// ReleaseSyncProcessor creates the processor for release sync tasks.
func ReleaseSyncProcessor(syncer *ingest.ReleaseSyncer) backlite.QueueProcessor[ReleaseSyncTask] {
	return func(ctx context.Context, task ReleaseSyncTask) error {
		if syncer == nil {
			return fmt.Errorf("release syncer not configured")
		}
		return syncer.Run(ctx, task.JobID)
	}
}

// NewReleaseSyncQueue creates a backlite queue for release sync tasks.
func NewReleaseSyncQueue(syncer *ingest.ReleaseSyncer) backlite.Queue {
	return backlite.NewQueue(ReleaseSyncProcessor(syncer))
}
