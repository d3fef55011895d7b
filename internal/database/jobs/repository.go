// Package jobs provides database operations for sync jobs and their
// append-only log.
//
// All writes are immediate single-record commits; no multi-item transaction
// ever spans an ingestion batch. Jobs in a terminal status reject further
// updates.
package jobs

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ekotlyar/kitsu-engine/internal/entities"
)

// ErrJobFinal is returned when updating a job that already reached a
// terminal status.
var ErrJobFinal = errors.New("job is in a terminal status")

// Repository handles all sync job database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new job repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new pending job and returns it.
func (r *Repository) Create(provider entities.SyncProvider, mode entities.SyncMode) (*entities.SyncJob, error) {
	job := &entities.SyncJob{
		ID:       uuid.NewString(),
		Provider: provider,
		Mode:     mode,
		Status:   entities.JobStatusPending,
	}
	if err := r.db.Create(job).Error; err != nil {
		return nil, err
	}
	return job, nil
}

// Get returns a job by id.
func (r *Repository) Get(id string) (*entities.SyncJob, error) {
	var job entities.SyncJob
	if err := r.db.First(&job, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

// List returns jobs ordered by creation time, newest first.
func (r *Repository) List(offset, limit int) ([]entities.SyncJob, error) {
	var jobList []entities.SyncJob
	err := r.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&jobList).Error
	return jobList, err
}

// Update applies the given fields to a job. Updates against a job that has
// already completed or failed return ErrJobFinal.
func (r *Repository) Update(id string, fields map[string]any) error {
	job, err := r.Get(id)
	if err != nil {
		return err
	}
	if job.Status.IsTerminal() {
		return ErrJobFinal
	}
	return r.db.Model(&entities.SyncJob{}).Where("id = ?", id).Updates(fields).Error
}

// MarkRunning transitions a job to running and records the start time.
func (r *Repository) MarkRunning(id string) error {
	return r.Update(id, map[string]any{
		"status":     entities.JobStatusRunning,
		"started_at": time.Now(),
	})
}

// MarkCompleted finalizes a job with its counters and 100% progress.
func (r *Repository) MarkCompleted(id string, processed, created, updated, skipped, failed int) error {
	return r.Update(id, map[string]any{
		"status":          entities.JobStatusCompleted,
		"progress":        100,
		"completed_at":    time.Now(),
		"items_processed": processed,
		"items_created":   created,
		"items_updated":   updated,
		"items_skipped":   skipped,
		"items_failed":    failed,
	})
}

// MarkFailed finalizes a job with the captured orchestration error.
func (r *Repository) MarkFailed(id string, errMsg string) error {
	return r.Update(id, map[string]any{
		"status":        entities.JobStatusFailed,
		"error_message": errMsg,
		"completed_at":  time.Now(),
	})
}

// AppendLog writes one immutable structured log entry for a job.
func (r *Repository) AppendLog(jobID string, level entities.LogLevel, message string, details map[string]any, itemID string) error {
	entry := &entities.JobLogEntry{
		ID:      uuid.NewString(),
		JobID:   jobID,
		Level:   level,
		Message: message,
		Details: details,
		ItemID:  itemID,
	}
	return r.db.Create(entry).Error
}

// LogsByJob returns log entries for one job, newest first.
func (r *Repository) LogsByJob(jobID string, offset, limit int) ([]entities.JobLogEntry, error) {
	var logs []entities.JobLogEntry
	err := r.db.Where("job_id = ?", jobID).
		Order("created_at DESC").Offset(offset).Limit(limit).
		Find(&logs).Error
	return logs, err
}

// GlobalLogs returns log entries across all jobs, newest first.
func (r *Repository) GlobalLogs(offset, limit int) ([]entities.JobLogEntry, error) {
	var logs []entities.JobLogEntry
	err := r.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&logs).Error
	return logs, err
}
