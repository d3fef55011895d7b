package entities

import (
	"time"
)

type SyncProvider string

const (
	SyncProviderShikimori SyncProvider = "shikimori"
	SyncProviderKodik     SyncProvider = "kodik"
)

type SyncMode string

const (
	SyncModeFull        SyncMode = "full"
	SyncModeIncremental SyncMode = "incremental"
)

type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// IsTerminal reports whether a job in this status can never change again.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// SyncJob tracks one execution of the ingestion or release-sync pipeline.
type SyncJob struct {
	ID       string       `gorm:"primaryKey;size:36" json:"id"`
	Provider SyncProvider `gorm:"index;size:32" json:"provider"`
	Mode     SyncMode     `gorm:"size:32" json:"mode"`
	Status   JobStatus    `gorm:"index;size:20" json:"status"`
	Progress int          `json:"progress"` // 0-100

	ItemsProcessed int `json:"items_processed"`
	ItemsCreated   int `json:"items_created"`
	ItemsUpdated   int `json:"items_updated"`
	ItemsSkipped   int `json:"items_skipped"`
	ItemsFailed    int `json:"items_failed"`

	ErrorMessage string `gorm:"type:text" json:"error_message,omitempty"`

	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func (SyncJob) TableName() string {
	return "sync_jobs"
}

type LogLevel string

const (
	LogLevelDebug   LogLevel = "debug"
	LogLevelInfo    LogLevel = "info"
	LogLevelWarning LogLevel = "warning"
	LogLevelError   LogLevel = "error"
)

// JobLogEntry is an append-only structured log line attached to a job.
// Entries are never mutated after creation.
type JobLogEntry struct {
	ID      string         `gorm:"primaryKey;size:36" json:"id"`
	JobID   string         `gorm:"index;size:36" json:"job_id"`
	Level   LogLevel       `gorm:"size:16" json:"level"`
	Message string         `gorm:"type:text" json:"message"`
	Details map[string]any `gorm:"serializer:json" json:"details,omitempty"`
	ItemID  string         `gorm:"size:64" json:"item_id,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (JobLogEntry) TableName() string {
	return "sync_job_logs"
}
