package entities

import (
	"time"
)

type ConflictStatus string

const (
	ConflictStatusPending  ConflictStatus = "pending"
	ConflictStatusResolved ConflictStatus = "resolved"
	ConflictStatusIgnored  ConflictStatus = "ignored"
)

// Conflict reason tags, comma-joined into Conflict.ConflictType.
const (
	ConflictReasonEpisodeRegression = "episode_regression"
	ConflictReasonScoreAnomaly      = "score_anomaly"
	ConflictReasonStatusSyncError   = "status_sync_error"
)

type ResolutionStrategy string

// ResolutionStrategyReplace overwrites the canonical entry with the stored
// incoming snapshot; ResolutionStrategyIgnore keeps the entry as is.
const (
	ResolutionStrategyReplace ResolutionStrategy = "replace"
	ResolutionStrategyIgnore  ResolutionStrategy = "ignore"
)

// Conflict records a discrepancy between an incoming record and the existing
// canonical entry. While a conflict is pending the entry is not upserted.
type Conflict struct {
	ID           string `gorm:"primaryKey;size:36" json:"id"`
	JobID        string `gorm:"index;size:36" json:"job_id"`
	AnimeID      uint   `gorm:"index" json:"anime_id"`
	ExternalID   string `gorm:"size:64" json:"external_id"`
	ConflictType string `gorm:"size:128" json:"conflict_type"`

	ExistingData map[string]any `gorm:"serializer:json" json:"existing_data"`
	IncomingData map[string]any `gorm:"serializer:json" json:"incoming_data"`

	Status             ConflictStatus     `gorm:"index;size:20" json:"status"`
	ResolutionStrategy ResolutionStrategy `gorm:"size:32" json:"resolution_strategy,omitempty"`
	ResolvedAt         *time.Time         `json:"resolved_at,omitempty"`
	ResolvedBy         string             `gorm:"size:100" json:"resolved_by,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (Conflict) TableName() string {
	return "sync_conflicts"
}
