package entities

import (
	"time"
)

// ScheduledSync is a recurring ingestion rule. The recovery scanner advances
// last_run_at/next_run_at after every dispatch; next_run_at is always strictly
// after the time used to compute it.
type ScheduledSync struct {
	ID             string       `gorm:"primaryKey;size:36" json:"id"`
	Provider       SyncProvider `gorm:"size:32" json:"provider"`
	Mode           SyncMode     `gorm:"size:32" json:"mode"`
	CronExpression string       `gorm:"size:100" json:"cron_expression"`
	IsActive       bool         `json:"is_active"`

	LastRunAt *time.Time `json:"last_run_at,omitempty"`
	NextRunAt time.Time  `gorm:"index" json:"next_run_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ScheduledSync) TableName() string {
	return "scheduled_syncs"
}
