// Package schedules provides database operations for recurring sync
// schedules.
package schedules

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ekotlyar/kitsu-engine/internal/entities"
)

// Repository handles all schedule database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new schedules repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new schedule.
func (r *Repository) Create(provider entities.SyncProvider, mode entities.SyncMode, cronExpr string, nextRun time.Time) (*entities.ScheduledSync, error) {
	schedule := &entities.ScheduledSync{
		ID:             uuid.NewString(),
		Provider:       provider,
		Mode:           mode,
		CronExpression: cronExpr,
		IsActive:       true,
		NextRunAt:      nextRun,
	}
	if err := r.db.Create(schedule).Error; err != nil {
		return nil, err
	}
	return schedule, nil
}

// Get returns a schedule by id.
func (r *Repository) Get(id string) (*entities.ScheduledSync, error) {
	var schedule entities.ScheduledSync
	if err := r.db.First(&schedule, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &schedule, nil
}

// List returns all schedules.
func (r *Repository) List() ([]entities.ScheduledSync, error) {
	var list []entities.ScheduledSync
	err := r.db.Order("created_at ASC").Find(&list).Error
	return list, err
}

// ListDue returns active schedules whose next run is at or before now.
func (r *Repository) ListDue(now time.Time) ([]entities.ScheduledSync, error) {
	var list []entities.ScheduledSync
	err := r.db.Where("is_active = ? AND next_run_at <= ?", true, now).Find(&list).Error
	return list, err
}

// Update applies the given fields to a schedule.
func (r *Repository) Update(id string, fields map[string]any) error {
	return r.db.Model(&entities.ScheduledSync{}).Where("id = ?", id).Updates(fields).Error
}

// Advance records a dispatch: last run is set to ranAt, next run to nextRun.
func (r *Repository) Advance(id string, ranAt, nextRun time.Time) error {
	return r.Update(id, map[string]any{
		"last_run_at": ranAt,
		"next_run_at": nextRun,
	})
}

// Delete removes a schedule.
func (r *Repository) Delete(id string) error {
	return r.db.Delete(&entities.ScheduledSync{}, "id = ?", id).Error
}
