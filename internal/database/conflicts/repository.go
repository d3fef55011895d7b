// Package conflicts provides database operations for sync conflict records
// and their one-shot resolution.
package conflicts

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ekotlyar/kitsu-engine/internal/entities"
)

// ErrAlreadyResolved is returned when resolving a conflict that is no
// longer pending.
var ErrAlreadyResolved = errors.New("conflict already resolved")

// Repository handles all conflict database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new conflicts repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create records a detected conflict with both field snapshots.
func (r *Repository) Create(jobID string, animeID uint, externalID, conflictType string, existing, incoming map[string]any) (*entities.Conflict, error) {
	conflict := &entities.Conflict{
		ID:           uuid.NewString(),
		JobID:        jobID,
		AnimeID:      animeID,
		ExternalID:   externalID,
		ConflictType: conflictType,
		ExistingData: existing,
		IncomingData: incoming,
		Status:       entities.ConflictStatusPending,
	}
	if err := r.db.Create(conflict).Error; err != nil {
		return nil, err
	}
	return conflict, nil
}

// Get returns a conflict by id.
func (r *Repository) Get(id string) (*entities.Conflict, error) {
	var conflict entities.Conflict
	if err := r.db.First(&conflict, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &conflict, nil
}

// List returns conflicts, optionally filtered by status, newest first.
func (r *Repository) List(status entities.ConflictStatus, offset, limit int) ([]entities.Conflict, error) {
	q := r.db.Order("created_at DESC").Offset(offset).Limit(limit)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var list []entities.Conflict
	err := q.Find(&list).Error
	return list, err
}

// CountPending returns the number of unresolved conflicts.
func (r *Repository) CountPending() (int64, error) {
	var count int64
	err := r.db.Model(&entities.Conflict{}).
		Where("status = ?", entities.ConflictStatusPending).
		Count(&count).Error
	return count, err
}

// Resolve marks a pending conflict with the chosen strategy. Resolution is
// terminal: a second attempt returns ErrAlreadyResolved.
func (r *Repository) Resolve(id string, strategy entities.ResolutionStrategy, resolvedBy string) (*entities.Conflict, error) {
	conflict, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	if conflict.Status != entities.ConflictStatusPending {
		return nil, ErrAlreadyResolved
	}

	status := entities.ConflictStatusResolved
	if strategy == entities.ResolutionStrategyIgnore {
		status = entities.ConflictStatusIgnored
	}

	now := time.Now()
	err = r.db.Model(&entities.Conflict{}).Where("id = ?", id).Updates(map[string]any{
		"status":              status,
		"resolution_strategy": strategy,
		"resolved_at":         now,
		"resolved_by":         resolvedBy,
	}).Error
	if err != nil {
		return nil, err
	}
	return r.Get(id)
}
