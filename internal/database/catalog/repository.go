// Package catalog provides database operations for anime entries, their
// episodes and releases, and the favorite/watcher lookups the notification
// flow relies on.
package catalog

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/ekotlyar/kitsu-engine/internal/entities"
)

// Repository handles all catalog database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new catalog repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetByExternalID retrieves an entry by its metadata provider id. A missing
// entry is not an error: (nil, nil) is returned so callers can branch on
// create-vs-update without unwrapping gorm errors.
func (r *Repository) GetByExternalID(externalID string) (*entities.Anime, error) {
	var anime entities.Anime
	err := r.db.Where("shikimori_id = ?", externalID).First(&anime).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &anime, nil
}

// GetByID retrieves an entry by its primary key.
func (r *Repository) GetByID(id uint) (*entities.Anime, error) {
	var anime entities.Anime
	if err := r.db.First(&anime, id).Error; err != nil {
		return nil, err
	}
	return &anime, nil
}

// Create inserts a new catalog entry.
func (r *Repository) Create(anime *entities.Anime) error {
	return r.db.Create(anime).Error
}

// Save writes the full entry back.
func (r *Repository) Save(anime *entities.Anime) error {
	return r.db.Save(anime).Error
}

// ListOngoingWithDelivery returns entries that are currently airing and have
// a delivery provider id attached. These are the candidates for episode
// release sync.
func (r *Repository) ListOngoingWithDelivery() ([]entities.Anime, error) {
	var list []entities.Anime
	err := r.db.Where("status = ? AND kodik_id <> ''", entities.AnimeStatusOngoing).Find(&list).Error
	return list, err
}

// Search returns entries whose title matches the query, case-insensitively.
func (r *Repository) Search(query string, limit int) ([]entities.Anime, error) {
	var list []entities.Anime
	pattern := "%" + strings.ToLower(query) + "%"
	err := r.db.
		Where("LOWER(title) LIKE ? OR LOWER(title_en) LIKE ?", pattern, pattern).
		Limit(limit).
		Find(&list).Error
	return list, err
}

// CreateEpisode inserts an episode row.
func (r *Repository) CreateEpisode(episode *entities.Episode) error {
	return r.db.Create(episode).Error
}

// CreateRelease inserts a release row.
func (r *Repository) CreateRelease(release *entities.Release) error {
	return r.db.Create(release).Error
}

// SetEpisodesAired updates the aired episode counter on an entry.
func (r *Repository) SetEpisodesAired(animeID uint, aired int) error {
	return r.db.Model(&entities.Anime{}).
		Where("id = ?", animeID).
		Update("episodes_aired", aired).Error
}

// WatcherIDs returns user ids that keep the entry in their watching list.
func (r *Repository) WatcherIDs(animeID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&entities.Favorite{}).
		Where("anime_id = ? AND category = ?", animeID, entities.FavoriteCategoryWatching).
		Pluck("user_id", &ids).Error
	return ids, err
}
