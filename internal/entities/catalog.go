package entities

import (
	"time"
)

type AnimeStatus string

const (
	AnimeStatusAnons    AnimeStatus = "anons"
	AnimeStatusOngoing  AnimeStatus = "ongoing"
	AnimeStatusReleased AnimeStatus = "released"
)

// Anime is the canonical catalog entry, uniquely keyed by the metadata
// provider's external id. The ingestion engine creates and updates these
// records but never deletes them.
type Anime struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	ShikimoriID string      `gorm:"uniqueIndex;size:32" json:"shikimori_id"`
	KodikID     string      `gorm:"index;size:64" json:"kodik_id,omitempty"`
	Slug        string      `gorm:"index;size:512" json:"slug"`
	Title       string      `gorm:"index;size:512" json:"title"`
	TitleEn     string      `gorm:"size:512" json:"title_en"`
	Description string      `gorm:"type:text" json:"description,omitempty"`
	Kind        string      `gorm:"size:32" json:"kind,omitempty"`
	Status      AnimeStatus `gorm:"index;size:32" json:"status"`
	Rating      string      `gorm:"size:32" json:"rating,omitempty"`
	Score       float64     `json:"score"`

	EpisodesTotal int `json:"episodes_total"`
	EpisodesAired int `json:"episodes_aired"`

	PosterURL string   `gorm:"size:2048" json:"poster_url,omitempty"`
	Genres    []string `gorm:"serializer:json" json:"genres,omitempty"`
	Studios   []string `gorm:"serializer:json" json:"studios,omitempty"`
	AiredOn   string   `gorm:"size:10" json:"aired_on,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Anime) TableName() string {
	return "anime"
}

type Episode struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AnimeID   uint      `gorm:"index" json:"anime_id"`
	Season    int       `json:"season"`
	Number    int       `gorm:"index" json:"number"`
	Title     string    `gorm:"size:512" json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

func (Episode) TableName() string {
	return "episodes"
}

// Release is a delivery endpoint for one episode, provisioned by the
// release syncer when the delivery provider is ahead of the local catalog.
type Release struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	EpisodeID       uint      `gorm:"index" json:"episode_id"`
	Source          string    `gorm:"size:50" json:"source"`
	Quality         string    `gorm:"size:20" json:"quality"`
	URL             string    `gorm:"size:2048" json:"url"`
	EmbedURL        string    `gorm:"size:2048" json:"embed_url"`
	TranslationType string    `gorm:"size:20" json:"translation_type"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
}

func (Release) TableName() string {
	return "releases"
}

// FavoriteCategoryWatching marks entries whose watchers get new-episode
// notifications.
const FavoriteCategoryWatching = "watching"

// Favorite is owned by the interaction subsystem; the engine only reads it
// for the release-sync notification fan-out.
type Favorite struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index" json:"user_id"`
	AnimeID   uint      `gorm:"index" json:"anime_id"`
	Category  string    `gorm:"index;size:32" json:"category"`
	CreatedAt time.Time `json:"created_at"`
}

func (Favorite) TableName() string {
	return "favorites"
}

type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index" json:"user_id"`
	Title     string    `gorm:"size:512" json:"title"`
	Message   string    `gorm:"type:text" json:"message"`
	Type      string    `gorm:"size:50" json:"type"`
	TargetID  uint      `json:"target_id"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
