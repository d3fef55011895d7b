package ingest

import (
	"encoding/json"
	"math"

	"github.com/ekotlyar/kitsu-engine/internal/entities"
	"github.com/ekotlyar/kitsu-engine/internal/mapper"
)

// scoreAnomalyThreshold is the absolute score delta beyond which an update
// is considered suspicious rather than a routine correction.
const scoreAnomalyThreshold = 3.0

// DetectConflicts compares an existing catalog entry with an incoming field
// set and returns every conflict reason that applies. An empty result means
// the update is safe to apply.
func DetectConflicts(existing *entities.Anime, incoming *mapper.Mapped) []string {
	var reasons []string

	if incoming.EpisodesTotal > 0 && existing.EpisodesTotal > 0 &&
		incoming.EpisodesTotal < existing.EpisodesTotal {
		reasons = append(reasons, entities.ConflictReasonEpisodeRegression)
	}

	if math.Abs(incoming.Score-existing.Score) > scoreAnomalyThreshold {
		reasons = append(reasons, entities.ConflictReasonScoreAnomaly)
	}

	if incoming.Status == string(entities.AnimeStatusReleased) &&
		existing.Status == entities.AnimeStatusOngoing &&
		incoming.EpisodesTotal == 0 {
		reasons = append(reasons, entities.ConflictReasonStatusSyncError)
	}

	return reasons
}

// ExistingSnapshot captures the conflicting fields of a catalog entry for
// storage on a conflict record.
func ExistingSnapshot(anime *entities.Anime) map[string]any {
	return map[string]any{
		"title":          anime.Title,
		"status":         string(anime.Status),
		"score":          anime.Score,
		"episodes_total": anime.EpisodesTotal,
		"episodes_aired": anime.EpisodesAired,
	}
}

// IncomingSnapshot converts a mapped field set into the snapshot stored on
// a conflict record. The snapshot round-trips back through DecodeSnapshot
// when a conflict is resolved with the replace strategy.
func IncomingSnapshot(m *mapper.Mapped) map[string]any {
	raw, err := json.Marshal(m)
	if err != nil {
		return map[string]any{}
	}
	var snapshot map[string]any
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return map[string]any{}
	}
	return snapshot
}

// DecodeSnapshot restores a mapped field set from a stored conflict
// snapshot.
func DecodeSnapshot(snapshot map[string]any) (*mapper.Mapped, error) {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return nil, err
	}
	var m mapper.Mapped
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// ApplyMapped writes a mapped field set onto a catalog entry in place.
func ApplyMapped(anime *entities.Anime, m *mapper.Mapped) {
	anime.ShikimoriID = m.ShikimoriID
	anime.Title = m.Title
	anime.TitleEn = m.TitleEn
	anime.Slug = m.Slug
	anime.Description = m.Description
	anime.Kind = m.Kind
	anime.Status = entities.AnimeStatus(m.Status)
	anime.Rating = m.Rating
	anime.Score = m.Score
	anime.EpisodesTotal = m.EpisodesTotal
	anime.EpisodesAired = m.EpisodesAired
	anime.PosterURL = m.PosterURL
	anime.Genres = m.Genres
	anime.Studios = m.Studios
	anime.AiredOn = m.AiredOn
}
