// Package providers contains the HTTP clients for the external catalog
// sources: Shikimori for metadata and Kodik for delivery links.
//
// Both clients speak through the Provider interface so the ingestion
// pipeline never depends on a concrete upstream. Transient failures (network
// errors, 5xx, 429) are retried with exponential backoff; a 404 is never
// retried and is reported as an absent record, not an error.
package providers

import (
	"context"
	"strconv"
)

// Page ordering for catalog listings.
const (
	OrderRanked  = "ranked"
	OrderUpdated = "updated"
)

// PageParams describes one listing page request.
type PageParams struct {
	Page  int
	Limit int
	Order string
}

// PageItem is one entry of a listing page: just enough to decide whether a
// detail fetch is needed.
type PageItem struct {
	ID    string
	Title string
}

// Genre is a provider genre with its localized name.
type Genre struct {
	Name   string
	Native string
}

// Record is a normalized metadata record for one catalog entry.
type Record struct {
	ID            string
	Title         string
	TitleEn       string
	Description   string
	Kind          string
	Status        string
	Rating        string
	Score         float64
	Episodes      int
	EpisodesAired int
	PosterURL     string
	Genres        []Genre
	Studios       []string
	AiredOn       string
}

// Year returns the release year parsed from AiredOn, or 0.
func (r *Record) Year() int {
	if len(r.AiredOn) < 4 {
		return 0
	}
	year, err := strconv.Atoi(r.AiredOn[:4])
	if err != nil {
		return 0
	}
	return year
}

// GenreNames returns the plain genre names of a record.
func (r *Record) GenreNames() []string {
	names := make([]string, 0, len(r.Genres))
	for _, g := range r.Genres {
		names = append(names, g.Name)
	}
	return names
}

// Season holds the episode bucket of one delivery season. Keys are episode
// numbers as strings; values are playback links.
type Season struct {
	Link     string            `json:"link"`
	Episodes map[string]string `json:"episodes"`
}

// DeliveryRecord is what the delivery provider knows about one entry.
type DeliveryRecord struct {
	ID              string            `json:"id"`
	Title           string            `json:"title"`
	Link            string            `json:"link"`
	Quality         string            `json:"quality"`
	TranslationType string            `json:"translation_type"`
	Voice           string            `json:"voice"`
	Seasons         map[string]Season `json:"seasons"`
}

// MaxEpisode returns the highest numeric episode key present across all
// season buckets. Non-numeric keys are ignored.
func (d *DeliveryRecord) MaxEpisode() int {
	max := 0
	for _, season := range d.Seasons {
		for key := range season.Episodes {
			n, err := strconv.Atoi(key)
			if err != nil {
				continue
			}
			if n > max {
				max = n
			}
		}
	}
	return max
}

// Provider is the upstream contract the ingestion pipeline consumes.
//
// FetchDetail returns (nil, nil) when the upstream reports the record as
// absent; callers must treat that as "skip", not as a failure.
type Provider interface {
	FetchPage(ctx context.Context, params PageParams) ([]PageItem, error)
	FetchDetail(ctx context.Context, externalID string) (*Record, error)
	ProbeDelivery(ctx context.Context, deliveryID string) (*DeliveryRecord, error)
}
