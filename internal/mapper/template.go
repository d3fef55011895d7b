// Package mapper turns provider metadata records into catalog field sets:
// template expansion for titles and descriptions, slug derivation, genre
// reconciliation, and the pre-ingestion filter chain.
package mapper

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ekotlyar/kitsu-engine/internal/providers"
	"github.com/ekotlyar/kitsu-engine/internal/settingsstore"
)

// Mapped is the flat field set ready to be written to a catalog entry. The
// json tags double as the snapshot format stored on conflicts.
type Mapped struct {
	ShikimoriID   string   `json:"shikimori_id"`
	Title         string   `json:"title"`
	TitleEn       string   `json:"title_en"`
	Slug          string   `json:"slug"`
	Description   string   `json:"description"`
	Kind          string   `json:"kind"`
	Status        string   `json:"status"`
	Rating        string   `json:"rating"`
	Score         float64  `json:"score"`
	EpisodesTotal int      `json:"episodes_total"`
	EpisodesAired int      `json:"episodes_aired"`
	PosterURL     string   `json:"poster_url"`
	Genres        []string `json:"genres"`
	Studios       []string `json:"studios"`
	AiredOn       string   `json:"aired_on"`
}

var slugStrip = regexp.MustCompile(`[^\w\s-]`)
var slugSpaces = regexp.MustCompile(`[\s_-]+`)

// Slug derives a URL slug from a title: lowercase, punctuation stripped,
// whitespace collapsed to hyphens.
func Slug(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = slugStrip.ReplaceAllString(s, "")
	s = slugSpaces.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Expand substitutes {placeholder} tokens in a template with record fields.
// Unknown placeholders are left in place. An empty template yields the raw
// fallback value unchanged.
func Expand(template, fallback string, rec *providers.Record) string {
	if template == "" {
		return fallback
	}
	replacements := map[string]string{
		"{title}":       rec.Title,
		"{title_en}":    rec.TitleEn,
		"{year}":        yearString(rec),
		"{score}":       strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", rec.Score), "0"), "."),
		"{status}":      rec.Status,
		"{rating}":      rec.Rating,
		"{genres}":      strings.Join(rec.GenreNames(), ", "),
		"{studios}":     strings.Join(rec.Studios, ", "),
		"{description}": rec.Description,
	}
	out := template
	for token, value := range replacements {
		out = strings.ReplaceAll(out, token, value)
	}
	return out
}

func yearString(rec *providers.Record) string {
	if y := rec.Year(); y > 0 {
		return fmt.Sprintf("%d", y)
	}
	return ""
}

// Map produces the catalog field set for a record using the configured
// field templates and category mappings.
func Map(rec *providers.Record, fields settingsstore.FieldsConfig, categories settingsstore.CategoriesConfig) *Mapped {
	slugSource := rec.TitleEn
	if slugSource == "" {
		slugSource = rec.Title
	}
	return &Mapped{
		ShikimoriID:   rec.ID,
		Title:         Expand(fields.TitleTemplate, rec.Title, rec),
		TitleEn:       rec.TitleEn,
		Slug:          Slug(slugSource),
		Description:   Expand(fields.DescriptionTemplate, rec.Description, rec),
		Kind:          rec.Kind,
		Status:        rec.Status,
		Rating:        rec.Rating,
		Score:         rec.Score,
		EpisodesTotal: rec.Episodes,
		EpisodesAired: rec.EpisodesAired,
		PosterURL:     rec.PosterURL,
		Genres:        Reconcile(rec.Genres, categories),
		Studios:       rec.Studios,
		AiredOn:       rec.AiredOn,
	}
}
