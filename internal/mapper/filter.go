package mapper

import (
	"fmt"
	"strings"

	"github.com/ekotlyar/kitsu-engine/internal/providers"
	"github.com/ekotlyar/kitsu-engine/internal/settingsstore"
)

// Rejection reasons reported by the filter chain.
const (
	RejectLowScore   = "low_score"
	RejectBanned     = "banned"
	RejectRestricted = "restricted_genre"
	RejectLowQuality = "low_quality"
)

// Genres excluded unless restricted content is explicitly allowed.
var restrictedGenres = []string{
	"yaoi", "yuri", "shounen ai", "shoujo ai", "boys love", "girls love", "hentai",
}

// Title markers that indicate a low-quality source rip.
var lowQualityMarkers = []string{"camrip", "ts", "vcd", "hdcam", "screener"}

// Rejection describes why a record was filtered out. Warning selects the
// log level: banned entries are surfaced as warnings, routine filtering is
// debug-level noise.
type Rejection struct {
	Reason  string
	Warning bool
	Message string
}

// Filter is the pre-ingestion filter chain. Checks run in a fixed order:
// score threshold, blacklist, restricted genres, low-quality markers.
type Filter struct {
	grabbing  settingsstore.GrabbingConfig
	bannedIDs map[string]struct{}
}

// NewFilter builds a filter from the current settings.
func NewFilter(grabbing settingsstore.GrabbingConfig, blacklist settingsstore.BlacklistConfig) *Filter {
	banned := make(map[string]struct{}, len(blacklist.BannedIDs))
	for _, id := range blacklist.BannedIDs {
		banned[id] = struct{}{}
	}
	return &Filter{grabbing: grabbing, bannedIDs: banned}
}

// Check returns nil when the record may enter the catalog, or the first
// rejection from the chain.
func (f *Filter) Check(rec *providers.Record) *Rejection {
	if f.grabbing.MinScore > 0 && rec.Score < f.grabbing.MinScore {
		return &Rejection{
			Reason:  RejectLowScore,
			Message: fmt.Sprintf("score %.2f below threshold %.2f", rec.Score, f.grabbing.MinScore),
		}
	}

	if _, banned := f.bannedIDs[rec.ID]; banned {
		return &Rejection{
			Reason:  RejectBanned,
			Warning: true,
			Message: fmt.Sprintf("entry %s is blacklisted", rec.ID),
		}
	}

	if !f.grabbing.AllowRestricted {
		for _, g := range rec.Genres {
			name := strings.ToLower(g.Name)
			for _, restricted := range restrictedGenres {
				if name == restricted {
					return &Rejection{
						Reason:  RejectRestricted,
						Message: fmt.Sprintf("restricted genre %q", g.Name),
					}
				}
			}
		}
	}

	if !f.grabbing.AllowLowQuality {
		title := strings.ToLower(rec.Title + " " + rec.TitleEn)
		for _, marker := range lowQualityMarkers {
			if containsWord(title, marker) {
				return &Rejection{
					Reason:  RejectLowQuality,
					Message: fmt.Sprintf("low-quality marker %q in title", marker),
				}
			}
		}
	}

	return nil
}

// containsWord reports whether marker appears in text as a whole word, so
// that e.g. "ts" does not match inside "tsubasa".
func containsWord(text, marker string) bool {
	for _, word := range strings.FieldsFunc(text, func(r rune) bool {
		return r == ' ' || r == '(' || r == ')' || r == '[' || r == ']' || r == '.' || r == ','
	}) {
		if word == marker {
			return true
		}
	}
	return false
}
