package mapper

import (
	"strings"

	"github.com/ekotlyar/kitsu-engine/internal/providers"
	"github.com/ekotlyar/kitsu-engine/internal/settingsstore"
)

// Reconcile maps provider genre names onto local category names. A genre
// with an explicit mapping uses it; anything else keeps its provider name.
// Duplicates after mapping are collapsed, first occurrence wins.
func Reconcile(genres []providers.Genre, categories settingsstore.CategoriesConfig) []string {
	seen := make(map[string]struct{}, len(genres))
	out := make([]string, 0, len(genres))
	for _, g := range genres {
		name := g.Name
		if mapped, ok := lookupMapping(categories.Mappings, g.Name); ok {
			name = mapped
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, name)
	}
	return out
}

func lookupMapping(mappings map[string]string, genre string) (string, bool) {
	if v, ok := mappings[genre]; ok {
		return v, true
	}
	// Mappings are matched case-insensitively.
	lower := strings.ToLower(genre)
	for k, v := range mappings {
		if strings.ToLower(k) == lower {
			return v, true
		}
	}
	return "", false
}
