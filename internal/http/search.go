package http

import (
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ekotlyar/kitsu-engine/internal/database/catalog"
	"github.com/ekotlyar/kitsu-engine/internal/entities"
	"github.com/ekotlyar/kitsu-engine/internal/ingest"
	"github.com/ekotlyar/kitsu-engine/internal/mapper"
	"github.com/ekotlyar/kitsu-engine/internal/providers"
	"github.com/ekotlyar/kitsu-engine/internal/settingsstore"
)

// SearchController merges local catalog search with live provider lookup
// and supports pulling a single entry in on demand.
type SearchController struct {
	catalog  *catalog.Repository
	metadata providers.Provider
	delivery providers.Provider
	settings *settingsstore.SettingsStore
}

// NewSearchController creates a search controller.
func NewSearchController(catalogRepo *catalog.Repository, metadata, delivery providers.Provider, settings *settingsstore.SettingsStore) *SearchController {
	return &SearchController{catalog: catalogRepo, metadata: metadata, delivery: delivery, settings: settings}
}

type liveResult struct {
	ExternalID string `json:"external_id"`
	Title      string `json:"title"`
	InCatalog  bool   `json:"in_catalog"`
}

// SearchLive answers ?q= with local matches plus the first provider page
// for the query. Provider failure degrades to local-only results.
func (s *SearchController) SearchLive(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		respondBadRequest(c, "q is required")
		return
	}

	local, err := s.catalog.Search(query, 20)
	if err != nil {
		respondInternalError(c, err, "catalog search")
		return
	}
	known := make(map[string]bool, len(local))
	for _, a := range local {
		known[a.ShikimoriID] = true
	}

	var live []liveResult
	items, err := s.metadata.FetchPage(c.Request.Context(), providers.PageParams{
		Page: 1, Limit: 10, Order: providers.OrderRanked,
	})
	if err == nil {
		queryLower := strings.ToLower(query)
		for _, item := range items {
			if !strings.Contains(strings.ToLower(item.Title), queryLower) {
				continue
			}
			live = append(live, liveResult{
				ExternalID: item.ID,
				Title:      item.Title,
				InCatalog:  known[item.ID],
			})
		}
	}

	c.JSON(200, gin.H{"local": local, "live": live})
}

type fetchFullRequest struct {
	ExternalID string `json:"external_id" binding:"required"`
	KodikID    string `json:"kodik_id"`
}

// FetchFull pulls one entry from the metadata provider into the catalog
// immediately, outside any sync job, merging in the delivery id when one is
// given. Filtering still applies: a blacklisted or restricted entry is
// refused, not imported.
func (s *SearchController) FetchFull(c *gin.Context) {
	var req fetchFullRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "external_id is required")
		return
	}

	rec, err := s.metadata.FetchDetail(c.Request.Context(), req.ExternalID)
	if err != nil {
		respondInternalError(c, err, "fetch detail")
		return
	}
	if rec == nil {
		respondNotFound(c, "entry")
		return
	}

	filter := mapper.NewFilter(s.settings.Grabbing(), s.settings.Blacklist())
	if rejection := filter.Check(rec); rejection != nil {
		respondBadRequest(c, "entry rejected: "+rejection.Message)
		return
	}

	mapped := mapper.Map(rec, s.settings.Fields(), s.settings.Categories())

	// Confirm the delivery id against the delivery provider; a failed probe
	// only means the entry lands without delivery links.
	kodikID := ""
	if req.KodikID != "" && s.delivery != nil {
		delivery, err := s.delivery.ProbeDelivery(c.Request.Context(), req.KodikID)
		if err != nil {
			log.Printf("Fetch-full: delivery probe for %s failed: %v", req.KodikID, err)
		} else if delivery != nil {
			kodikID = delivery.ID
		}
	}

	existing, err := s.catalog.GetByExternalID(mapped.ShikimoriID)
	if err != nil {
		respondInternalError(c, err, "catalog lookup")
		return
	}

	if existing == nil {
		anime := &entities.Anime{KodikID: kodikID}
		ingest.ApplyMapped(anime, mapped)
		if err := s.catalog.Create(anime); err != nil {
			respondInternalError(c, err, "catalog insert")
			return
		}
		respondCreated(c, anime)
		return
	}

	if kodikID == "" {
		kodikID = existing.KodikID
	}
	ingest.ApplyMapped(existing, mapped)
	existing.KodikID = kodikID
	if err := s.catalog.Save(existing); err != nil {
		respondInternalError(c, err, "catalog update")
		return
	}
	c.JSON(200, existing)
}
