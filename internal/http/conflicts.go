package http

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/ekotlyar/kitsu-engine/internal/database/catalog"
	"github.com/ekotlyar/kitsu-engine/internal/database/conflicts"
	"github.com/ekotlyar/kitsu-engine/internal/entities"
	"github.com/ekotlyar/kitsu-engine/internal/ingest"
)

// ConflictsController exposes conflict review and resolution.
type ConflictsController struct {
	conflicts *conflicts.Repository
	catalog   *catalog.Repository
}

// NewConflictsController creates a conflicts controller.
func NewConflictsController(repo *conflicts.Repository, catalogRepo *catalog.Repository) *ConflictsController {
	return &ConflictsController{conflicts: repo, catalog: catalogRepo}
}

// List returns conflicts, optionally filtered by ?status=.
func (cc *ConflictsController) List(c *gin.Context) {
	status := entities.ConflictStatus(c.Query("status"))
	limit, offset := parsePagination(c, 50)

	list, err := cc.conflicts.List(status, offset, limit)
	if err != nil {
		respondInternalError(c, err, "list conflicts")
		return
	}
	pending, err := cc.conflicts.CountPending()
	if err != nil {
		respondInternalError(c, err, "count pending conflicts")
		return
	}
	c.JSON(200, gin.H{"conflicts": list, "pending": pending, "limit": limit, "offset": offset})
}

type resolveRequest struct {
	Strategy   string `json:"strategy" binding:"required"`
	ResolvedBy string `json:"resolved_by"`
}

// Resolve applies a resolution strategy to a pending conflict. The replace
// strategy overwrites the catalog entry with the held incoming snapshot;
// ignore keeps the existing entry and closes the conflict.
func (cc *ConflictsController) Resolve(c *gin.Context) {
	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "strategy is required")
		return
	}
	strategy := entities.ResolutionStrategy(req.Strategy)
	if strategy != entities.ResolutionStrategyReplace && strategy != entities.ResolutionStrategyIgnore {
		respondBadRequest(c, "strategy must be replace or ignore")
		return
	}

	conflict, err := cc.conflicts.Get(c.Param("id"))
	if err != nil {
		respondNotFound(c, "conflict")
		return
	}
	if conflict.Status != entities.ConflictStatusPending {
		respondConflict(c, "conflict already resolved")
		return
	}

	if strategy == entities.ResolutionStrategyReplace {
		if err := cc.applyIncoming(conflict); err != nil {
			respondInternalError(c, err, "apply conflict resolution")
			return
		}
	}

	resolved, err := cc.conflicts.Resolve(conflict.ID, strategy, req.ResolvedBy)
	if errors.Is(err, conflicts.ErrAlreadyResolved) {
		respondConflict(c, "conflict already resolved")
		return
	}
	if err != nil {
		respondInternalError(c, err, "resolve conflict")
		return
	}
	c.JSON(200, resolved)
}

// applyIncoming overwrites the catalog entry with the snapshot held on the
// conflict.
func (cc *ConflictsController) applyIncoming(conflict *entities.Conflict) error {
	mapped, err := ingest.DecodeSnapshot(conflict.IncomingData)
	if err != nil {
		return err
	}
	anime, err := cc.catalog.GetByID(conflict.AnimeID)
	if err != nil {
		return err
	}
	kodikID := anime.KodikID
	ingest.ApplyMapped(anime, mapped)
	anime.KodikID = kodikID
	return cc.catalog.Save(anime)
}
