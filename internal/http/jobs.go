package http

import (
	"github.com/gin-gonic/gin"

	"github.com/ekotlyar/kitsu-engine/internal/database/jobs"
	"github.com/ekotlyar/kitsu-engine/internal/entities"
	"github.com/ekotlyar/kitsu-engine/internal/tasks"
)

// ParsersController exposes sync job management: triggering, listing, and
// log retrieval.
type ParsersController struct {
	jobs       *jobs.Repository
	dispatcher tasks.Dispatcher
}

// NewParsersController creates a parsers controller.
func NewParsersController(repo *jobs.Repository, dispatcher tasks.Dispatcher) *ParsersController {
	return &ParsersController{jobs: repo, dispatcher: dispatcher}
}

type triggerSyncRequest struct {
	Mode string `json:"mode"`
}

// TriggerSync creates a pending job for the provider in the URL and hands
// it to the task queue. The response returns before the sync starts.
func (p *ParsersController) TriggerSync(c *gin.Context) {
	provider := entities.SyncProvider(c.Param("provider"))
	if provider != entities.SyncProviderShikimori && provider != entities.SyncProviderKodik {
		respondBadRequest(c, "unknown provider")
		return
	}

	var req triggerSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		respondBadRequest(c, "invalid request body")
		return
	}
	mode := entities.SyncMode(req.Mode)
	if mode == "" {
		mode = entities.SyncModeIncremental
	}
	if mode != entities.SyncModeFull && mode != entities.SyncModeIncremental {
		respondBadRequest(c, "mode must be full or incremental")
		return
	}

	job, err := p.jobs.Create(provider, mode)
	if err != nil {
		respondInternalError(c, err, "create sync job")
		return
	}
	if err := p.dispatcher.DispatchSync(job); err != nil {
		respondInternalError(c, err, "dispatch sync job")
		return
	}

	respondAccepted(c, "sync queued", job)
}

// ListJobs returns jobs, newest first.
func (p *ParsersController) ListJobs(c *gin.Context) {
	limit, offset := parsePagination(c, 20)
	jobList, err := p.jobs.List(offset, limit)
	if err != nil {
		respondInternalError(c, err, "list jobs")
		return
	}
	c.JSON(200, gin.H{"jobs": jobList, "limit": limit, "offset": offset})
}

// GetJob returns one job by id.
func (p *ParsersController) GetJob(c *gin.Context) {
	job, err := p.jobs.Get(c.Param("id"))
	if err != nil {
		respondNotFound(c, "job")
		return
	}
	c.JSON(200, job)
}

// JobLogs returns the log entries of one job.
func (p *ParsersController) JobLogs(c *gin.Context) {
	if _, err := p.jobs.Get(c.Param("id")); err != nil {
		respondNotFound(c, "job")
		return
	}
	limit, offset := parsePagination(c, 50)
	logs, err := p.jobs.LogsByJob(c.Param("id"), offset, limit)
	if err != nil {
		respondInternalError(c, err, "job logs")
		return
	}
	c.JSON(200, gin.H{"logs": logs, "limit": limit, "offset": offset})
}

// GlobalLogs returns log entries across all jobs.
func (p *ParsersController) GlobalLogs(c *gin.Context) {
	limit, offset := parsePagination(c, 50)
	logs, err := p.jobs.GlobalLogs(offset, limit)
	if err != nil {
		respondInternalError(c, err, "global logs")
		return
	}
	c.JSON(200, gin.H{"logs": logs, "limit": limit, "offset": offset})
}
