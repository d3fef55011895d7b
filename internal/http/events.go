package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ekotlyar/kitsu-engine/internal/auth"
	"github.com/ekotlyar/kitsu-engine/internal/broadcast"
	"github.com/ekotlyar/kitsu-engine/internal/database/jobs"
)

// EventsController streams live job progress over Server-Sent Events.
//
// EventSource cannot send headers, so access is gated by a short-lived
// job-scoped token obtained from IssueToken and passed as ?token=.
type EventsController struct {
	hub    *broadcast.Hub
	issuer *auth.Issuer
	jobs   *jobs.Repository
}

// NewEventsController creates an events controller.
func NewEventsController(hub *broadcast.Hub, issuer *auth.Issuer, jobsRepo *jobs.Repository) *EventsController {
	return &EventsController{hub: hub, issuer: issuer, jobs: jobsRepo}
}

type issueTokenRequest struct {
	JobID string `json:"job_id" binding:"required"`
}

// IssueToken mints a stream token for one job.
func (e *EventsController) IssueToken(c *gin.Context) {
	var req issueTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "job_id is required")
		return
	}
	if _, err := e.jobs.Get(req.JobID); err != nil {
		respondNotFound(c, "job")
		return
	}
	c.JSON(200, gin.H{"token": e.issuer.Issue(req.JobID)})
}

// Stream subscribes the client to a job's progress updates. The token is
// validated before any subscription state is created; there is no replay,
// the stream carries only updates published after the subscribe.
func (e *EventsController) Stream(c *gin.Context) {
	jobID := c.Param("id")
	if err := e.issuer.Validate(c.Query("token"), jobID); err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid event token"})
		return
	}

	ch, cancel := e.hub.Subscribe(jobID)
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	c.SSEvent("message", "connected")
	c.Writer.Flush()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case snapshot, ok := <-ch:
			if !ok {
				return
			}
			c.SSEvent("progress", snapshot)
			c.Writer.Flush()
			// The final snapshot always reports 100; close after it.
			if snapshot.Progress >= 100 {
				return
			}
		}
	}
}
