package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"

	"github.com/ekotlyar/kitsu-engine/internal/database/jobs"
	"github.com/ekotlyar/kitsu-engine/internal/database/schedules"
	"github.com/ekotlyar/kitsu-engine/internal/entities"
	"github.com/ekotlyar/kitsu-engine/internal/scheduler"
	"github.com/ekotlyar/kitsu-engine/internal/tasks"
)

// SchedulerController manages recurring sync schedules.
type SchedulerController struct {
	schedules  *schedules.Repository
	jobs       *jobs.Repository
	dispatcher tasks.Dispatcher
}

// NewSchedulerController creates a scheduler controller.
func NewSchedulerController(repo *schedules.Repository, jobsRepo *jobs.Repository, dispatcher tasks.Dispatcher) *SchedulerController {
	return &SchedulerController{schedules: repo, jobs: jobsRepo, dispatcher: dispatcher}
}

// List returns all schedules.
func (sc *SchedulerController) List(c *gin.Context) {
	list, err := sc.schedules.List()
	if err != nil {
		respondInternalError(c, err, "list schedules")
		return
	}
	c.JSON(200, gin.H{"schedules": list})
}

type createScheduleRequest struct {
	Provider       string `json:"provider" binding:"required"`
	Mode           string `json:"mode" binding:"required"`
	CronExpression string `json:"cron_expression" binding:"required"`
}

// Create registers a new schedule. The cron expression must be a standard
// five-field expression.
func (sc *SchedulerController) Create(c *gin.Context) {
	var req createScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "provider, mode, and cron_expression are required")
		return
	}
	provider := entities.SyncProvider(req.Provider)
	if provider != entities.SyncProviderShikimori && provider != entities.SyncProviderKodik {
		respondBadRequest(c, "unknown provider")
		return
	}
	mode := entities.SyncMode(req.Mode)
	if mode != entities.SyncModeFull && mode != entities.SyncModeIncremental {
		respondBadRequest(c, "mode must be full or incremental")
		return
	}
	if _, err := cron.ParseStandard(req.CronExpression); err != nil {
		respondBadRequest(c, "invalid cron expression: "+err.Error())
		return
	}

	next := scheduler.NextRun(req.CronExpression, time.Now())
	schedule, err := sc.schedules.Create(provider, mode, req.CronExpression, next)
	if err != nil {
		respondInternalError(c, err, "create schedule")
		return
	}
	respondCreated(c, schedule)
}

type updateScheduleRequest struct {
	CronExpression *string `json:"cron_expression"`
	IsActive       *bool   `json:"is_active"`
}

// Update changes the cron expression or active flag of a schedule.
func (sc *SchedulerController) Update(c *gin.Context) {
	schedule, err := sc.schedules.Get(c.Param("id"))
	if err != nil {
		respondNotFound(c, "schedule")
		return
	}

	var req updateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	fields := map[string]any{}
	if req.CronExpression != nil {
		if _, err := cron.ParseStandard(*req.CronExpression); err != nil {
			respondBadRequest(c, "invalid cron expression: "+err.Error())
			return
		}
		fields["cron_expression"] = *req.CronExpression
		fields["next_run_at"] = scheduler.NextRun(*req.CronExpression, time.Now())
	}
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
	}
	if len(fields) == 0 {
		respondBadRequest(c, "nothing to update")
		return
	}

	if err := sc.schedules.Update(schedule.ID, fields); err != nil {
		respondInternalError(c, err, "update schedule")
		return
	}
	updated, err := sc.schedules.Get(schedule.ID)
	if err != nil {
		respondInternalError(c, err, "reload schedule")
		return
	}
	c.JSON(200, updated)
}

// Delete removes a schedule.
func (sc *SchedulerController) Delete(c *gin.Context) {
	if _, err := sc.schedules.Get(c.Param("id")); err != nil {
		respondNotFound(c, "schedule")
		return
	}
	if err := sc.schedules.Delete(c.Param("id")); err != nil {
		respondInternalError(c, err, "delete schedule")
		return
	}
	respondSuccess(c, "schedule deleted")
}

// RunNow dispatches a schedule immediately without touching its cadence:
// last_run_at and next_run_at stay as they were.
func (sc *SchedulerController) RunNow(c *gin.Context) {
	schedule, err := sc.schedules.Get(c.Param("id"))
	if err != nil {
		respondNotFound(c, "schedule")
		return
	}

	job, err := sc.jobs.Create(schedule.Provider, schedule.Mode)
	if err != nil {
		respondInternalError(c, err, "create job")
		return
	}
	if err := sc.dispatcher.DispatchSync(job); err != nil {
		respondInternalError(c, err, "dispatch job")
		return
	}
	respondAccepted(c, "sync queued", job)
}
