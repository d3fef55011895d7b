// Package ingest runs catalog synchronization: paging through a provider,
// mapping and filtering records, applying create/update decisions, and
// flagging suspicious updates as conflicts instead of applying them.
package ingest

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/ekotlyar/kitsu-engine/internal/entities"
	"github.com/ekotlyar/kitsu-engine/internal/mapper"
	"github.com/ekotlyar/kitsu-engine/internal/providers"
	"github.com/ekotlyar/kitsu-engine/internal/settingsstore"
)

// incrementalPages is the paging depth of an incremental sync; full syncs
// use the configured deep sync depth.
const incrementalPages = 5

// maxPages caps the paging depth of any sync.
const maxPages = 50

// Stats are the item counters of one sync run.
type Stats struct {
	Processed int `json:"processed"`
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// JobStore is the job persistence the orchestrator needs.
type JobStore interface {
	MarkRunning(id string) error
	MarkCompleted(id string, processed, created, updated, skipped, failed int) error
	MarkFailed(id string, errMsg string) error
	Update(id string, fields map[string]any) error
	AppendLog(jobID string, level entities.LogLevel, message string, details map[string]any, itemID string) error
}

// CatalogStore is the catalog persistence the orchestrator needs.
type CatalogStore interface {
	GetByExternalID(externalID string) (*entities.Anime, error)
	Create(anime *entities.Anime) error
	Save(anime *entities.Anime) error
}

// ConflictStore records detected conflicts.
type ConflictStore interface {
	Create(jobID string, animeID uint, externalID, conflictType string, existing, incoming map[string]any) (*entities.Conflict, error)
}

// Publisher pushes progress snapshots to live subscribers. Publishing is
// best-effort; a slow or absent subscriber never blocks the sync.
type Publisher interface {
	Publish(jobID string, progress int, stats Stats)
}

// PosterProcessor localizes a poster image. It never fails: when the image
// cannot be fetched the original URL comes back.
type PosterProcessor interface {
	Process(ctx context.Context, url, basename string) string
}

// SettingsSource hands out the current parser settings.
type SettingsSource interface {
	Grabbing() settingsstore.GrabbingConfig
	Fields() settingsstore.FieldsConfig
	Images() settingsstore.ImagesConfig
	Blacklist() settingsstore.BlacklistConfig
	Categories() settingsstore.CategoriesConfig
}

// Orchestrator drives one metadata sync job from first page to final
// status.
type Orchestrator struct {
	provider  providers.Provider
	settings  SettingsSource
	jobs      JobStore
	catalog   CatalogStore
	conflicts ConflictStore
	publisher Publisher
	posters   PosterProcessor
}

// NewOrchestrator wires an orchestrator.
func NewOrchestrator(
	provider providers.Provider,
	settings SettingsSource,
	jobs JobStore,
	catalog CatalogStore,
	conflicts ConflictStore,
	publisher Publisher,
	posters PosterProcessor,
) *Orchestrator {
	return &Orchestrator{
		provider:  provider,
		settings:  settings,
		jobs:      jobs,
		catalog:   catalog,
		conflicts: conflicts,
		publisher: publisher,
		posters:   posters,
	}
}

// syncStats is the mutex-protected working copy of the run counters.
type syncStats struct {
	mu    sync.Mutex
	stats Stats
}

func (s *syncStats) snapshot() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Run executes a sync job to completion. Per-item failures increment the
// failed counter and never abort the run; only a cancelled context fails
// the job as a whole.
func (o *Orchestrator) Run(ctx context.Context, jobID string, mode entities.SyncMode) error {
	grabbing := o.settings.Grabbing()
	fields := o.settings.Fields()
	images := o.settings.Images()
	categories := o.settings.Categories()
	filter := mapper.NewFilter(grabbing, o.settings.Blacklist())

	pages := grabbing.DeepSyncPages
	order := providers.OrderRanked
	if mode == entities.SyncModeIncremental {
		pages = incrementalPages
		order = providers.OrderUpdated
	}
	if pages > maxPages {
		pages = maxPages
	}

	if err := o.jobs.MarkRunning(jobID); err != nil {
		return fmt.Errorf("failed to start job %s: %w", jobID, err)
	}

	stats := &syncStats{}
	sem := make(chan struct{}, grabbing.Concurrency)
	delay := time.Duration(grabbing.RequestDelayMS) * time.Millisecond

	for page := 1; page <= pages; page++ {
		if err := ctx.Err(); err != nil {
			return o.fail(jobID, fmt.Errorf("sync cancelled: %w", err))
		}

		items, err := o.provider.FetchPage(ctx, providers.PageParams{
			Page:  page,
			Limit: grabbing.PageSize,
			Order: order,
		})
		if err != nil {
			log.Printf("Sync %s: page %d fetch failed: %v", jobID, page, err)
			o.appendLog(jobID, entities.LogLevelError, "page fetch failed",
				map[string]any{"page": page, "error": err.Error()}, "")
			continue
		}
		if len(items) == 0 {
			o.appendLog(jobID, entities.LogLevelInfo, "empty page, stopping pagination",
				map[string]any{"page": page}, "")
			break
		}

		progress := page * 100 / pages

		var wg sync.WaitGroup
		for _, item := range items {
			wg.Add(1)
			sem <- struct{}{}
			go func(item providers.PageItem) {
				defer wg.Done()
				defer func() { <-sem }()
				o.processItem(ctx, jobID, item, filter, fields, categories, images, grabbing, stats, progress)
			}(item)
		}
		wg.Wait()

		if err := o.jobs.Update(jobID, map[string]any{"progress": progress}); err != nil {
			log.Printf("Sync %s: failed to store progress: %v", jobID, err)
		}

		if page < pages && delay > 0 {
			select {
			case <-ctx.Done():
				return o.fail(jobID, fmt.Errorf("sync cancelled: %w", ctx.Err()))
			case <-time.After(delay):
			}
		}
	}

	final := stats.snapshot()
	if err := o.jobs.MarkCompleted(jobID, final.Processed, final.Created, final.Updated, final.Skipped, final.Failed); err != nil {
		return fmt.Errorf("failed to finalize job %s: %w", jobID, err)
	}
	o.publisher.Publish(jobID, 100, final)
	log.Printf("Sync %s: completed, processed=%d created=%d updated=%d skipped=%d failed=%d",
		jobID, final.Processed, final.Created, final.Updated, final.Skipped, final.Failed)
	return nil
}

func (o *Orchestrator) fail(jobID string, cause error) error {
	if err := o.jobs.MarkFailed(jobID, cause.Error()); err != nil {
		log.Printf("Sync %s: failed to record failure: %v", jobID, err)
	}
	return cause
}

func (o *Orchestrator) processItem(
	ctx context.Context,
	jobID string,
	item providers.PageItem,
	filter *mapper.Filter,
	fields settingsstore.FieldsConfig,
	categories settingsstore.CategoriesConfig,
	images settingsstore.ImagesConfig,
	grabbing settingsstore.GrabbingConfig,
	stats *syncStats,
	progress int,
) {
	rec, err := o.provider.FetchDetail(ctx, item.ID)
	if err != nil {
		o.countFailure(jobID, item.ID, stats, grabbing, progress, "detail fetch failed", err)
		return
	}
	if rec == nil {
		o.countSkip(jobID, item.ID, stats, grabbing, progress, entities.LogLevelDebug, "entry absent upstream", nil)
		return
	}

	if rejection := filter.Check(rec); rejection != nil {
		level := entities.LogLevelDebug
		if rejection.Warning {
			level = entities.LogLevelWarning
		}
		o.countSkip(jobID, item.ID, stats, grabbing, progress, level, rejection.Message,
			map[string]any{"reason": rejection.Reason})
		return
	}

	mapped := mapper.Map(rec, fields, categories)
	if images.LocalizeImages && o.posters != nil && mapped.PosterURL != "" {
		mapped.PosterURL = o.posters.Process(ctx, mapped.PosterURL, mapped.Slug)
	}

	existing, err := o.catalog.GetByExternalID(mapped.ShikimoriID)
	if err != nil {
		o.countFailure(jobID, item.ID, stats, grabbing, progress, "catalog lookup failed", err)
		return
	}

	if existing == nil {
		anime := &entities.Anime{}
		ApplyMapped(anime, mapped)
		if err := o.catalog.Create(anime); err != nil {
			o.countFailure(jobID, item.ID, stats, grabbing, progress, "catalog insert failed", err)
			return
		}
		o.count(stats, grabbing, jobID, progress, func(s *Stats) { s.Created++ })
		return
	}

	if reasons := DetectConflicts(existing, mapped); len(reasons) > 0 {
		conflictType := strings.Join(reasons, ",")
		if _, err := o.conflicts.Create(jobID, existing.ID, mapped.ShikimoriID, conflictType,
			ExistingSnapshot(existing), IncomingSnapshot(mapped)); err != nil {
			log.Printf("Sync %s: failed to record conflict for %s: %v", jobID, item.ID, err)
		}
		o.countSkip(jobID, item.ID, stats, grabbing, progress, entities.LogLevelWarning,
			"conflicting update held for review", map[string]any{"reasons": reasons})
		return
	}

	if !grabbing.AutoUpdate {
		o.countSkip(jobID, item.ID, stats, grabbing, progress, entities.LogLevelDebug, "auto-update disabled", nil)
		return
	}

	kodikID := existing.KodikID
	ApplyMapped(existing, mapped)
	existing.KodikID = kodikID
	if err := o.catalog.Save(existing); err != nil {
		o.countFailure(jobID, item.ID, stats, grabbing, progress, "catalog update failed", err)
		return
	}
	o.count(stats, grabbing, jobID, progress, func(s *Stats) { s.Updated++ })
}

// count increments the processed counter plus the outcome counter, and
// publishes a progress snapshot on every Nth processed item.
func (o *Orchestrator) count(stats *syncStats, grabbing settingsstore.GrabbingConfig, jobID string, progress int, bump func(*Stats)) {
	stats.mu.Lock()
	stats.stats.Processed++
	bump(&stats.stats)
	processed := stats.stats.Processed
	snapshot := stats.stats
	stats.mu.Unlock()

	if grabbing.ProgressEvery > 0 && processed%grabbing.ProgressEvery == 0 {
		o.publisher.Publish(jobID, progress, snapshot)
	}
}

func (o *Orchestrator) countSkip(jobID, itemID string, stats *syncStats, grabbing settingsstore.GrabbingConfig, progress int, level entities.LogLevel, message string, details map[string]any) {
	o.appendLog(jobID, level, message, details, itemID)
	o.count(stats, grabbing, jobID, progress, func(s *Stats) { s.Skipped++ })
}

func (o *Orchestrator) countFailure(jobID, itemID string, stats *syncStats, grabbing settingsstore.GrabbingConfig, progress int, message string, cause error) {
	o.appendLog(jobID, entities.LogLevelError, message, map[string]any{"error": cause.Error()}, itemID)
	o.count(stats, grabbing, jobID, progress, func(s *Stats) { s.Failed++ })
}

func (o *Orchestrator) appendLog(jobID string, level entities.LogLevel, message string, details map[string]any, itemID string) {
	if err := o.jobs.AppendLog(jobID, level, message, details, itemID); err != nil {
		log.Printf("Sync %s: failed to append log entry: %v", jobID, err)
	}
}
