package ingest

import (
	"context"
	"fmt"
	"log"

	"github.com/ekotlyar/kitsu-engine/internal/entities"
	"github.com/ekotlyar/kitsu-engine/internal/providers"
)

// ReleaseSource tags releases provisioned from the delivery provider.
const ReleaseSource = "kodik"

// ReleaseCatalog is the catalog persistence the release syncer needs.
type ReleaseCatalog interface {
	ListOngoingWithDelivery() ([]entities.Anime, error)
	CreateEpisode(episode *entities.Episode) error
	CreateRelease(release *entities.Release) error
	SetEpisodesAired(animeID uint, aired int) error
	WatcherIDs(animeID uint) ([]uint, error)
}

// Notifier fans a new-episode event out to watching users.
type Notifier interface {
	NotifyNewEpisode(userIDs []uint, anime *entities.Anime, episode int)
}

// ReleaseSyncer walks the ongoing catalog and provisions episodes and
// releases for anything the delivery provider has aired beyond the local
// state.
type ReleaseSyncer struct {
	delivery providers.Provider
	jobs     JobStore
	catalog  ReleaseCatalog
	notifier Notifier
}

// NewReleaseSyncer wires a release syncer.
func NewReleaseSyncer(delivery providers.Provider, jobs JobStore, catalog ReleaseCatalog, notifier Notifier) *ReleaseSyncer {
	return &ReleaseSyncer{delivery: delivery, jobs: jobs, catalog: catalog, notifier: notifier}
}

// Run executes a delivery sync job. Per-entry failures are counted and
// logged; the run continues with the next entry.
func (s *ReleaseSyncer) Run(ctx context.Context, jobID string) error {
	if err := s.jobs.MarkRunning(jobID); err != nil {
		return fmt.Errorf("failed to start job %s: %w", jobID, err)
	}

	candidates, err := s.catalog.ListOngoingWithDelivery()
	if err != nil {
		werr := fmt.Errorf("failed to list sync candidates: %w", err)
		if ferr := s.jobs.MarkFailed(jobID, werr.Error()); ferr != nil {
			log.Printf("Release sync %s: failed to record failure: %v", jobID, ferr)
		}
		return werr
	}

	var stats Stats
	for i := range candidates {
		if err := ctx.Err(); err != nil {
			werr := fmt.Errorf("release sync cancelled: %w", err)
			if ferr := s.jobs.MarkFailed(jobID, werr.Error()); ferr != nil {
				log.Printf("Release sync %s: failed to record failure: %v", jobID, ferr)
			}
			return werr
		}

		anime := &candidates[i]
		stats.Processed++
		provisioned, err := s.syncEntry(ctx, jobID, anime)
		if err != nil {
			stats.Failed++
			s.log(jobID, entities.LogLevelError, "release sync failed",
				map[string]any{"error": err.Error()}, anime.ShikimoriID)
			continue
		}
		if provisioned > 0 {
			stats.Updated++
		} else {
			stats.Skipped++
		}
	}

	if err := s.jobs.MarkCompleted(jobID, stats.Processed, stats.Created, stats.Updated, stats.Skipped, stats.Failed); err != nil {
		return fmt.Errorf("failed to finalize job %s: %w", jobID, err)
	}
	log.Printf("Release sync %s: completed, entries=%d updated=%d failed=%d",
		jobID, stats.Processed, stats.Updated, stats.Failed)
	return nil
}

// syncEntry provisions the missing episode range for one entry and returns
// how many episodes were added.
func (s *ReleaseSyncer) syncEntry(ctx context.Context, jobID string, anime *entities.Anime) (int, error) {
	record, err := s.delivery.ProbeDelivery(ctx, anime.KodikID)
	if err != nil {
		return 0, fmt.Errorf("delivery probe: %w", err)
	}
	if record == nil {
		s.log(jobID, entities.LogLevelDebug, "no delivery entry", nil, anime.ShikimoriID)
		return 0, nil
	}

	aired := record.MaxEpisode()
	have := anime.EpisodesAired
	if aired <= have {
		return 0, nil
	}

	// Provision the gap in order so episode numbering stays dense.
	for n := have + 1; n <= aired; n++ {
		episode := &entities.Episode{
			AnimeID: anime.ID,
			Season:  1,
			Number:  n,
			Title:   fmt.Sprintf("Episode %d", n),
		}
		if err := s.catalog.CreateEpisode(episode); err != nil {
			return n - have - 1, fmt.Errorf("episode %d insert: %w", n, err)
		}
		release := &entities.Release{
			EpisodeID:       episode.ID,
			Source:          ReleaseSource,
			Quality:         "1080p",
			URL:             record.Link,
			EmbedURL:        fmt.Sprintf("%s?episode=%d", record.Link, n),
			TranslationType: record.Voice,
			IsActive:        true,
		}
		if err := s.catalog.CreateRelease(release); err != nil {
			return n - have - 1, fmt.Errorf("release for episode %d insert: %w", n, err)
		}
	}

	if err := s.catalog.SetEpisodesAired(anime.ID, aired); err != nil {
		return aired - have, fmt.Errorf("aired counter update: %w", err)
	}

	if s.notifier != nil {
		watchers, err := s.catalog.WatcherIDs(anime.ID)
		if err != nil {
			log.Printf("Release sync %s: watcher lookup failed for %d: %v", jobID, anime.ID, err)
		} else if len(watchers) > 0 {
			s.notifier.NotifyNewEpisode(watchers, anime, aired)
		}
	}

	s.log(jobID, entities.LogLevelInfo, "episodes provisioned",
		map[string]any{"from": have + 1, "to": aired}, anime.ShikimoriID)
	return aired - have, nil
}

func (s *ReleaseSyncer) log(jobID string, level entities.LogLevel, message string, details map[string]any, itemID string) {
	if err := s.jobs.AppendLog(jobID, level, message, details, itemID); err != nil {
		log.Printf("Release sync %s: failed to append log entry: %v", jobID, err)
	}
}
