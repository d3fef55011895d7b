package ingest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekotlyar/kitsu-engine/internal/entities"
	"github.com/ekotlyar/kitsu-engine/internal/providers"
)

// fakeReleaseCatalog is an in-memory episode/release store.
type fakeReleaseCatalog struct {
	mu         sync.Mutex
	candidates []entities.Anime
	episodes   map[uint][]entities.Episode
	releases   []entities.Release
	aired      map[uint]int
	watchers   map[uint][]uint
	nextID     uint
	failOn     uint
}

func newFakeReleaseCatalog() *fakeReleaseCatalog {
	return &fakeReleaseCatalog{
		episodes: make(map[uint][]entities.Episode),
		aired:    make(map[uint]int),
		watchers: make(map[uint][]uint),
	}
}

func (c *fakeReleaseCatalog) ListOngoingWithDelivery() ([]entities.Anime, error) {
	return c.candidates, nil
}

func (c *fakeReleaseCatalog) CreateEpisode(episode *entities.Episode) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failOn != 0 && episode.AnimeID == c.failOn {
		return fmt.Errorf("insert rejected")
	}
	c.nextID++
	episode.ID = c.nextID
	c.episodes[episode.AnimeID] = append(c.episodes[episode.AnimeID], *episode)
	return nil
}

func (c *fakeReleaseCatalog) CreateRelease(release *entities.Release) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.releases = append(c.releases, *release)
	return nil
}

func (c *fakeReleaseCatalog) SetEpisodesAired(animeID uint, aired int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aired[animeID] = aired
	return nil
}

func (c *fakeReleaseCatalog) WatcherIDs(animeID uint) ([]uint, error) {
	return c.watchers[animeID], nil
}

// fakeNotifier records notification fan-outs.
type fakeNotifier struct {
	mu     sync.Mutex
	events []struct {
		users   []uint
		animeID uint
		episode int
	}
}

func (n *fakeNotifier) NotifyNewEpisode(userIDs []uint, anime *entities.Anime, episode int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, struct {
		users   []uint
		animeID uint
		episode int
	}{userIDs, anime.ID, episode})
}

func deliveryWithEpisodes(link string, episodes ...string) *providers.DeliveryRecord {
	eps := make(map[string]string, len(episodes))
	for _, e := range episodes {
		eps[e] = "//" + e
	}
	return &providers.DeliveryRecord{
		Link:    link,
		Quality: "WEBRip 1080p",
		Voice:   "AniLibria",
		Seasons: map[string]providers.Season{"1": {Episodes: eps}},
	}
}

func TestReleaseSyncer_ProvisionsGap(t *testing.T) {
	catalog := newFakeReleaseCatalog()
	// Aired counter comes from the last metadata sync; no local episode rows
	// exist yet.
	anime := entities.Anime{
		ID: 1, ShikimoriID: "100", KodikID: "serial-1",
		Status: entities.AnimeStatusOngoing, EpisodesAired: 3,
	}
	catalog.candidates = []entities.Anime{anime}
	catalog.watchers[1] = []uint{7, 8}

	provider := &fakeProvider{delivery: map[string]*providers.DeliveryRecord{
		"serial-1": deliveryWithEpisodes("//kodik.info/serial/1", "1", "2", "3", "4", "5"),
	}}
	jobs := &fakeJobStore{}
	notifier := &fakeNotifier{}

	syncer := NewReleaseSyncer(provider, jobs, catalog, notifier)
	require.NoError(t, syncer.Run(context.Background(), "job-1"))

	// Only episodes 4 and 5 were provisioned, in order, with releases.
	episodes := catalog.episodes[1]
	require.Len(t, episodes, 2)
	assert.Equal(t, "Episode 4", episodes[0].Title)
	assert.Equal(t, "Episode 5", episodes[1].Title)

	require.Len(t, catalog.releases, 2)
	assert.Equal(t, ReleaseSource, catalog.releases[0].Source)
	assert.Equal(t, "//kodik.info/serial/1?episode=4", catalog.releases[0].EmbedURL)
	assert.True(t, catalog.releases[0].IsActive)

	assert.Equal(t, 5, catalog.aired[1])

	require.Len(t, notifier.events, 1)
	assert.Equal(t, []uint{7, 8}, notifier.events[0].users)
	assert.Equal(t, 5, notifier.events[0].episode)

	assert.Equal(t, entities.JobStatusCompleted, jobs.status)
	assert.Equal(t, Stats{Processed: 1, Updated: 1}, jobs.final)
}

func TestReleaseSyncer_NothingNewSkips(t *testing.T) {
	catalog := newFakeReleaseCatalog()
	catalog.candidates = []entities.Anime{{ID: 1, ShikimoriID: "100", KodikID: "serial-1", EpisodesAired: 5}}

	provider := &fakeProvider{delivery: map[string]*providers.DeliveryRecord{
		"serial-1": deliveryWithEpisodes("//link", "1", "2", "3", "4", "5"),
	}}
	jobs := &fakeJobStore{}
	notifier := &fakeNotifier{}

	syncer := NewReleaseSyncer(provider, jobs, catalog, notifier)
	require.NoError(t, syncer.Run(context.Background(), "job-1"))

	assert.Empty(t, catalog.episodes[1])
	assert.Empty(t, notifier.events)
	assert.Equal(t, Stats{Processed: 1, Skipped: 1}, jobs.final)
}

func TestReleaseSyncer_AbsentDeliverySkips(t *testing.T) {
	catalog := newFakeReleaseCatalog()
	catalog.candidates = []entities.Anime{{ID: 1, ShikimoriID: "100", KodikID: "serial-1"}}

	provider := &fakeProvider{delivery: map[string]*providers.DeliveryRecord{}}
	jobs := &fakeJobStore{}

	syncer := NewReleaseSyncer(provider, jobs, catalog, &fakeNotifier{})
	require.NoError(t, syncer.Run(context.Background(), "job-1"))

	assert.Equal(t, Stats{Processed: 1, Skipped: 1}, jobs.final)
}

func TestReleaseSyncer_EntryFailureContinues(t *testing.T) {
	catalog := newFakeReleaseCatalog()
	catalog.candidates = []entities.Anime{
		{ID: 1, ShikimoriID: "100", KodikID: "serial-1"},
		{ID: 2, ShikimoriID: "200", KodikID: "serial-2"},
	}
	catalog.failOn = 1

	provider := &fakeProvider{delivery: map[string]*providers.DeliveryRecord{
		"serial-1": deliveryWithEpisodes("//link1", "1"),
		"serial-2": deliveryWithEpisodes("//link2", "1"),
	}}
	jobs := &fakeJobStore{}

	syncer := NewReleaseSyncer(provider, jobs, catalog, &fakeNotifier{})
	require.NoError(t, syncer.Run(context.Background(), "job-1"))

	assert.Equal(t, entities.JobStatusCompleted, jobs.status)
	assert.Equal(t, Stats{Processed: 2, Updated: 1, Failed: 1}, jobs.final)
	assert.Len(t, catalog.episodes[2], 1)
}
