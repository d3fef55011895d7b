package catalog

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ekotlyar/kitsu-engine/internal/entities"
)

func setupTestDB(t *testing.T) (*gorm.DB, *Repository, func()) {
	dbPath := "./test_catalog_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&entities.Anime{},
		&entities.Episode{},
		&entities.Release{},
		&entities.Favorite{},
	)
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return db, repo, cleanup
}

func createTestAnime(t *testing.T, repo *Repository, shikimoriID, title string) *entities.Anime {
	anime := &entities.Anime{
		ShikimoriID: shikimoriID,
		Title:       title,
		Status:      entities.AnimeStatusOngoing,
	}
	require.NoError(t, repo.Create(anime))
	return anime
}

func TestRepository_GetByExternalID_Absent(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	anime, err := repo.GetByExternalID("99999")

	require.NoError(t, err)
	assert.Nil(t, anime)
}

func TestRepository_GetByExternalID_Found(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	created := createTestAnime(t, repo, "5114", "Fullmetal Alchemist: Brotherhood")

	anime, err := repo.GetByExternalID("5114")

	require.NoError(t, err)
	require.NotNil(t, anime)
	assert.Equal(t, created.ID, anime.ID)
}

func TestRepository_ListOngoingWithDelivery(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	withDelivery := &entities.Anime{
		ShikimoriID: "1", Title: "A", Status: entities.AnimeStatusOngoing, KodikID: "serial-1",
	}
	require.NoError(t, repo.Create(withDelivery))
	require.NoError(t, repo.Create(&entities.Anime{
		ShikimoriID: "2", Title: "B", Status: entities.AnimeStatusOngoing,
	}))
	require.NoError(t, repo.Create(&entities.Anime{
		ShikimoriID: "3", Title: "C", Status: entities.AnimeStatusReleased, KodikID: "serial-3",
	}))

	list, err := repo.ListOngoingWithDelivery()

	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, withDelivery.ID, list[0].ID)
}

func TestRepository_ProvisionEpisodeAndRelease(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	anime := createTestAnime(t, repo, "1", "A")

	episode := &entities.Episode{AnimeID: anime.ID, Season: 1, Number: 4, Title: "Episode 4"}
	require.NoError(t, repo.CreateEpisode(episode))
	require.NotZero(t, episode.ID)

	require.NoError(t, repo.CreateRelease(&entities.Release{
		EpisodeID: episode.ID, Source: "kodik", Quality: "1080p", IsActive: true,
	}))
	require.NoError(t, repo.SetEpisodesAired(anime.ID, 4))

	updated, err := repo.GetByID(anime.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, updated.EpisodesAired)

	var releases int64
	require.NoError(t, db.Model(&entities.Release{}).Where("episode_id = ?", episode.ID).Count(&releases).Error)
	assert.EqualValues(t, 1, releases)
}

func TestRepository_Search(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	createTestAnime(t, repo, "1", "Cowboy Bebop")
	createTestAnime(t, repo, "2", "Samurai Champloo")

	results, err := repo.Search("cowboy", 10)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Cowboy Bebop", results[0].Title)
}

func TestRepository_WatcherIDs(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	anime := createTestAnime(t, repo, "1", "A")
	other := createTestAnime(t, repo, "2", "B")

	require.NoError(t, db.Create(&entities.Favorite{UserID: 10, AnimeID: anime.ID, Category: entities.FavoriteCategoryWatching}).Error)
	require.NoError(t, db.Create(&entities.Favorite{UserID: 11, AnimeID: anime.ID, Category: entities.FavoriteCategoryWatching}).Error)
	require.NoError(t, db.Create(&entities.Favorite{UserID: 12, AnimeID: anime.ID, Category: "planned"}).Error)
	require.NoError(t, db.Create(&entities.Favorite{UserID: 13, AnimeID: other.ID, Category: entities.FavoriteCategoryWatching}).Error)

	ids, err := repo.WatcherIDs(anime.ID)

	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{10, 11}, ids)
}
