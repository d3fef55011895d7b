package jobs

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
	dbPath := "./test_jobs_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&entities.SyncJob{},
		&entities.JobLogEntry{},
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

func TestRepository_Create(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	job, err := repo.Create(entities.SyncProviderShikimori, entities.SyncModeFull)

	require.NoError(t, err)
	assert.NotEmpty(t, job.ID)
	assert.Equal(t, entities.JobStatusPending, job.Status)
	assert.Equal(t, 0, job.Progress)
}

func TestRepository_Get_NotFound(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.Get("does-not-exist")

	assert.Error(t, err)
}

func TestRepository_MarkRunning(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	job, err := repo.Create(entities.SyncProviderKodik, entities.SyncModeIncremental)
	require.NoError(t, err)

	err = repo.MarkRunning(job.ID)
	require.NoError(t, err)

	updated, err := repo.Get(job.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.JobStatusRunning, updated.Status)
	assert.NotNil(t, updated.StartedAt)
}

func TestRepository_TerminalJobRejectsUpdates(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	job, err := repo.Create(entities.SyncProviderShikimori, entities.SyncModeFull)
	require.NoError(t, err)

	err = repo.MarkCompleted(job.ID, 10, 4, 3, 2, 1)
	require.NoError(t, err)

	// Any further write must be rejected.
	err = repo.Update(job.ID, map[string]any{"progress": 50})
	assert.ErrorIs(t, err, ErrJobFinal)

	err = repo.MarkFailed(job.ID, "too late")
	assert.ErrorIs(t, err, ErrJobFinal)

	final, err := repo.Get(job.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.JobStatusCompleted, final.Status)
	assert.Equal(t, 100, final.Progress)
	assert.Equal(t, 10, final.ItemsProcessed)
	assert.Equal(t, 1, final.ItemsFailed)
}

func TestRepository_MarkFailed(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	job, err := repo.Create(entities.SyncProviderKodik, entities.SyncModeFull)
	require.NoError(t, err)

	err = repo.MarkFailed(job.ID, "provider unreachable")
	require.NoError(t, err)

	failed, err := repo.Get(job.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.JobStatusFailed, failed.Status)
	assert.Equal(t, "provider unreachable", failed.ErrorMessage)
	assert.NotNil(t, failed.CompletedAt)
}

func TestRepository_List(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	for i := 0; i < 5; i++ {
		_, err := repo.Create(entities.SyncProviderShikimori, entities.SyncModeIncremental)
		require.NoError(t, err)
	}

	jobList, err := repo.List(0, 3)
	require.NoError(t, err)
	assert.Len(t, jobList, 3)

	jobList, err = repo.List(3, 3)
	require.NoError(t, err)
	assert.Len(t, jobList, 2)
}

func TestRepository_AppendLogAndQuery(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	jobA, err := repo.Create(entities.SyncProviderShikimori, entities.SyncModeFull)
	require.NoError(t, err)
	jobB, err := repo.Create(entities.SyncProviderKodik, entities.SyncModeFull)
	require.NoError(t, err)

	err = repo.AppendLog(jobA.ID, entities.LogLevelInfo, "page fetched", map[string]any{"page": 1}, "")
	require.NoError(t, err)
	err = repo.AppendLog(jobA.ID, entities.LogLevelWarning, "item banned", nil, "5114")
	require.NoError(t, err)
	err = repo.AppendLog(jobB.ID, entities.LogLevelError, "fetch failed", nil, "")
	require.NoError(t, err)

	logsA, err := repo.LogsByJob(jobA.ID, 0, 10)
	require.NoError(t, err)
	assert.Len(t, logsA, 2)

	all, err := repo.GlobalLogs(0, 10)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	// Details round-trip through the JSON serializer.
	var withDetails entities.JobLogEntry
	for _, l := range logsA {
		if l.Message == "page fetched" {
			withDetails = l
		}
	}
	assert.Equal(t, float64(1), withDetails.Details["page"])
}
