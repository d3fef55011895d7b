package conflicts

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

func setupTestDB(t *testing.T) (*Repository, func()) {
	dbPath := "./test_conflicts_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.Conflict{})
	require.NoError(t, err)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return NewRepository(db), cleanup
}

func TestRepository_Create(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	conflict, err := repo.Create("job-1", 42, "5114", entities.ConflictReasonEpisodeRegression,
		map[string]any{"episodes_aired": 12},
		map[string]any{"episodes_aired": 5},
	)

	require.NoError(t, err)
	assert.NotEmpty(t, conflict.ID)
	assert.Equal(t, entities.ConflictStatusPending, conflict.Status)
	assert.Equal(t, float64(12), conflict.ExistingData["episodes_aired"].(float64))
}

func TestRepository_Resolve(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	conflict, err := repo.Create("job-1", 42, "5114", entities.ConflictReasonScoreAnomaly,
		map[string]any{"score": 9.1}, map[string]any{"score": 4.2})
	require.NoError(t, err)

	resolved, err := repo.Resolve(conflict.ID, entities.ResolutionStrategyReplace, "admin")
	require.NoError(t, err)
	assert.Equal(t, entities.ConflictStatusResolved, resolved.Status)
	assert.Equal(t, entities.ResolutionStrategyReplace, resolved.ResolutionStrategy)
	assert.NotNil(t, resolved.ResolvedAt)
	assert.Equal(t, "admin", resolved.ResolvedBy)
}

func TestRepository_Resolve_Ignore(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	conflict, err := repo.Create("job-1", 42, "5114", entities.ConflictReasonStatusSyncError, nil, nil)
	require.NoError(t, err)

	resolved, err := repo.Resolve(conflict.ID, entities.ResolutionStrategyIgnore, "admin")
	require.NoError(t, err)
	assert.Equal(t, entities.ConflictStatusIgnored, resolved.Status)
}

func TestRepository_Resolve_Twice(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	conflict, err := repo.Create("job-1", 42, "5114", entities.ConflictReasonScoreAnomaly, nil, nil)
	require.NoError(t, err)

	_, err = repo.Resolve(conflict.ID, entities.ResolutionStrategyReplace, "admin")
	require.NoError(t, err)

	_, err = repo.Resolve(conflict.ID, entities.ResolutionStrategyIgnore, "admin")
	assert.ErrorIs(t, err, ErrAlreadyResolved)
}

func TestRepository_List_FilterByStatus(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	first, err := repo.Create("job-1", 1, "1", entities.ConflictReasonScoreAnomaly, nil, nil)
	require.NoError(t, err)
	_, err = repo.Create("job-1", 2, "2", entities.ConflictReasonEpisodeRegression, nil, nil)
	require.NoError(t, err)

	_, err = repo.Resolve(first.ID, entities.ResolutionStrategyReplace, "admin")
	require.NoError(t, err)

	pending, err := repo.List(entities.ConflictStatusPending, 0, 10)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	all, err := repo.List("", 0, 10)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	count, err := repo.CountPending()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
