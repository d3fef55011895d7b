package notifications

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

func setupTestDB(t *testing.T) (*gorm.DB, func()) {
	dbPath := "./test_notifications_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.Notification{})
	require.NoError(t, err)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return db, cleanup
}

func TestNotifier_NotifyNewEpisode(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	notifier := NewNotifier(db)
	anime := &entities.Anime{Title: "Cowboy Bebop"}
	anime.ID = 7

	notifier.NotifyNewEpisode([]uint{1, 2}, anime, 13)

	var rows []entities.Notification
	require.NoError(t, db.Order("user_id ASC").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.Equal(t, uint(1), rows[0].UserID)
	assert.Equal(t, NotificationTypeNewEpisode, rows[0].Type)
	assert.Equal(t, uint(7), rows[0].TargetID)
	assert.Contains(t, rows[0].Message, "Episode 13")
	assert.False(t, rows[0].IsRead)
}

