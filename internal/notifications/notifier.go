// Package notifications fans catalog events out to users as persistent
// notification rows.
package notifications

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/ekotlyar/kitsu-engine/internal/entities"
)

// NotificationTypeNewEpisode marks a new-episode notification.
const NotificationTypeNewEpisode = "new_episode"

// Notifier writes notifications for catalog events. Delivery is best
// effort; a failed insert is logged and the remaining recipients still get
// theirs.
type Notifier struct {
	db *gorm.DB
}

// NewNotifier creates a notifier.
func NewNotifier(db *gorm.DB) *Notifier {
	return &Notifier{db: db}
}

// NotifyNewEpisode creates one notification per user about a new episode.
func (n *Notifier) NotifyNewEpisode(userIDs []uint, anime *entities.Anime, episode int) {
	for _, userID := range userIDs {
		notification := &entities.Notification{
			UserID:   userID,
			Title:    anime.Title,
			Message:  fmt.Sprintf("Episode %d of %s is out", episode, anime.Title),
			Type:     NotificationTypeNewEpisode,
			TargetID: anime.ID,
		}
		if err := n.db.Create(notification).Error; err != nil {
			log.Printf("Notifications: failed to notify user %d about %s: %v", userID, anime.Title, err)
		}
	}
}
