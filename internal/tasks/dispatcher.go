package tasks

import (
	"fmt"

	"github.com/ekotlyar/kitsu-engine/internal/entities"
)

// Dispatcher enqueues sync work for background execution. The HTTP layer
// and the scheduler both talk to this interface, never to the queue
// directly.
type Dispatcher interface {
	DispatchSync(job *entities.SyncJob) error
}

// QueueDispatcher dispatches sync jobs onto the backlite queue.
type QueueDispatcher struct {
	client *Client
}

// NewQueueDispatcher creates a dispatcher backed by the task queue client.
func NewQueueDispatcher(client *Client) *QueueDispatcher {
	return &QueueDispatcher{client: client}
}

// DispatchSync enqueues the task matching the job's provider.
func (d *QueueDispatcher) DispatchSync(job *entities.SyncJob) error {
	if d.client == nil {
		return fmt.Errorf("task queue is disabled")
	}
	switch job.Provider {
	case entities.SyncProviderShikimori:
		_, err := d.client.Add(MetadataSyncTask{JobID: job.ID, Mode: job.Mode}).Save()
		return err
	case entities.SyncProviderKodik:
		_, err := d.client.Add(ReleaseSyncTask{JobID: job.ID}).Save()
		return err
	default:
		return fmt.Errorf("unknown sync provider %q", job.Provider)
	}
}
