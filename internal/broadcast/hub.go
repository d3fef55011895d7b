// Package broadcast is the in-process pub/sub hub for live job progress.
//
// Topics are job ids. Delivery is best-effort: there is no replay for late
// subscribers and a subscriber with a full buffer silently loses the update
// rather than blocking the publisher.
package broadcast

import (
	"sync"

	"github.com/google/uuid"

	"github.com/ekotlyar/kitsu-engine/internal/ingest"
)

// subscriberBuffer is the per-subscriber channel depth.
const subscriberBuffer = 16

// Snapshot is one progress update for a job.
type Snapshot struct {
	JobID    string       `json:"job_id"`
	Progress int          `json:"progress"`
	Stats    ingest.Stats `json:"stats"`
}

type subscriber struct {
	id string
	ch chan Snapshot
}

// Hub routes job progress snapshots to live subscribers.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string][]subscriber
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subscribers: make(map[string][]subscriber)}
}

// Subscribe registers for updates on one job. The returned cancel func
// removes the subscription and closes the channel.
func (h *Hub) Subscribe(jobID string) (<-chan Snapshot, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub := subscriber{id: uuid.NewString(), ch: make(chan Snapshot, subscriberBuffer)}
	h.subscribers[jobID] = append(h.subscribers[jobID], sub)

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		subs := h.subscribers[jobID]
		for i, s := range subs {
			if s.id == sub.id {
				h.subscribers[jobID] = append(subs[:i], subs[i+1:]...)
				close(s.ch)
				break
			}
		}
		if len(h.subscribers[jobID]) == 0 {
			delete(h.subscribers, jobID)
		}
	}
	return sub.ch, cancel
}

// Publish delivers a snapshot to every subscriber of the job. A full
// subscriber buffer drops the snapshot for that subscriber.
func (h *Hub) Publish(jobID string, progress int, stats ingest.Stats) {
	h.mu.RLock()
	subs := h.subscribers[jobID]
	h.mu.RUnlock()

	snapshot := Snapshot{JobID: jobID, Progress: progress, Stats: stats}
	for _, s := range subs {
		select {
		case s.ch <- snapshot:
		default:
		}
	}
}
