package broadcast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekotlyar/kitsu-engine/internal/ingest"
)

func TestHub_DeliversToSubscriber(t *testing.T) {
	hub := NewHub()

	ch, cancel := hub.Subscribe("job-1")
	defer cancel()

	hub.Publish("job-1", 40, ingest.Stats{Processed: 20})

	snapshot := <-ch
	assert.Equal(t, "job-1", snapshot.JobID)
	assert.Equal(t, 40, snapshot.Progress)
	assert.Equal(t, 20, snapshot.Stats.Processed)
}

func TestHub_NoReplayForLateSubscribers(t *testing.T) {
	hub := NewHub()

	hub.Publish("job-1", 40, ingest.Stats{})

	ch, cancel := hub.Subscribe("job-1")
	defer cancel()

	select {
	case snapshot := <-ch:
		t.Fatalf("late subscriber received replayed snapshot: %+v", snapshot)
	default:
	}
}

func TestHub_TopicsAreIsolated(t *testing.T) {
	hub := NewHub()

	ch, cancel := hub.Subscribe("job-1")
	defer cancel()

	hub.Publish("job-2", 10, ingest.Stats{})

	select {
	case snapshot := <-ch:
		t.Fatalf("received snapshot for a different job: %+v", snapshot)
	default:
	}
}

func TestHub_FullBufferDropsNotBlocks(t *testing.T) {
	hub := NewHub()

	ch, cancel := hub.Subscribe("job-1")
	defer cancel()

	// One more than the buffer: the publisher must not block.
	for i := 0; i <= subscriberBuffer; i++ {
		hub.Publish("job-1", i, ingest.Stats{})
	}

	received := 0
	for {
		select {
		case <-ch:
			received++
			continue
		default:
		}
		break
	}
	assert.Equal(t, subscriberBuffer, received)
}

func TestHub_CancelClosesChannel(t *testing.T) {
	hub := NewHub()

	ch, cancel := hub.Subscribe("job-1")
	cancel()

	_, open := <-ch
	require.False(t, open)

	// Publishing after cancel must not panic.
	hub.Publish("job-1", 10, ingest.Stats{})
}
