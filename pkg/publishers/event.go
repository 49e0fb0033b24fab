package publishers

import (
	"time"

	"github.com/google/uuid"
	"github.com/samvad-hq/departure-board/internal/domain"
)

// Event represents the payload published downstream when the board changes.
type Event struct {
	ID          string          `json:"id"`
	Resource    string          `json:"resource"`
	Snapshot    domain.Snapshot `json:"snapshot"`
	PublishedAt time.Time       `json:"published_at"`
}

// NewEvent constructs an Event for the given snapshot.
func NewEvent(snapshot domain.Snapshot) Event {
	return Event{
		ID:          uuid.NewString(),
		Resource:    snapshot.Resource,
		Snapshot:    snapshot,
		PublishedAt: time.Now().UTC(),
	}
}

// attributes are the message attributes attached by queue-style publishers.
func (e Event) attributes() map[string]string {
	return map[string]string{
		"resource":    e.Resource,
		"snapshot_id": e.Snapshot.ID,
	}
}
