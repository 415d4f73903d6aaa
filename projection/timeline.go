// Package projection builds local read models from observed events.
// Handles ordering, deduplication, and delivery status tracking.
// Does not emit events or call back into the runtime.
package projection

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"tripchat/contract"
	"tripchat/domain"
	"tripchat/domain/event"
)

var _ contract.EventSink = (*Timeline)(nil)

// Timeline is a per-room local message timeline maintained from the
// broadcast stream. Messages arrive at most once per id and are kept in
// creation order; status events update entries in place.
type Timeline struct {
	mu    sync.Mutex
	rooms map[uuid.UUID][]domain.Message
}

func NewTimeline() *Timeline {
	return &Timeline{rooms: make(map[uuid.UUID][]domain.Message)}
}

func (t *Timeline) Consume(_ context.Context, e event.DomainEvent) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch evt := e.(type) {
	case event.MessageNew:
		t.append(evt.Message)
	case event.MessageStatus:
		t.updateStatus(evt)
	}
	return nil
}

func (t *Timeline) append(message domain.Message) {
	timeline := t.rooms[message.RoomID]
	if lo.SomeBy(timeline, func(m domain.Message) bool { return m.ID == message.ID }) {
		return
	}
	timeline = append(timeline, message)
	sort.SliceStable(timeline, func(i, j int) bool {
		return timeline[i].CreatedAt.Before(timeline[j].CreatedAt)
	})
	t.rooms[message.RoomID] = timeline
}

func (t *Timeline) updateStatus(evt event.MessageStatus) {
	timeline := t.rooms[evt.Room]
	for i := range timeline {
		if timeline[i].ID == evt.MessageID {
			timeline[i].Status = evt.Status
			return
		}
	}
}

// Messages returns a copy of the room's timeline, oldest first.
func (t *Timeline) Messages(roomID uuid.UUID) []domain.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]domain.Message{}, t.rooms[roomID]...)
}
