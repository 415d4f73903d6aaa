// Package runtime owns event propagation and the per-room serialized
// processors. It orchestrates the system without containing domain rules.
package runtime

import (
	"sync"

	"github.com/google/uuid"

	"tripchat/contract"
)

type Set map[uuid.UUID]struct{}

// Registry tracks connected participants and their room subscriptions.
// Connect/disconnect events race with broadcast reads, so both maps are
// guarded by a single RWMutex.
type Registry struct {
	mu          sync.RWMutex
	sessions    map[uuid.UUID]contract.EventSink // participant -> sink
	roomMembers map[uuid.UUID]Set                // room -> participants
	memberRooms map[uuid.UUID]Set                // participant -> rooms
}

func NewRegistry() *Registry {
	return &Registry{
		sessions:    make(map[uuid.UUID]contract.EventSink),
		roomMembers: make(map[uuid.UUID]Set),
		memberRooms: make(map[uuid.UUID]Set),
	}
}

// GetSinksForRoom resolves the sinks of the currently connected members of
// a room. Participants without an active session are skipped, so events
// are never delivered to non-members or to offline members.
func (r *Registry) GetSinksForRoom(roomID uuid.UUID) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.roomMembers[roomID]
	if !ok {
		return nil
	}
	var activeSinks []contract.EventSink
	for participantID := range members {
		if sink, exists := r.sessions[participantID]; exists {
			activeSinks = append(activeSinks, sink)
		}
	}
	return activeSinks
}

// Subscribe registers a participant's active connection and adds them to a
// room's broadcast set. A participant keeps a single sink even when
// observing several rooms.
func (r *Registry) Subscribe(participantID uuid.UUID, roomID uuid.UUID, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[participantID] = sink

	if _, ok := r.roomMembers[roomID]; !ok {
		r.roomMembers[roomID] = make(Set)
	}
	r.roomMembers[roomID][participantID] = struct{}{}

	if _, ok := r.memberRooms[participantID]; !ok {
		r.memberRooms[participantID] = make(Set)
	}
	r.memberRooms[participantID][roomID] = struct{}{}
}

// Unsubscribe removes a participant from one room's broadcast set. The
// session survives as long as the participant observes other rooms.
func (r *Registry) Unsubscribe(participantID uuid.UUID, roomID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unsubscribeLocked(participantID, roomID)
}

// UnsubscribeAll clears a disconnected participant's session and room
// presence in one pass. Called by the gateway on socket close or eviction.
func (r *Registry) UnsubscribeAll(participantID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for roomID := range r.memberRooms[participantID] {
		r.unsubscribeLocked(participantID, roomID)
	}
	delete(r.sessions, participantID)
}

func (r *Registry) unsubscribeLocked(participantID uuid.UUID, roomID uuid.UUID) {
	if members, ok := r.roomMembers[roomID]; ok {
		delete(members, participantID)
		// No empty sets left behind, they would leak over time.
		if len(members) == 0 {
			delete(r.roomMembers, roomID)
		}
	}
	if rooms, ok := r.memberRooms[participantID]; ok {
		delete(rooms, roomID)
		if len(rooms) == 0 {
			delete(r.memberRooms, participantID)
			delete(r.sessions, participantID)
		}
	}
}
