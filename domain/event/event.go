// Package event defines the domain events fanned out to connected room
// members. Every event is scoped to a single room; there is no cross-room
// ordering guarantee.
package event

import (
	"github.com/google/uuid"

	"tripchat/domain"
)

type DomainEvent interface {
	RoomID() uuid.UUID
	// Kind is the wire event type emitted to clients.
	Kind() string
}

const (
	KindRoomCreated       = "room:created"
	KindRoomUpdated       = "room:updated"
	KindParticipantJoined = "room:participant:joined"
	KindParticipantLeft   = "room:participant:left"
	KindMessageNew        = "message:new"
	KindMessageStatus     = "message:status"
)

type RoomCreated struct {
	Room domain.Room `json:"room"`
}

func (e RoomCreated) RoomID() uuid.UUID { return e.Room.ID }
func (e RoomCreated) Kind() string      { return KindRoomCreated }

type RoomUpdated struct {
	Room    uuid.UUID `json:"roomId"`
	Version uint64    `json:"version"`
}

func (e RoomUpdated) RoomID() uuid.UUID { return e.Room }
func (e RoomUpdated) Kind() string      { return KindRoomUpdated }

type ParticipantJoined struct {
	Room         uuid.UUID            `json:"roomId"`
	Participants []domain.Participant `json:"participants"`
	Version      uint64               `json:"version"`
}

func (e ParticipantJoined) RoomID() uuid.UUID { return e.Room }
func (e ParticipantJoined) Kind() string      { return KindParticipantJoined }

type ParticipantLeft struct {
	Room         uuid.UUID   `json:"roomId"`
	Participants []uuid.UUID `json:"participants"`
	Version      uint64      `json:"version"`
}

func (e ParticipantLeft) RoomID() uuid.UUID { return e.Room }
func (e ParticipantLeft) Kind() string      { return KindParticipantLeft }

type MessageNew struct {
	Message domain.Message `json:"message"`
}

func (e MessageNew) RoomID() uuid.UUID { return e.Message.RoomID }
func (e MessageNew) Kind() string      { return KindMessageNew }

type MessageStatus struct {
	Room      uuid.UUID            `json:"roomId"`
	MessageID uuid.UUID            `json:"messageId"`
	Status    domain.MessageStatus `json:"status"`
}

func (e MessageStatus) RoomID() uuid.UUID { return e.Room }
func (e MessageStatus) Kind() string      { return KindMessageStatus }
