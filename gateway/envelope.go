// Package gateway is the stateful websocket edge: admission control,
// per-connection rate limiting, heartbeats and the wire protocol between
// clients and the chat core.
package gateway

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"tripchat/domain"
	"tripchat/domain/event"
	"tripchat/services"
)

// Client to server event types.
const (
	EventMessageSend       = "message:send"
	EventRoomCreate        = "room:create"
	EventParticipantAdd    = "room:participant:add"
	EventParticipantRemove = "room:participant:remove"
	EventRoomUpdate        = "room:update"
	EventSync              = "sync"
	EventPong              = "pong"
)

// Server to client event types. Broadcast kinds reuse the domain event
// names (message:new, room:created, ...) so the fanout payload marshals
// straight into the envelope.
const (
	EventPing  = "ping"
	EventError = "error"
)

// Envelope is the framing of every websocket message in both directions.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func NewEnvelope(eventType string, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("cannot marshal %s payload: %w", eventType, err)
	}
	return Envelope{Type: eventType, Payload: raw}, nil
}

// EventEnvelope wraps a domain event for broadcast, typed by its kind.
func EventEnvelope(e event.DomainEvent) (Envelope, error) {
	return NewEnvelope(e.Kind(), e)
}

// SendMessagePayload carries a message:send request. The sender is taken
// from the connection identity, never from the payload.
type SendMessagePayload struct {
	RoomID   uuid.UUID             `json:"roomId"`
	Type     domain.MessageType    `json:"type"`
	Content  domain.MessageContent `json:"content"`
	ThreadID *uuid.UUID            `json:"threadId,omitempty"`
}

type CreateRoomPayload struct {
	Spec services.CreateRoomSpec `json:"room"`
}

type ParticipantsPayload struct {
	RoomID       uuid.UUID                  `json:"roomId"`
	Participants []services.ParticipantSpec `json:"participants"`
}

type UpdateRoomPayload struct {
	RoomID uuid.UUID        `json:"roomId"`
	Patch  domain.RoomPatch `json:"patch"`
}

type SyncPayload struct {
	RoomID uuid.UUID `json:"roomId"`
}

type StatusPayload struct {
	RoomID    uuid.UUID            `json:"roomId"`
	MessageID uuid.UUID            `json:"messageId"`
	Status    domain.MessageStatus `json:"status"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
