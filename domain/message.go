// Package domain contains core concepts of the chat system.
// This file defines Message events and the delivery state machine.
// Messages are created once and mutated only through status transitions.
package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"tripchat/errors"
)

type MessageType string

const (
	MessageText       MessageType = "TEXT"
	MessageAIResponse MessageType = "AI_RESPONSE"
	MessageTravelPlan MessageType = "TRAVEL_PLAN"
)

func ValidMessageType(t MessageType) bool {
	switch t {
	case MessageText, MessageAIResponse, MessageTravelPlan:
		return true
	default:
		return false
	}
}

// MessageStatus follows PENDING -> SENT -> DELIVERED, with FAILED as the
// only other terminal state. A transport hiccup never regresses a message
// below SENT; redelivery happens on reconnect.
type MessageStatus string

const (
	StatusPending   MessageStatus = "PENDING"
	StatusSent      MessageStatus = "SENT"
	StatusDelivered MessageStatus = "DELIVERED"
	StatusFailed    MessageStatus = "FAILED"
)

type MessageContent struct {
	Text        string            `json:"text"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Attachments []string          `json:"attachments,omitempty"`
	TravelData  json.RawMessage   `json:"travelData,omitempty"`
}

// AIContext is set only on AI_RESPONSE messages.
type AIContext struct {
	Confidence        float64 `json:"confidence"`
	ContextWindowSize int     `json:"contextWindowSize"`
	// Flagged marks replies below the configured confidence floor. They
	// are still delivered so callers may decide to suppress them.
	Flagged bool `json:"flagged,omitempty"`
}

type Message struct {
	ID        uuid.UUID      `json:"id"`
	RoomID    uuid.UUID      `json:"roomId"`
	SenderID  uuid.UUID      `json:"senderId"`
	Type      MessageType    `json:"type"`
	Content   MessageContent `json:"content"`
	Status    MessageStatus  `json:"status"`
	ThreadID  *uuid.UUID     `json:"threadId,omitempty"`
	AIContext *AIContext     `json:"aiContext,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// NewMessage builds a PENDING message. Validation against room membership
// and content limits happens in the message service before persistence.
func NewMessage(roomID, senderID uuid.UUID, msgType MessageType, content MessageContent, threadID *uuid.UUID, now time.Time) Message {
	return Message{
		ID:        uuid.New(),
		RoomID:    roomID,
		SenderID:  senderID,
		Type:      msgType,
		Content:   content,
		Status:    StatusPending,
		ThreadID:  threadID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// MarkSent records a successful handoff to the transport layer.
func (m *Message) MarkSent(now time.Time) error {
	if m.Status != StatusPending {
		return errors.NewValidation("cannot mark %s message as SENT", m.Status)
	}
	m.Status = StatusSent
	m.UpdatedAt = now
	return nil
}

// MarkDelivered records a delivery acknowledgment from a connected
// recipient. Acknowledging an already DELIVERED message is a no-op.
func (m *Message) MarkDelivered(now time.Time) error {
	switch m.Status {
	case StatusDelivered:
		return nil
	case StatusSent:
		m.Status = StatusDelivered
		m.UpdatedAt = now
		return nil
	default:
		return errors.NewValidation("cannot deliver %s message", m.Status)
	}
}

// MarkFailed is terminal. Valid from PENDING (content or authorization
// rejection) or from SENT on an explicit final transport rejection.
func (m *Message) MarkFailed(now time.Time) error {
	switch m.Status {
	case StatusPending, StatusSent:
		m.Status = StatusFailed
		m.UpdatedAt = now
		return nil
	default:
		return errors.NewValidation("cannot fail %s message", m.Status)
	}
}
