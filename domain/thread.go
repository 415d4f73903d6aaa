package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// MessageThread groups a root message with its ordered replies. Threads
// are created lazily on the first reply and owned by the room that
// contains the root message.
type MessageThread struct {
	RootMessageID uuid.UUID   `json:"rootMessageId"`
	RoomID        uuid.UUID   `json:"roomId"`
	Replies       []uuid.UUID `json:"replies"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

func NewMessageThread(rootMessageID, roomID uuid.UUID, now time.Time) MessageThread {
	return MessageThread{
		RootMessageID: rootMessageID,
		RoomID:        roomID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// AppendReply records a reply in arrival order. Re-appending the same
// message id is a no-op so redelivered commands stay idempotent.
func (t *MessageThread) AppendReply(messageID uuid.UUID, now time.Time) {
	if lo.Contains(t.Replies, messageID) {
		return
	}
	t.Replies = append(t.Replies, messageID)
	t.UpdatedAt = now
}
