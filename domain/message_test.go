package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestMessage_Lifecycle(t *testing.T) {
	req := require.New(t)
	now := time.Now()
	message := NewMessage(uuid.New(), uuid.New(), MessageText, MessageContent{Text: "hello"}, nil, now)

	req.Equal(StatusPending, message.Status)

	req.NoError(message.MarkSent(now))
	req.Equal(StatusSent, message.Status)

	req.NoError(message.MarkDelivered(now))
	req.Equal(StatusDelivered, message.Status)
}

func TestMessage_MarkSent_OnlyFromPending(t *testing.T) {
	req := require.New(t)
	now := time.Now()
	message := NewMessage(uuid.New(), uuid.New(), MessageText, MessageContent{Text: "hello"}, nil, now)
	req.NoError(message.MarkSent(now))

	req.Error(message.MarkSent(now))
}

func TestMessage_MarkDelivered_IsIdempotent(t *testing.T) {
	req := require.New(t)
	now := time.Now()
	message := NewMessage(uuid.New(), uuid.New(), MessageText, MessageContent{Text: "hello"}, nil, now)
	req.NoError(message.MarkSent(now))
	req.NoError(message.MarkDelivered(now))

	// The second acknowledgment changes nothing.
	req.NoError(message.MarkDelivered(now))
	req.Equal(StatusDelivered, message.Status)
}

func TestMessage_MarkDelivered_RequiresSent(t *testing.T) {
	req := require.New(t)
	now := time.Now()
	message := NewMessage(uuid.New(), uuid.New(), MessageText, MessageContent{Text: "hello"}, nil, now)

	req.Error(message.MarkDelivered(now))
	req.Equal(StatusPending, message.Status)
}

func TestMessage_MarkFailed_IsTerminal(t *testing.T) {
	req := require.New(t)
	now := time.Now()
	message := NewMessage(uuid.New(), uuid.New(), MessageText, MessageContent{Text: "hello"}, nil, now)
	req.NoError(message.MarkFailed(now))

	req.Error(message.MarkSent(now))
	req.Error(message.MarkDelivered(now))
	req.Error(message.MarkFailed(now))
	req.Equal(StatusFailed, message.Status)
}

func TestMessage_MarkFailed_FromSent(t *testing.T) {
	req := require.New(t)
	now := time.Now()
	message := NewMessage(uuid.New(), uuid.New(), MessageText, MessageContent{Text: "hello"}, nil, now)
	req.NoError(message.MarkSent(now))

	req.NoError(message.MarkFailed(now))
	req.Equal(StatusFailed, message.Status)
}

func TestMessage_DeliveredNeverFails(t *testing.T) {
	req := require.New(t)
	now := time.Now()
	message := NewMessage(uuid.New(), uuid.New(), MessageText, MessageContent{Text: "hello"}, nil, now)
	req.NoError(message.MarkSent(now))
	req.NoError(message.MarkDelivered(now))

	req.Error(message.MarkFailed(now))
	req.Equal(StatusDelivered, message.Status)
}

func TestValidMessageType(t *testing.T) {
	req := require.New(t)

	req.True(ValidMessageType(MessageText))
	req.True(ValidMessageType(MessageAIResponse))
	req.True(ValidMessageType(MessageTravelPlan))
	req.False(ValidMessageType("VOICE"))
}

func TestMessageThread_AppendReply_IsIdempotent(t *testing.T) {
	req := require.New(t)
	now := time.Now()
	thread := NewMessageThread(uuid.New(), uuid.New(), now)
	replyID := uuid.New()

	thread.AppendReply(replyID, now)
	thread.AppendReply(replyID, now)

	req.Len(thread.Replies, 1)
}
