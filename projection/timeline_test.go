package projection

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"tripchat/domain"
	"tripchat/domain/event"
)

func message(roomID uuid.UUID, text string, at time.Time) domain.Message {
	m := domain.NewMessage(roomID, uuid.New(), domain.MessageText,
		domain.MessageContent{Text: text}, nil, at)
	_ = m.MarkSent(at)
	return m
}

func TestTimeline_OrdersAndDeduplicates(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	timeline := NewTimeline()
	roomID := uuid.New()
	at := time.Now()

	first := message(roomID, "first", at)
	second := message(roomID, "second", at.Add(time.Second))

	// Out of order and with a redelivered duplicate.
	req.NoError(timeline.Consume(ctx, event.MessageNew{Message: second}))
	req.NoError(timeline.Consume(ctx, event.MessageNew{Message: first}))
	req.NoError(timeline.Consume(ctx, event.MessageNew{Message: first}))

	messages := timeline.Messages(roomID)
	req.Len(messages, 2)
	req.Equal("first", messages[0].Content.Text)
	req.Equal("second", messages[1].Content.Text)
}

func TestTimeline_TracksDeliveryStatus(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	timeline := NewTimeline()
	roomID := uuid.New()
	m := message(roomID, "hello", time.Now())

	req.NoError(timeline.Consume(ctx, event.MessageNew{Message: m}))
	req.NoError(timeline.Consume(ctx, event.MessageStatus{
		Room: roomID, MessageID: m.ID, Status: domain.StatusDelivered,
	}))

	messages := timeline.Messages(roomID)
	req.Len(messages, 1)
	req.Equal(domain.StatusDelivered, messages[0].Status)
}

func TestTimeline_RoomsAreIsolated(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	timeline := NewTimeline()
	roomA, roomB := uuid.New(), uuid.New()

	req.NoError(timeline.Consume(ctx, event.MessageNew{Message: message(roomA, "here", time.Now())}))

	req.Len(timeline.Messages(roomA), 1)
	req.Empty(timeline.Messages(roomB))
}
