//go:generate go run go.uber.org/mock/mockgen -source=message_service.go -destination=../mocks/mock_message_service.go -package=mocks
package services

import (
	"context"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"tripchat/domain"
	"tripchat/errors"
	"tripchat/repositories"
	"tripchat/runtime"
)

type SendMessageInput struct {
	RoomID   uuid.UUID
	SenderID uuid.UUID
	Type     domain.MessageType
	Content  domain.MessageContent
	ThreadID *uuid.UUID
	// AIContext is set by the AI responder on AI_RESPONSE messages only.
	AIContext *domain.AIContext
}

type IMessageService interface {
	Send(ctx context.Context, in SendMessageInput) (domain.Message, error)
	CreateMessageThread(ctx context.Context, roomID, rootMessageID uuid.UUID) (domain.MessageThread, error)
	AckDelivery(ctx context.Context, roomID, messageID uuid.UUID) (domain.Message, error)
	GetMessage(ctx context.Context, messageID uuid.UUID) (domain.Message, error)
	Recent(ctx context.Context, roomID uuid.UUID, limit int) ([]domain.Message, error)
	Undelivered(ctx context.Context, roomID uuid.UUID) ([]domain.Message, error)
}

// MessageService validates, persists and tracks the delivery status of
// messages. Accepted messages are handed to the room's serialized
// processor, so sends and participant mutations share one total order per
// room. Rejections are FAILED-terminal: persisted for audit, never
// broadcast, no version consumed.
type MessageService struct {
	orchestrator     *runtime.Orchestrator
	messages         repositories.IMessageRepository
	retry            RetryPolicy
	maxContentLength int
	log              *slog.Logger
	now              func() time.Time
}

func NewMessageService(
	orchestrator *runtime.Orchestrator,
	messages repositories.IMessageRepository,
	retry RetryPolicy,
	maxContentLength int,
	log *slog.Logger,
) *MessageService {
	return &MessageService{
		orchestrator:     orchestrator,
		messages:         messages,
		retry:            retry,
		maxContentLength: maxContentLength,
		log:              log,
		now:              time.Now,
	}
}

func (s *MessageService) Send(ctx context.Context, in SendMessageInput) (domain.Message, error) {
	message := domain.NewMessage(in.RoomID, in.SenderID, in.Type, in.Content, in.ThreadID, s.now())
	if in.Type == domain.MessageAIResponse {
		message.AIContext = in.AIContext
	}

	if err := s.validate(ctx, in); err != nil {
		return s.reject(message, err)
	}

	if err := s.retry.Do(ctx, func() error { return s.messages.StoreMessage(message) }); err != nil {
		return domain.Message{}, err
	}

	reply := make(chan domain.MessageResult, 1)
	cmd := domain.PostMessageCommand{Message: message, Reply: reply}
	if err := s.orchestrator.Dispatch(ctx, cmd); err != nil {
		return domain.Message{}, err
	}
	res, err := runtime.Await(ctx, reply)
	if err != nil {
		return domain.Message{}, err
	}
	if res.Err != nil {
		return res.Message, res.Err
	}
	s.log.Debug("Message accepted",
		"message_id", res.Message.ID,
		"room_id", res.Message.RoomID,
		"status", res.Message.Status)
	return res.Message, nil
}

func (s *MessageService) validate(ctx context.Context, in SendMessageInput) error {
	if !domain.ValidMessageType(in.Type) {
		return errors.NewValidation("unknown message type %q", in.Type)
	}
	length := utf8.RuneCountInString(in.Content.Text)
	if length == 0 && len(in.Content.TravelData) == 0 {
		return errors.NewValidation("message content is empty")
	}
	if length > s.maxContentLength {
		return errors.NewValidation("message exceeds maximum length of %d characters", s.maxContentLength)
	}
	room, err := s.orchestrator.Snapshot(ctx, in.RoomID)
	if err != nil {
		return err
	}
	if room.Status != domain.RoomActive {
		return errors.NewValidation("room is %s", room.Status)
	}
	if !room.IsMember(in.SenderID) {
		return errors.NewValidation("sender is not a participant of the room")
	}
	return nil
}

// reject records a FAILED-terminal message. Storage is best effort: the
// caller gets the validation error either way and nothing is broadcast.
func (s *MessageService) reject(message domain.Message, cause error) (domain.Message, error) {
	_ = message.MarkFailed(s.now())
	if err := s.messages.StoreMessage(message); err != nil {
		s.log.Warn("Failed to record rejected message", "message_id", message.ID, "error", err)
	}
	return message, cause
}

// CreateMessageThread is idempotent: calling it twice for the same root
// returns the existing thread.
func (s *MessageService) CreateMessageThread(ctx context.Context, roomID, rootMessageID uuid.UUID) (domain.MessageThread, error) {
	reply := make(chan domain.ThreadResult, 1)
	cmd := domain.CreateThreadCommand{Room: roomID, RootMessageID: rootMessageID, Reply: reply}
	if err := s.orchestrator.Dispatch(ctx, cmd); err != nil {
		return domain.MessageThread{}, err
	}
	res, err := runtime.Await(ctx, reply)
	if err != nil {
		return domain.MessageThread{}, err
	}
	return res.Thread, res.Err
}

// AckDelivery drives SENT -> DELIVERED on the first acknowledgment from a
// connected recipient. Re-acknowledging is a no-op.
func (s *MessageService) AckDelivery(ctx context.Context, roomID, messageID uuid.UUID) (domain.Message, error) {
	reply := make(chan domain.MessageResult, 1)
	cmd := domain.AckDeliveryCommand{Room: roomID, MessageID: messageID, Reply: reply}
	if err := s.orchestrator.Dispatch(ctx, cmd); err != nil {
		return domain.Message{}, err
	}
	res, err := runtime.Await(ctx, reply)
	if err != nil {
		return domain.Message{}, err
	}
	return res.Message, res.Err
}

func (s *MessageService) GetMessage(_ context.Context, messageID uuid.UUID) (domain.Message, error) {
	return s.messages.GetMessage(messageID)
}

func (s *MessageService) Recent(_ context.Context, roomID uuid.UUID, limit int) ([]domain.Message, error) {
	return s.messages.RecentMessages(roomID, limit)
}

// Undelivered lists the SENT messages of a room for reconnect redelivery.
func (s *MessageService) Undelivered(_ context.Context, roomID uuid.UUID) ([]domain.Message, error) {
	return s.messages.UndeliveredMessages(roomID)
}
