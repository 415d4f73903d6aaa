package ai

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"tripchat/contract"
	"tripchat/domain"
	"tripchat/domain/event"
	"tripchat/services"
)

// MessageSender injects generated replies into the delivery path.
// *services.MessageService satisfies it.
type MessageSender interface {
	Send(ctx context.Context, in services.SendMessageInput) (domain.Message, error)
}

// RoomDirectory reads consistent room snapshots.
// *services.RoomService satisfies it.
type RoomDirectory interface {
	Room(ctx context.Context, roomID uuid.UUID) (domain.Room, error)
}

var _ contract.Worker = (*ResponderWorker)(nil)

// ResponderWorker consumes accepted user messages and produces AI replies
// asynchronously. It runs outside the room processors: a slow backend
// call delays at most the AI reply, never message delivery.
type ResponderWorker struct {
	responder *Responder
	rooms     RoomDirectory
	sender    MessageSender
	triggers  chan domain.Message
	log       *slog.Logger
}

func NewResponderWorker(
	responder *Responder,
	rooms RoomDirectory,
	sender MessageSender,
	bufferSize int,
	log *slog.Logger,
) *ResponderWorker {
	return &ResponderWorker{
		responder: responder,
		rooms:     rooms,
		sender:    sender,
		triggers:  make(chan domain.Message, bufferSize),
		log:       log,
	}
}

// TriggerSink returns the permanent fanout sink that feeds this worker.
func (w *ResponderWorker) TriggerSink() contract.EventSink {
	return &triggerSink{triggers: w.triggers, log: w.log}
}

func (w *ResponderWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping AI responder worker")
			return ctx.Err()
		case incoming, ok := <-w.triggers:
			if !ok {
				return nil
			}
			w.handle(ctx, incoming)
		}
	}
}

// handle suppresses every failure: on timeout or backend error no
// AI_RESPONSE is produced and nothing is propagated to the room.
func (w *ResponderWorker) handle(ctx context.Context, incoming domain.Message) {
	room, err := w.rooms.Room(ctx, incoming.RoomID)
	if err != nil {
		w.log.Warn("Cannot resolve room for AI reply", "room_id", incoming.RoomID, "error", err)
		return
	}
	if !room.HasAIPersona() {
		return
	}
	persona, ok := room.AIPersona()
	if !ok {
		return
	}

	in, err := w.responder.Respond(ctx, incoming, persona)
	if err != nil {
		w.log.Warn("AI reply suppressed", "room_id", incoming.RoomID, "error", err)
		return
	}
	if _, err := w.sender.Send(ctx, in); err != nil {
		w.log.Error("Failed to send AI reply", "room_id", incoming.RoomID, "error", err)
	}
}

// triggerSink feeds user messages into the responder worker. AI replies
// are skipped so the persona never answers itself. Enqueueing is
// non-blocking: when the worker lags, triggers are dropped rather than
// stalling the fanout.
type triggerSink struct {
	triggers chan<- domain.Message
	log      *slog.Logger
}

func (s *triggerSink) Consume(_ context.Context, e event.DomainEvent) error {
	accepted, ok := e.(event.MessageNew)
	if !ok {
		return nil
	}
	if accepted.Message.Type == domain.MessageAIResponse {
		return nil
	}
	select {
	case s.triggers <- accepted.Message:
	default:
		s.log.Warn("AI trigger dropped, responder backlog full",
			"room_id", accepted.Message.RoomID)
	}
	return nil
}
