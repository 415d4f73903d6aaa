package workers

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"tripchat/contract"
	"tripchat/domain"
	"tripchat/domain/event"
	"tripchat/errors"
	"tripchat/moderation"
	"tripchat/repositories"
)

var _ contract.Worker = (*RoomWorker)(nil)

// RoomWorker is the single logical writer of one room. It drains the
// room's command channel in arrival order, so version increments are
// strictly sequential and every concurrently submitted mutation succeeds
// with a distinct version. Workers of different rooms run in parallel.
type RoomWorker struct {
	room      *domain.Room
	commands  chan domain.Command
	events    chan event.DomainEvent
	rooms     repositories.IRoomRepository
	messages  repositories.IMessageRepository
	threads   repositories.IThreadRepository
	moderator *moderation.Moderator
	log       *slog.Logger
	now       func() time.Time
}

func NewRoomWorker(
	room *domain.Room,
	commands chan domain.Command,
	events chan event.DomainEvent,
	rooms repositories.IRoomRepository,
	messages repositories.IMessageRepository,
	threads repositories.IThreadRepository,
	moderator *moderation.Moderator,
	log *slog.Logger,
) *RoomWorker {
	return &RoomWorker{
		room:      room,
		commands:  commands,
		events:    events,
		rooms:     rooms,
		messages:  messages,
		threads:   threads,
		moderator: moderator,
		log:       log.With("room_id", room.ID),
		now:       time.Now,
	}
}

func (w *RoomWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping room worker")
			return ctx.Err()
		case cmd, ok := <-w.commands:
			if !ok {
				return nil
			}
			w.handle(ctx, cmd)
		}
	}
}

// handle answers exactly once per command. Replies are buffered channels
// created by the dispatching service, so sends never block the processor.
func (w *RoomWorker) handle(ctx context.Context, cmd domain.Command) {
	switch c := cmd.(type) {
	case domain.SnapshotCommand:
		c.Reply <- domain.RoomResult{Room: *w.room}
	case domain.AddParticipantsCommand:
		room, err := w.addParticipants(c)
		c.Reply <- domain.RoomResult{Room: room, Err: err}
		if err == nil {
			w.emit(ctx, event.ParticipantJoined{
				Room:         room.ID,
				Participants: c.Participants,
				Version:      room.Version,
			})
		}
	case domain.RemoveParticipantsCommand:
		room, err := w.removeParticipants(c)
		c.Reply <- domain.RoomResult{Room: room, Err: err}
		if err == nil {
			w.emit(ctx, event.ParticipantLeft{
				Room:         room.ID,
				Participants: c.UserIDs,
				Version:      room.Version,
			})
		}
	case domain.UpdateRoomCommand:
		room, err := w.updateRoom(c)
		c.Reply <- domain.RoomResult{Room: room, Err: err}
		if err == nil {
			w.emit(ctx, event.RoomUpdated{Room: room.ID, Version: room.Version})
		}
	case domain.PostMessageCommand:
		message, err := w.postMessage(c)
		c.Reply <- domain.MessageResult{Message: message, Err: err}
		if err == nil {
			w.emit(ctx, event.MessageNew{Message: message})
			w.emit(ctx, event.MessageStatus{
				Room:      message.RoomID,
				MessageID: message.ID,
				Status:    message.Status,
			})
		}
	case domain.CreateThreadCommand:
		thread, err := w.createThread(c)
		c.Reply <- domain.ThreadResult{Thread: thread, Err: err}
	case domain.AckDeliveryCommand:
		message, changed, err := w.ackDelivery(c)
		c.Reply <- domain.MessageResult{Message: message, Err: err}
		if err == nil && changed {
			w.emit(ctx, event.MessageStatus{
				Room:      message.RoomID,
				MessageID: message.ID,
				Status:    message.Status,
			})
		}
	default:
		w.log.Warn("Unknown command type", "command", cmd)
	}
}

// addParticipants mutates a copy first: a validation failure must leave
// the room untouched and consume no version.
func (w *RoomWorker) addParticipants(c domain.AddParticipantsCommand) (domain.Room, error) {
	if !w.room.IsMember(c.ActorID) {
		return domain.Room{}, errors.NewAuthorization("actor is not a participant of the room")
	}
	updated := w.clone()
	if err := updated.AddParticipants(c.Participants, w.now()); err != nil {
		return domain.Room{}, err
	}
	if err := w.persist(updated); err != nil {
		return domain.Room{}, err
	}
	*w.room = updated
	return updated, nil
}

func (w *RoomWorker) removeParticipants(c domain.RemoveParticipantsCommand) (domain.Room, error) {
	actor, ok := w.room.Participant(c.ActorID)
	if !ok {
		return domain.Room{}, errors.NewAuthorization("actor is not a participant of the room")
	}
	// Self-removal is always permitted; removing anyone else is owner-only.
	removesOthers := lo.SomeBy(c.UserIDs, func(id uuid.UUID) bool { return id != c.ActorID })
	if removesOthers && actor.Role != domain.RoleOwner {
		return domain.Room{}, errors.NewAuthorization("only an OWNER may remove other participants")
	}
	updated := w.clone()
	if err := updated.RemoveParticipants(c.UserIDs, w.now()); err != nil {
		return domain.Room{}, err
	}
	if err := w.persist(updated); err != nil {
		return domain.Room{}, err
	}
	*w.room = updated
	return updated, nil
}

func (w *RoomWorker) updateRoom(c domain.UpdateRoomCommand) (domain.Room, error) {
	actor, ok := w.room.Participant(c.ActorID)
	if !ok {
		return domain.Room{}, errors.NewAuthorization("actor is not a participant of the room")
	}
	if w.room.Type == domain.RoomGroup && actor.Role != domain.RoleOwner {
		return domain.Room{}, errors.NewAuthorization("only an OWNER may update a GROUP room")
	}
	updated := w.clone()
	if err := updated.Apply(c.Patch, w.now()); err != nil {
		return domain.Room{}, err
	}
	if err := w.persist(updated); err != nil {
		return domain.Room{}, err
	}
	*w.room = updated
	return updated, nil
}

// postMessage moves a persisted PENDING message to SENT. Membership was
// pre-checked by the service, but the authoritative check runs here where
// no concurrent mutation can interleave. Moderation masks the text, it
// never rejects. Message sends consume no room version.
func (w *RoomWorker) postMessage(c domain.PostMessageCommand) (domain.Message, error) {
	message := c.Message
	now := w.now()

	if !w.room.IsMember(message.SenderID) {
		_ = message.MarkFailed(now)
		_ = w.messages.UpdateMessage(message)
		return message, errors.NewValidation("sender is not a participant of the room")
	}
	if message.ThreadID != nil {
		if err := w.appendToThread(&message, now); err != nil {
			_ = message.MarkFailed(now)
			_ = w.messages.UpdateMessage(message)
			return message, err
		}
	}
	if w.moderator != nil && message.Content.Text != "" {
		message.Content.Text = w.moderator.Censor(message.Content.Text)
		if lang := w.moderator.Language(message.Content.Text); lang != "" {
			if message.Content.Metadata == nil {
				message.Content.Metadata = map[string]string{}
			}
			message.Content.Metadata["lang"] = lang
		}
	}
	if err := message.MarkSent(now); err != nil {
		return message, err
	}
	if err := w.messages.UpdateMessage(message); err != nil {
		return message, err
	}
	return message, nil
}

// appendToThread creates the thread lazily on the first reply and records
// the reply id in arrival order. The reply always carries the thread's
// root in its metadata.
func (w *RoomWorker) appendToThread(message *domain.Message, now time.Time) error {
	rootID := *message.ThreadID
	thread, err := w.threads.FindThread(rootID)
	switch {
	case err == nil:
	case err == errors.ErrThreadNotFound:
		root, rootErr := w.messages.GetMessage(rootID)
		if rootErr != nil {
			return errors.NewValidation("thread root %s does not exist", rootID)
		}
		if root.RoomID != w.room.ID {
			return errors.NewValidation("thread root belongs to another room")
		}
		thread = domain.NewMessageThread(rootID, w.room.ID, now)
	default:
		return err
	}

	thread.AppendReply(message.ID, now)
	if err := w.threads.SaveThread(thread); err != nil {
		return err
	}
	if message.Content.Metadata == nil {
		message.Content.Metadata = map[string]string{}
	}
	message.Content.Metadata["rootMessageId"] = thread.RootMessageID.String()
	return nil
}

// createThread opens a thread on a root message of this room. Calling it
// twice for the same root returns the existing thread unchanged.
func (w *RoomWorker) createThread(c domain.CreateThreadCommand) (domain.MessageThread, error) {
	thread, err := w.threads.FindThread(c.RootMessageID)
	if err == nil {
		return thread, nil
	}
	if err != errors.ErrThreadNotFound {
		return domain.MessageThread{}, err
	}
	root, err := w.messages.GetMessage(c.RootMessageID)
	if err != nil {
		return domain.MessageThread{}, err
	}
	if root.RoomID != w.room.ID {
		return domain.MessageThread{}, errors.NewValidation("thread root belongs to another room")
	}
	thread = domain.NewMessageThread(c.RootMessageID, w.room.ID, w.now())
	if err := w.threads.SaveThread(thread); err != nil {
		return domain.MessageThread{}, err
	}
	return thread, nil
}

// ackDelivery is idempotent: re-acknowledging a DELIVERED message changes
// nothing and emits nothing.
func (w *RoomWorker) ackDelivery(c domain.AckDeliveryCommand) (domain.Message, bool, error) {
	message, err := w.messages.GetMessage(c.MessageID)
	if err != nil {
		return domain.Message{}, false, err
	}
	if message.Status == domain.StatusDelivered {
		return message, false, nil
	}
	if err := message.MarkDelivered(w.now()); err != nil {
		return message, false, err
	}
	if err := w.messages.UpdateMessage(message); err != nil {
		return message, false, err
	}
	return message, true, nil
}

func (w *RoomWorker) clone() domain.Room {
	updated := *w.room
	updated.Participants = append([]domain.Participant{}, w.room.Participants...)
	return updated
}

func (w *RoomWorker) persist(updated domain.Room) error {
	return w.rooms.UpdateRoom(updated, w.room.Version)
}

func (w *RoomWorker) emit(ctx context.Context, evt event.DomainEvent) {
	select {
	case <-ctx.Done():
	case w.events <- evt:
	}
}
