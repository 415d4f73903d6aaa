package domain

import (
	"github.com/google/uuid"
)

// Command is a mutation request routed to the serialized processor of a
// single room. Each command carries its own reply channel; the processor
// answers exactly once per command, in arrival order.
type Command interface {
	RoomID() uuid.UUID
}

// RoomResult answers room mutation commands with the post-mutation room.
type RoomResult struct {
	Room Room
	Err  error
}

// MessageResult answers message commands with the post-transition message.
type MessageResult struct {
	Message Message
	Err     error
}

type AddParticipantsCommand struct {
	Room         uuid.UUID
	ActorID      uuid.UUID
	Participants []Participant
	Reply        chan RoomResult
}

func (c AddParticipantsCommand) RoomID() uuid.UUID { return c.Room }

type RemoveParticipantsCommand struct {
	Room    uuid.UUID
	ActorID uuid.UUID
	UserIDs []uuid.UUID
	Reply   chan RoomResult
}

func (c RemoveParticipantsCommand) RoomID() uuid.UUID { return c.Room }

type UpdateRoomCommand struct {
	Room    uuid.UUID
	ActorID uuid.UUID
	Patch   RoomPatch
	Reply   chan RoomResult
}

func (c UpdateRoomCommand) RoomID() uuid.UUID { return c.Room }

// PostMessageCommand hands a persisted PENDING message to the delivery
// path of its room.
type PostMessageCommand struct {
	Message Message
	Reply   chan MessageResult
}

func (c PostMessageCommand) RoomID() uuid.UUID { return c.Message.RoomID }

// AckDeliveryCommand records a delivery acknowledgment. Idempotent.
type AckDeliveryCommand struct {
	Room      uuid.UUID
	MessageID uuid.UUID
	Reply     chan MessageResult
}

func (c AckDeliveryCommand) RoomID() uuid.UUID { return c.Room }

// ThreadResult answers thread commands.
type ThreadResult struct {
	Thread MessageThread
	Err    error
}

// CreateThreadCommand opens a thread on a root message. Idempotent: the
// existing thread is returned when one is already open.
type CreateThreadCommand struct {
	Room          uuid.UUID
	RootMessageID uuid.UUID
	Reply         chan ThreadResult
}

func (c CreateThreadCommand) RoomID() uuid.UUID { return c.Room }

// SnapshotCommand reads a consistent copy of the room without mutating it.
type SnapshotCommand struct {
	Room  uuid.UUID
	Reply chan RoomResult
}

func (c SnapshotCommand) RoomID() uuid.UUID { return c.Room }
