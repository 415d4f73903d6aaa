package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"tripchat/contract"
	"tripchat/domain"
	"tripchat/domain/event"
	"tripchat/errors"
	"tripchat/moderation"
	"tripchat/repositories"
	"tripchat/runtime/workers"
)

// Orchestrator owns one serialized processor per room: a RoomWorker
// goroutine draining a dedicated command channel under the supervisor.
// Commands for the same room are processed in arrival order; different
// rooms proceed fully in parallel. Processors are spawned on room creation
// and rehydrated lazily from the store after a restart.
type Orchestrator struct {
	mu         sync.Mutex
	log        *slog.Logger
	procs      map[uuid.UUID]chan domain.Command
	supervisor contract.ISupervisor
	registry   contract.IRegistry
	fanout     *workers.EventFanout
	events     chan event.DomainEvent

	rooms     repositories.IRoomRepository
	messages  repositories.IMessageRepository
	threads   repositories.IThreadRepository
	moderator *moderation.Moderator

	bufferSize int
	runCtx     context.Context
	started    chan struct{}
}

func NewOrchestrator(
	log *slog.Logger,
	supervisor contract.ISupervisor,
	registry contract.IRegistry,
	rooms repositories.IRoomRepository,
	messages repositories.IMessageRepository,
	threads repositories.IThreadRepository,
	moderator *moderation.Moderator,
	bufferSize int,
	sinkTimeout time.Duration,
) *Orchestrator {
	events := make(chan event.DomainEvent, bufferSize)
	return &Orchestrator{
		log:        log,
		procs:      make(map[uuid.UUID]chan domain.Command),
		supervisor: supervisor,
		registry:   registry,
		fanout:     workers.NewEventFanout(log, registry, events, sinkTimeout),
		events:     events,
		rooms:      rooms,
		messages:   messages,
		threads:    threads,
		moderator:  moderator,
		bufferSize: bufferSize,
		started:    make(chan struct{}),
	}
}

// AddSinks registers permanent sinks that observe every room's events
// (stats, AI response triggering). Must be called before Start.
func (o *Orchestrator) AddSinks(sinks ...contract.EventSink) {
	o.fanout.Add(sinks...)
}

// Start runs the fanout pipeline and blocks until the supervisor drains.
// Room processors attach to the same supervision context, so Stop (or a
// parent cancellation) winds everything down together.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	o.runCtx = ctx
	o.supervisor.Add(o.fanout)
	o.mu.Unlock()
	close(o.started)

	o.log.Info("Starting orchestrator and all supervised workers")
	o.supervisor.Run(ctx)
	return nil
}

// Stop requests a graceful shutdown of every processor and the pipeline.
func (o *Orchestrator) Stop() {
	o.log.Info("Requesting orchestrator shutdown")
	o.supervisor.Stop()
}

// CreateRoom persists a freshly validated room (version 1), spawns its
// serialized processor and emits room:created.
func (o *Orchestrator) CreateRoom(ctx context.Context, room domain.Room) error {
	if err := o.awaitStart(ctx); err != nil {
		return err
	}
	if err := o.rooms.SaveRoom(room); err != nil {
		return err
	}

	o.mu.Lock()
	if _, ok := o.procs[room.ID]; ok {
		o.mu.Unlock()
		return fmt.Errorf("room %s already registered", room.ID)
	}
	o.spawnLocked(room)
	o.mu.Unlock()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case o.events <- event.RoomCreated{Room: room}:
	}
	return nil
}

// Dispatch routes a command to its room's processor, rehydrating the
// processor from the store when the room is known but not yet resident.
func (o *Orchestrator) Dispatch(ctx context.Context, cmd domain.Command) error {
	if err := o.awaitStart(ctx); err != nil {
		return err
	}
	commands, err := o.ensureProc(cmd.RoomID())
	if err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case commands <- cmd:
		return nil
	}
}

// Snapshot reads a consistent copy of a room through its processor, so a
// read never observes a half-applied mutation.
func (o *Orchestrator) Snapshot(ctx context.Context, roomID uuid.UUID) (domain.Room, error) {
	cmd := domain.SnapshotCommand{Room: roomID, Reply: make(chan domain.RoomResult, 1)}
	if err := o.Dispatch(ctx, cmd); err != nil {
		return domain.Room{}, err
	}
	select {
	case <-ctx.Done():
		return domain.Room{}, ctx.Err()
	case res := <-cmd.Reply:
		return res.Room, res.Err
	}
}

// awaitStart blocks a caller until Start has stored the supervision
// context. Without it, a processor spawned before Start would never
// observe shutdown.
func (o *Orchestrator) awaitStart(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-o.started:
		return nil
	}
}

func (o *Orchestrator) ensureProc(roomID uuid.UUID) (chan domain.Command, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if commands, ok := o.procs[roomID]; ok {
		return commands, nil
	}
	room, err := o.rooms.FindRoom(roomID)
	if err != nil {
		return nil, err
	}
	o.log.Debug("Rehydrating room processor", "room_id", roomID)
	return o.spawnLocked(room), nil
}

// spawnLocked registers the command channel and starts the worker under
// supervision. Caller holds o.mu and has passed awaitStart, so runCtx
// is set.
func (o *Orchestrator) spawnLocked(room domain.Room) chan domain.Command {
	commands := make(chan domain.Command, o.bufferSize)
	o.procs[room.ID] = commands

	owned := room
	worker := workers.NewRoomWorker(
		&owned, commands, o.events,
		o.rooms, o.messages, o.threads,
		o.moderator, o.log,
	)
	o.supervisor.Start(o.runCtx, worker)
	return commands
}

// Await collects a room mutation reply, translating an abandoned
// processor into ErrRoomClosed.
func Await[T any](ctx context.Context, reply chan T) (T, error) {
	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res, ok := <-reply:
		if !ok {
			return zero, errors.ErrRoomClosed
		}
		return res, nil
	}
}
