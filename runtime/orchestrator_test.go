package runtime

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"tripchat/domain"
	"tripchat/errors"
	"tripchat/repositories"
	"tripchat/runtime/workers"
)

type testEnv struct {
	orchestrator *Orchestrator
	rooms        repositories.RoomRepository
	messages     repositories.MessageRepository
	ctx          context.Context
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelError)

	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).
		WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rooms := repositories.NewRoomRepository(db, log)
	messages := repositories.NewMessageRepository(db, log)
	threads := repositories.NewThreadRepository(db, log)

	sup := workers.NewSupervisor(log)
	orchestrator := NewOrchestrator(
		log, sup, NewRegistry(),
		rooms, messages, threads,
		nil, 64, time.Second,
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = orchestrator.Start(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	return &testEnv{orchestrator: orchestrator, rooms: rooms, messages: messages, ctx: ctx}
}

func participant(role domain.ParticipantRole) domain.Participant {
	now := time.Now()
	return domain.Participant{UserID: uuid.New(), Role: role, JoinedAt: now, LastReadAt: now}
}

func createGroupRoom(t *testing.T, env *testEnv, participants ...domain.Participant) domain.Room {
	t.Helper()
	room, err := domain.NewRoom(domain.RoomGroup, "trip", participants, domain.RoomSettings{}, time.Now())
	require.NoError(t, err)
	require.NoError(t, env.orchestrator.CreateRoom(env.ctx, room))
	return room
}

func TestOrchestrator_ConcurrentAddsAllSucceedWithDistinctVersions(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)
	owner := participant(domain.RoleOwner)
	room := createGroupRoom(t, env, owner)

	// Five concurrent membership mutations against the same room.
	const mutations = 5
	versions := make(chan uint64, mutations)
	var wg sync.WaitGroup
	for i := 0; i < mutations; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reply := make(chan domain.RoomResult, 1)
			cmd := domain.AddParticipantsCommand{
				Room:         room.ID,
				ActorID:      owner.UserID,
				Participants: []domain.Participant{participant(domain.RoleMember)},
				Reply:        reply,
			}
			req.NoError(env.orchestrator.Dispatch(env.ctx, cmd))
			res, err := Await(env.ctx, reply)
			req.NoError(err)
			req.NoError(res.Err)
			versions <- res.Room.Version
		}()
	}
	wg.Wait()
	close(versions)

	// All mutations succeeded with sequential, gap-free versions.
	seen := map[uint64]bool{}
	for v := range versions {
		req.False(seen[v], "version %d assigned twice", v)
		seen[v] = true
	}
	for v := uint64(2); v <= mutations+1; v++ {
		req.True(seen[v], "version %d missing", v)
	}

	snapshot, err := env.orchestrator.Snapshot(env.ctx, room.ID)
	req.NoError(err)
	req.Equal(uint64(mutations+1), snapshot.Version)
	req.Len(snapshot.Participants, mutations+1)
}

func TestOrchestrator_SequentialMutationsReachExactVersion(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)
	owner := participant(domain.RoleOwner)
	room := createGroupRoom(t, env, owner)

	const updates = 10
	for i := 0; i < updates; i++ {
		name := "trip"
		reply := make(chan domain.RoomResult, 1)
		cmd := domain.UpdateRoomCommand{
			Room:    room.ID,
			ActorID: owner.UserID,
			Patch:   domain.RoomPatch{Name: &name},
			Reply:   reply,
		}
		req.NoError(env.orchestrator.Dispatch(env.ctx, cmd))
		res, err := Await(env.ctx, reply)
		req.NoError(err)
		req.NoError(res.Err)
	}

	snapshot, err := env.orchestrator.Snapshot(env.ctx, room.ID)
	req.NoError(err)
	req.Equal(uint64(updates+1), snapshot.Version)
}

func TestOrchestrator_RejectedMutationConsumesNoVersion(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)
	owner := participant(domain.RoleOwner)
	bystander := participant(domain.RoleMember)
	room := createGroupRoom(t, env, owner, bystander)

	// A MEMBER may not remove another participant.
	reply := make(chan domain.RoomResult, 1)
	cmd := domain.RemoveParticipantsCommand{
		Room:    room.ID,
		ActorID: bystander.UserID,
		UserIDs: []uuid.UUID{owner.UserID},
		Reply:   reply,
	}
	req.NoError(env.orchestrator.Dispatch(env.ctx, cmd))
	res, err := Await(env.ctx, reply)
	req.NoError(err)

	var authz errors.AuthorizationError
	req.ErrorAs(res.Err, &authz)

	snapshot, err := env.orchestrator.Snapshot(env.ctx, room.ID)
	req.NoError(err)
	req.Equal(uint64(1), snapshot.Version)
	req.Len(snapshot.Participants, 2)
}

func TestOrchestrator_DifferentRoomsProgressIndependently(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)
	ownerA := participant(domain.RoleOwner)
	ownerB := participant(domain.RoleOwner)
	roomA := createGroupRoom(t, env, ownerA)
	roomB := createGroupRoom(t, env, ownerB)

	var wg sync.WaitGroup
	for _, target := range []struct {
		room  uuid.UUID
		actor uuid.UUID
	}{{roomA.ID, ownerA.UserID}, {roomB.ID, ownerB.UserID}} {
		wg.Add(1)
		go func(roomID, actorID uuid.UUID) {
			defer wg.Done()
			for i := 0; i < 5; i++ {
				reply := make(chan domain.RoomResult, 1)
				cmd := domain.AddParticipantsCommand{
					Room:         roomID,
					ActorID:      actorID,
					Participants: []domain.Participant{participant(domain.RoleMember)},
					Reply:        reply,
				}
				req.NoError(env.orchestrator.Dispatch(env.ctx, cmd))
				res, err := Await(env.ctx, reply)
				req.NoError(err)
				req.NoError(res.Err)
			}
		}(target.room, target.actor)
	}
	wg.Wait()

	for _, roomID := range []uuid.UUID{roomA.ID, roomB.ID} {
		snapshot, err := env.orchestrator.Snapshot(env.ctx, roomID)
		req.NoError(err)
		req.Equal(uint64(6), snapshot.Version)
	}
}

func TestOrchestrator_RehydratesProcessorFromStore(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)
	owner := participant(domain.RoleOwner)
	room := createGroupRoom(t, env, owner)

	// A second orchestrator over the same store simulates a restart.
	log := logs.GetLoggerFromLevel(slog.LevelError)
	sup := workers.NewSupervisor(log)
	restarted := NewOrchestrator(
		log, sup, NewRegistry(),
		env.rooms, env.messages, repositories.ThreadRepository{},
		nil, 64, time.Second,
	)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = restarted.Start(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	snapshot, err := restarted.Snapshot(ctx, room.ID)
	req.NoError(err)
	req.Equal(room.ID, snapshot.ID)
	req.Equal(uint64(1), snapshot.Version)
}

func TestOrchestrator_DispatchUnknownRoom(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)

	_, err := env.orchestrator.Snapshot(env.ctx, uuid.New())

	req.ErrorIs(err, errors.ErrRoomNotFound)
}

func TestOrchestrator_CreateRoomBeforeStartWaitsForSupervision(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelError)

	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).
		WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	t.Cleanup(func() { _ = db.Close() })

	orchestrator := NewOrchestrator(
		log, workers.NewSupervisor(log), NewRegistry(),
		repositories.NewRoomRepository(db, log),
		repositories.NewMessageRepository(db, log),
		repositories.NewThreadRepository(db, log),
		nil, 64, time.Second,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	room, err := domain.NewRoom(domain.RoomGroup, "trip",
		[]domain.Participant{participant(domain.RoleOwner)}, domain.RoomSettings{}, time.Now())
	req.NoError(err)

	created := make(chan error, 1)
	go func() { created <- orchestrator.CreateRoom(ctx, room) }()

	// No processor may spawn before the supervision context exists.
	select {
	case err := <-created:
		req.Failf("room created before start", "%v", err)
	case <-time.After(50 * time.Millisecond):
	}

	started := make(chan struct{})
	go func() {
		defer close(started)
		_ = orchestrator.Start(ctx)
	}()
	req.NoError(<-created)

	// The processor spawned while Start was pending must observe shutdown.
	cancel()
	select {
	case <-started:
	case <-time.After(2 * time.Second):
		req.Fail("orchestrator did not drain after cancellation")
	}
}
