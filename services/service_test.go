package services

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"tripchat/domain"
	"tripchat/repositories"
	"tripchat/runtime"
	"tripchat/runtime/workers"
)

const testMaxContentLength = 1000

type serviceEnv struct {
	rooms    *RoomService
	messages *MessageService
	store    repositories.MessageRepository
	ctx      context.Context
}

// newServiceEnv wires the full stack (badger, supervisor, orchestrator,
// services) the way cmd/server does, minus gateway and AI.
func newServiceEnv(t *testing.T) *serviceEnv {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelError)

	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).
		WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	roomRepo := repositories.NewRoomRepository(db, log)
	messageRepo := repositories.NewMessageRepository(db, log)
	threadRepo := repositories.NewThreadRepository(db, log)

	sup := workers.NewSupervisor(log)
	orchestrator := runtime.NewOrchestrator(
		log, sup, runtime.NewRegistry(),
		roomRepo, messageRepo, threadRepo,
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

	retry := RetryPolicy{Attempts: 2, Backoff: time.Millisecond}
	return &serviceEnv{
		rooms:    NewRoomService(orchestrator, log),
		messages: NewMessageService(orchestrator, messageRepo, retry, testMaxContentLength, log),
		store:    messageRepo,
		ctx:      ctx,
	}
}

func groupSpec(owner uuid.UUID, extra ...ParticipantSpec) CreateRoomSpec {
	participants := append([]ParticipantSpec{{UserID: owner, Role: domain.RoleOwner}}, extra...)
	return CreateRoomSpec{Type: domain.RoomGroup, Name: "trip planning", Participants: participants}
}

func memberSpecs(n int) []ParticipantSpec {
	out := make([]ParticipantSpec, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, ParticipantSpec{UserID: uuid.New(), Role: domain.RoleMember})
	}
	return out
}
