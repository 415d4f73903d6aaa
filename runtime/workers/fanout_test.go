package workers_test

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"tripchat/contract"
	"tripchat/domain"
	"tripchat/domain/event"
	"tripchat/mocks"
	"tripchat/runtime/workers"
)

func TestEventFanout_DeliversToRoomAndPermanentSinks(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelError)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRegistry := mocks.NewMockIRegistry(ctrl)
	roomSink := mocks.NewMockEventSink(ctrl)
	permanentSink := mocks.NewMockEventSink(ctrl)

	fanout := workers.NewEventFanout(log, mockRegistry, make(chan event.DomainEvent), time.Second)
	fanout.Add(permanentSink)

	evt := event.MessageNew{Message: domain.Message{ID: uuid.New(), RoomID: uuid.New()}}

	done := make(chan struct{})
	var count atomic.Int32
	observe := func(context.Context, event.DomainEvent) {
		if count.Add(1) == 3 {
			close(done)
		}
	}

	// Given two connected members and one permanent sink
	mockRegistry.EXPECT().GetSinksForRoom(evt.RoomID()).
		Return([]contract.EventSink{roomSink, roomSink}).Times(1)
	roomSink.EXPECT().Consume(gomock.Any(), evt).Do(observe).Return(nil).Times(2)
	permanentSink.EXPECT().Consume(gomock.Any(), evt).Do(observe).Return(nil).Times(1)

	// When the event is fanned out
	fanout.Fanout(evt)

	// Then every sink consumed it
	select {
	case <-done:
	case <-time.After(time.Second):
		req.Fail("sinks did not consume the event in time")
	}
}

func TestEventFanout_SlowSinkIsCutOffAtTimeout(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelError)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRegistry := mocks.NewMockIRegistry(ctrl)
	slowSink := mocks.NewMockEventSink(ctrl)

	fanout := workers.NewEventFanout(log, mockRegistry, make(chan event.DomainEvent), 50*time.Millisecond)
	evt := event.MessageNew{Message: domain.Message{ID: uuid.New(), RoomID: uuid.New()}}

	mockRegistry.EXPECT().GetSinksForRoom(evt.RoomID()).
		Return([]contract.EventSink{slowSink}).Times(1)
	slowSink.EXPECT().Consume(gomock.Any(), evt).DoAndReturn(
		func(ctx context.Context, _ event.DomainEvent) error {
			// Blocks until the per-sink deadline fires.
			<-ctx.Done()
			return ctx.Err()
		}).Times(1)

	start := time.Now()
	fanout.Fanout(evt)

	// Fanout returned once the timeout cut the sink off.
	req.Less(time.Since(start), time.Second)
}

func TestEventFanout_RunStopsOnContextCancel(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelError)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRegistry := mocks.NewMockIRegistry(ctrl)
	fanout := workers.NewEventFanout(log, mockRegistry, make(chan event.DomainEvent), time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- fanout.Run(ctx) }()

	cancel()

	select {
	case err := <-done:
		req.ErrorIs(err, context.Canceled)
	case <-time.After(time.Second):
		req.Fail("fanout did not stop on cancellation")
	}
}
