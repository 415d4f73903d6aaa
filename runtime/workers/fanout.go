package workers

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"tripchat/contract"
	"tripchat/domain/event"
)

var _ contract.Worker = (*EventFanout)(nil)

// EventFanout broadcasts domain events to the currently connected members
// of the event's room (resolved through the registry) plus the permanent
// sinks (stats, AI trigger). It provides best-effort fan-out: a slow sink
// is cut off at the sink timeout and can never block a room processor.
type EventFanout struct {
	log            *slog.Logger
	registry       contract.IRegistry
	permanentSinks []contract.EventSink
	events         chan event.DomainEvent
	sinkTimeout    time.Duration
}

func NewEventFanout(
	log *slog.Logger,
	registry contract.IRegistry,
	events chan event.DomainEvent,
	sinkTimeout time.Duration,
) *EventFanout {
	return &EventFanout{
		log:         log,
		registry:    registry,
		events:      events,
		sinkTimeout: sinkTimeout,
	}
}

// Add registers sinks that receive every event regardless of room.
func (w *EventFanout) Add(sinks ...contract.EventSink) *EventFanout {
	w.permanentSinks = append(w.permanentSinks, sinks...)
	return w
}

func (w *EventFanout) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping fanout worker")
			return ctx.Err()
		case evt, ok := <-w.events:
			if !ok {
				return nil
			}
			w.Fanout(evt)
		}
	}
}

// Fanout delivers one event to every resolved sink, each under its own
// timeout. Failures are logged and counted by the sinks themselves; a
// failed delivery leaves the message status untouched (redelivery happens
// on reconnect).
func (w *EventFanout) Fanout(evt event.DomainEvent) {
	sinks := w.registry.GetSinksForRoom(evt.RoomID())
	sinks = append(sinks, w.permanentSinks...)

	var wg sync.WaitGroup
	for _, sink := range sinks {
		wg.Add(1)
		go func(s contract.EventSink) {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), w.sinkTimeout)
			defer cancel()
			if err := s.Consume(ctx, evt); err != nil {
				w.log.Debug("Sink rejected event",
					"room_id", evt.RoomID(),
					"kind", evt.Kind(),
					"error", err)
			}
		}(sink)
	}
	wg.Wait()
}
