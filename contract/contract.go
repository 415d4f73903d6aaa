//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"github.com/google/uuid"

	"tripchat/domain/event"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself.
// Supervision (panic recovery, restart) is the supervisor's job.
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// Used for logging and supervision, avoiding manual naming in the
// Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink receives room-scoped events. A sink that cannot keep up must
// return an error within the fanout deadline; it is never allowed to block
// another room's processor.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// IRegistry tracks which participants are currently connected and which
// rooms they observe. It is the only shared structure between the gateway
// and the fanout path.
type IRegistry interface {
	GetSinksForRoom(roomID uuid.UUID) []EventSink
	Subscribe(participantID uuid.UUID, roomID uuid.UUID, sink EventSink)
	Unsubscribe(participantID uuid.UUID, roomID uuid.UUID)
	UnsubscribeAll(participantID uuid.UUID)
}
