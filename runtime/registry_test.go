package runtime

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"tripchat/domain/event"
)

type recordingSink struct{ name string }

func (recordingSink) Consume(context.Context, event.DomainEvent) error { return nil }

func TestRegistry_SubscribeAndResolve(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	roomID := uuid.New()
	alice, bob := uuid.New(), uuid.New()

	registry.Subscribe(alice, roomID, recordingSink{name: "alice"})
	registry.Subscribe(bob, roomID, recordingSink{name: "bob"})

	req.Len(registry.GetSinksForRoom(roomID), 2)
	req.Empty(registry.GetSinksForRoom(uuid.New()))
}

func TestRegistry_SingleSinkAcrossRooms(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	alice := uuid.New()
	roomA, roomB := uuid.New(), uuid.New()

	registry.Subscribe(alice, roomA, recordingSink{name: "alice"})
	registry.Subscribe(alice, roomB, recordingSink{name: "alice"})

	req.Len(registry.GetSinksForRoom(roomA), 1)
	req.Len(registry.GetSinksForRoom(roomB), 1)
}

func TestRegistry_Unsubscribe(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	roomID := uuid.New()
	alice := uuid.New()
	registry.Subscribe(alice, roomID, recordingSink{name: "alice"})

	registry.Unsubscribe(alice, roomID)

	req.Empty(registry.GetSinksForRoom(roomID))
}

func TestRegistry_UnsubscribeAll(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	alice, bob := uuid.New(), uuid.New()
	roomA, roomB := uuid.New(), uuid.New()
	registry.Subscribe(alice, roomA, recordingSink{name: "alice"})
	registry.Subscribe(alice, roomB, recordingSink{name: "alice"})
	registry.Subscribe(bob, roomA, recordingSink{name: "bob"})

	registry.UnsubscribeAll(alice)

	req.Len(registry.GetSinksForRoom(roomA), 1)
	req.Empty(registry.GetSinksForRoom(roomB))
}
