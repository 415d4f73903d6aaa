//go:generate go run go.uber.org/mock/mockgen -source=room.go -destination=../mocks/mock_room_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"tripchat/domain"
	"tripchat/errors"
)

type IRoomRepository interface {
	SaveRoom(room domain.Room) error
	FindRoom(id uuid.UUID) (domain.Room, error)
	UpdateRoom(room domain.Room, expectedVersion uint64) error
}

type RoomRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewRoomRepository(db *badger.DB, log *slog.Logger) RoomRepository {
	return RoomRepository{db: db, log: log}
}

func roomKey(id uuid.UUID) []byte {
	return []byte(fmt.Sprintf("room:%s", id))
}

// SaveRoom persists a freshly created room (version 1). It refuses to
// overwrite an existing record; updates go through UpdateRoom.
func (r RoomRepository) SaveRoom(room domain.Room) error {
	bytes, err := json.Marshal(room)
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		key := roomKey(room.ID)
		if _, err := txn.Get(key); err == nil {
			return errors.ErrVersionConflict
		}
		return txn.Set(key, bytes)
	})
}

func (r RoomRepository) FindRoom(id uuid.UUID) (domain.Room, error) {
	var room domain.Room
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(roomKey(id))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return errors.ErrRoomNotFound
			}
			return err
		}
		return item.Value(func(value []byte) error {
			return json.Unmarshal(value, &room)
		})
	})
	return room, err
}

// UpdateRoom writes the mutated room, checking that the stored version
// still matches the one the mutation started from. The per-room processor
// is the only writer, so a conflict here indicates a bug, not a race; the
// check mirrors the Update(entity, expectedVersion) store contract.
func (r RoomRepository) UpdateRoom(room domain.Room, expectedVersion uint64) error {
	bytes, err := json.Marshal(room)
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		key := roomKey(room.ID)
		item, err := txn.Get(key)
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return errors.ErrRoomNotFound
			}
			return err
		}
		var stored domain.Room
		if err := item.Value(func(value []byte) error {
			return json.Unmarshal(value, &stored)
		}); err != nil {
			return err
		}
		if stored.Version != expectedVersion {
			r.log.Warn("room version mismatch on update",
				"room_id", room.ID,
				"stored", stored.Version,
				"expected", expectedVersion)
			return errors.ErrVersionConflict
		}
		return txn.Set(key, bytes)
	})
}
