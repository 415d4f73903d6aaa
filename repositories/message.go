//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"tripchat/domain"
	"tripchat/errors"
)

type IMessageRepository interface {
	StoreMessage(message domain.Message) error
	UpdateMessage(message domain.Message) error
	GetMessage(id uuid.UUID) (domain.Message, error)
	RecentMessages(roomID uuid.UUID, limit int) ([]domain.Message, error)
	UndeliveredMessages(roomID uuid.UUID) ([]domain.Message, error)
}

type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) MessageRepository {
	return MessageRepository{db: db, log: log}
}

// messageKey formats the primary key as "msg:{room_id}:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding (lexicographical order).
//  2. Prevent data loss by using the UUID as a collision disconnector if two
//     messages arrive at the same nanosecond.
func messageKey(message domain.Message) []byte {
	return []byte(fmt.Sprintf("msg:%s:%019d:%s",
		message.RoomID,
		message.CreatedAt.UnixNano(),
		message.ID,
	))
}

func messageIndexKey(id uuid.UUID) []byte {
	return []byte(fmt.Sprintf("msgid:%s", id))
}

func roomPrefix(roomID uuid.UUID) []byte {
	return []byte(fmt.Sprintf("msg:%s:", roomID))
}

// StoreMessage persists a message plus an id index entry in one
// transaction, so status updates and point lookups do not need the room
// scan key.
func (m MessageRepository) StoreMessage(message domain.Message) error {
	bytes, err := json.Marshal(message)
	if err != nil {
		return err
	}
	key := messageKey(message)
	return m.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(key, bytes); err != nil {
			return err
		}
		return txn.Set(messageIndexKey(message.ID), key)
	})
}

// UpdateMessage rewrites a stored message in place. The primary key is
// stable because CreatedAt never changes after the first store.
func (m MessageRepository) UpdateMessage(message domain.Message) error {
	bytes, err := json.Marshal(message)
	if err != nil {
		return err
	}
	return m.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(messageIndexKey(message.ID))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return errors.ErrMessageNotFound
			}
			return err
		}
		primary, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		return txn.Set(primary, bytes)
	})
}

func (m MessageRepository) GetMessage(id uuid.UUID) (domain.Message, error) {
	var message domain.Message
	err := m.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(messageIndexKey(id))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return errors.ErrMessageNotFound
			}
			return err
		}
		primary, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		record, err := txn.Get(primary)
		if err != nil {
			return err
		}
		return record.Value(func(value []byte) error {
			return json.Unmarshal(value, &message)
		})
	})
	return message, err
}

// RecentMessages returns up to limit messages of a room in chronological
// order. Thanks to the padded timestamp in the key, a reverse prefix scan
// yields the newest entries first; the result is flipped before returning.
func (m MessageRepository) RecentMessages(roomID uuid.UUID, limit int) ([]domain.Message, error) {
	var raw [][]byte
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := roomPrefix(roomID)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		// Seek past the newest possible timestamp for this room.
		seekKey := append(append([]byte{}, prefix...), []byte("9999999999999999999")...)
		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(raw) == limit {
				break
			}
			err := it.Item().Value(func(value []byte) error {
				raw = append(raw, append([]byte{}, value...))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	messages := make([]domain.Message, 0, len(raw))
	for i := len(raw) - 1; i >= 0; i-- {
		var message domain.Message
		if err := json.Unmarshal(raw[i], &message); err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	return messages, nil
}

// UndeliveredMessages returns the SENT messages of a room in chronological
// order, used by the gateway to redeliver on reconnect.
func (m MessageRepository) UndeliveredMessages(roomID uuid.UUID) ([]domain.Message, error) {
	messages, err := m.RecentMessages(roomID, 0)
	if err != nil {
		return nil, err
	}
	return lo.Filter(messages, func(msg domain.Message, _ int) bool {
		return msg.Status == domain.StatusSent
	}), nil
}
