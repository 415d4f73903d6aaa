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

type IThreadRepository interface {
	SaveThread(thread domain.MessageThread) error
	FindThread(rootMessageID uuid.UUID) (domain.MessageThread, error)
}

type ThreadRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewThreadRepository(db *badger.DB, log *slog.Logger) ThreadRepository {
	return ThreadRepository{db: db, log: log}
}

func threadKey(rootMessageID uuid.UUID) []byte {
	return []byte(fmt.Sprintf("thread:%s", rootMessageID))
}

func (t ThreadRepository) SaveThread(thread domain.MessageThread) error {
	bytes, err := json.Marshal(thread)
	if err != nil {
		return err
	}
	return t.db.Update(func(txn *badger.Txn) error {
		return txn.Set(threadKey(thread.RootMessageID), bytes)
	})
}

func (t ThreadRepository) FindThread(rootMessageID uuid.UUID) (domain.MessageThread, error) {
	var thread domain.MessageThread
	err := t.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(threadKey(rootMessageID))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return errors.ErrThreadNotFound
			}
			return err
		}
		return item.Value(func(value []byte) error {
			return json.Unmarshal(value, &thread)
		})
	})
	return thread, err
}
