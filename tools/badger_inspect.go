// badger_inspect dumps the chat store as a table, for debugging a local
// instance. Run it against a closed database or a copy: badger holds an
// exclusive lock.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/olekukonko/tablewriter"

	"tripchat/domain"
)

func main() {
	dbPath := flag.String("db", ".data/tripchat", "Path to badger DB")
	// Default scans messages; use room:, thread: or msgid: for the rest.
	prefix := flag.String("prefix", "msg:", "Prefix to scan")
	flag.Parse()

	db, err := badger.Open(badger.DefaultOptions(*dbPath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Type", "Timestamp", "Entity ID", "Status", "Detail"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(*prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			rawKey := string(item.Key())

			err := item.Value(func(v []byte) error {
				row, ok := toRow(rawKey, v)
				if !ok {
					fmt.Printf("Cannot decode key %s\n", rawKey)
					return nil
				}
				table.Append(row)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		log.Fatal(err)
	}

	table.Render()
}

func toRow(key string, value []byte) ([]string, bool) {
	switch {
	case strings.HasPrefix(key, "room:"):
		var room domain.Room
		if err := json.Unmarshal(value, &room); err != nil {
			return nil, false
		}
		return []string{
			key, "ROOM",
			room.CreatedAt.Format("15:04:05"),
			shortID(room.ID.String()),
			string(room.Status),
			fmt.Sprintf("%s v%d %d participants", room.Type, room.Version, len(room.Participants)),
		}, true
	case strings.HasPrefix(key, "thread:"):
		var thread domain.MessageThread
		if err := json.Unmarshal(value, &thread); err != nil {
			return nil, false
		}
		return []string{
			key, "THREAD",
			thread.CreatedAt.Format("15:04:05"),
			shortID(thread.RootMessageID.String()),
			"",
			fmt.Sprintf("%d replies", len(thread.Replies)),
		}, true
	default:
		var message domain.Message
		if err := json.Unmarshal(value, &message); err != nil {
			return nil, false
		}
		detail := message.Content.Text
		if message.AIContext != nil {
			detail += fmt.Sprintf(" (confidence %.2f)", message.AIContext.Confidence)
		}
		return []string{
			key, string(message.Type),
			message.CreatedAt.Format("15:04:05"),
			shortID(message.ID.String()),
			string(message.Status),
			detail,
		}, true
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
