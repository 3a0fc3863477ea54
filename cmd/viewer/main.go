// Command viewer dumps stored chat data as tables without stopping the
// running server.
package main

import (
	"chat-hub/domain"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
)

func main() {
	dbPath := flag.String("db", "data/badger", "Path to badger DB")
	section := flag.String("section", "all", "Section to dump: users, rooms, messages, all")
	flag.Parse()

	// BypassLockGuard allows opening while the server process holds the lock.
	opts := badger.DefaultOptions(*dbPath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	if *section == "users" || *section == "all" {
		printHeader("USERS")
		dumpUsers(db)
	}
	if *section == "rooms" || *section == "all" {
		printHeader("ROOMS")
		dumpRooms(db)
	}
	if *section == "messages" || *section == "all" {
		printHeader("ROOM MESSAGES")
		dumpRoomMessages(db)
	}
}

func printHeader(title string) {
	fmt.Println(color.New(color.BgBlack, color.FgGreen).Render(" " + title + " "))
}

func newTable(headers []string) *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(headers)
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
	return table
}

func dumpUsers(db *badger.DB) {
	table := newTable([]string{"ID", "Username", "Email", "Status", "Created"})
	err := scan(db, "user:", func(key string, val []byte) {
		var user domain.User
		if err := json.Unmarshal(val, &user); err != nil {
			fmt.Printf("Error unmarshaling key %s: %v\n", key, err)
			return
		}
		table.Append([]string{
			shortID(string(user.ID)),
			user.Username,
			user.Email,
			user.Status,
			user.CreatedAt.Format("2006-01-02 15:04"),
		})
	})
	if err != nil {
		log.Fatal(err)
	}
	table.Render()
}

func dumpRooms(db *badger.DB) {
	table := newTable([]string{"ID", "Number", "Name", "Private", "Participants", "Updated"})
	err := scan(db, "room:", func(key string, val []byte) {
		var room domain.Room
		if err := json.Unmarshal(val, &room); err != nil {
			fmt.Printf("Error unmarshaling key %s: %v\n", key, err)
			return
		}
		table.Append([]string{
			shortID(string(room.ID)),
			fmt.Sprintf("%d", room.Number),
			room.Name,
			fmt.Sprintf("%t", room.IsPrivate),
			fmt.Sprintf("%d", len(room.Participants)),
			room.UpdatedAt.Format("15:04:05"),
		})
	})
	if err != nil {
		log.Fatal(err)
	}
	table.Render()
}

func dumpRoomMessages(db *badger.DB) {
	table := newTable([]string{"Key", "Room", "Sender", "Time", "Text"})
	err := scan(db, "roommsg:", func(key string, val []byte) {
		var msg domain.RoomMessage
		if err := json.Unmarshal(val, &msg); err != nil {
			fmt.Printf("Error unmarshaling key %s: %v\n", key, err)
			return
		}
		table.Append([]string{
			shortID(key),
			shortID(string(msg.RoomID)),
			msg.SenderName,
			msg.CreatedAt.Format("15:04:05"),
			msg.Text,
		})
	})
	if err != nil {
		log.Fatal(err)
	}
	table.Render()
}

// scan walks one key prefix, skipping secondary indexes.
func scan(db *badger.DB, prefix string, visit func(key string, val []byte)) error {
	return db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			key := string(item.Key())
			if strings.Contains(key, "idx:") {
				continue
			}
			err := item.Value(func(v []byte) error {
				visit(key, v)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
