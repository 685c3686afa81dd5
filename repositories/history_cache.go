//go:generate go run go.uber.org/mock/mockgen -source=history_cache.go -destination=../mocks/mock_history_cache.go -package=mocks
// Package repositories persists confirmed messages locally so a
// conversation reopens instantly, connected or not. The cache is a
// convenience copy; the server stays authoritative.
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"

	"campus-chat/domain"
)

type IHistoryCache interface {
	StoreMessage(msg domain.Message) error
	Recent(conv domain.ConversationID, limit int) ([]domain.Message, error)
}

type HistoryCache struct {
	db  *badger.DB
	log *slog.Logger
}

func NewHistoryCache(db *badger.DB, log *slog.Logger) HistoryCache {
	return HistoryCache{db: db, log: log}
}

type cachedMessage struct {
	ID           int64                  `json:"id"`
	Conversation int64                  `json:"conversation"`
	SenderID     int64                  `json:"sender_id"`
	SenderName   string                 `json:"sender_name"`
	Kind         string                 `json:"kind"`
	Text         string                 `json:"text,omitempty"`
	File         *domain.FileDescriptor `json:"file,omitempty"`
	At           int64                  `json:"at"`
}

// StoreMessage persists a message in BadgerDB.
// The key is formatted as "msg:{conversation}:{timestamp_padded}:{id}" to:
//  1. Ensure chronological sorting using 19-digit zero padding
//     (lexicographical order).
//  2. Keep the server id in the key as a collision disconnector if two
//     messages share the same nanosecond.
func (c HistoryCache) StoreMessage(msg domain.Message) error {
	key := fmt.Sprintf("msg:%d:%019d:%d",
		msg.Conversation,
		msg.CreatedAt.UnixNano(),
		msg.ID,
	)
	value, err := json.Marshal(fromMessage(msg))
	if err != nil {
		return err
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
}

// Recent returns up to limit cached messages for a conversation,
// most-recent-first, the same shape a server history page has, so the
// result feeds straight into the store's page merge.
func (c HistoryCache) Recent(conv domain.ConversationID, limit int) ([]domain.Message, error) {
	var raw [][]byte
	err := c.db.View(func(txn *badger.Txn) error {
		prefixStr := fmt.Sprintf("msg:%d:", conv)
		prefix := []byte(prefixStr)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		// Seek past the newest possible key for this conversation,
		// then walk backwards.
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
	for _, b := range raw {
		var cached cachedMessage
		if err := json.Unmarshal(b, &cached); err != nil {
			return nil, err
		}
		messages = append(messages, toMessage(cached))
	}
	return messages, nil
}

func fromMessage(msg domain.Message) cachedMessage {
	return cachedMessage{
		ID:           int64(msg.ID),
		Conversation: int64(msg.Conversation),
		SenderID:     msg.Sender.ID,
		SenderName:   msg.Sender.Name,
		Kind:         string(msg.Kind),
		Text:         msg.Text,
		File:         msg.File,
		At:           msg.CreatedAt.UnixNano(),
	}
}

func toMessage(cached cachedMessage) domain.Message {
	return domain.Message{
		ID:           domain.MessageID(cached.ID),
		Conversation: domain.ConversationID(cached.Conversation),
		Sender:       domain.User{ID: cached.SenderID, Name: cached.SenderName},
		Kind:         domain.MessageKind(cached.Kind),
		Text:         cached.Text,
		File:         cached.File,
		CreatedAt:    time.Unix(0, cached.At).UTC(),
	}
}
