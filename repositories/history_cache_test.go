package repositories

import (
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"

	"campus-chat/domain"
)

func newTestCache(t *testing.T) HistoryCache {
	options := badger.DefaultOptions(t.TempDir()).WithLogger(nil)
	db, err := badger.Open(options)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewHistoryCache(db, slog.Default())
}

func cachedMsg(id int64, conv int64, text string, at time.Time) domain.Message {
	return domain.Message{
		ID:           domain.MessageID(id),
		Conversation: domain.ConversationID(conv),
		Sender:       domain.User{ID: 7, Name: "Alice"},
		Kind:         domain.KindText,
		Text:         text,
		CreatedAt:    at,
	}
}

func TestRecent_MostRecentFirst(t *testing.T) {
	req := require.New(t)
	cache := newTestCache(t)
	base := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

	// Stored out of order on purpose.
	req.NoError(cache.StoreMessage(cachedMsg(2, 42, "second", base.Add(time.Minute))))
	req.NoError(cache.StoreMessage(cachedMsg(1, 42, "first", base)))
	req.NoError(cache.StoreMessage(cachedMsg(3, 42, "third", base.Add(2*time.Minute))))

	messages, err := cache.Recent(42, 10)
	req.NoError(err)
	req.Len(messages, 3)
	req.Equal("third", messages[0].Text)
	req.Equal("second", messages[1].Text)
	req.Equal("first", messages[2].Text)
}

func TestRecent_HonoursLimit(t *testing.T) {
	req := require.New(t)
	cache := newTestCache(t)
	base := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

	for i := int64(1); i <= 10; i++ {
		req.NoError(cache.StoreMessage(cachedMsg(i, 42, "msg", base.Add(time.Duration(i)*time.Second))))
	}

	messages, err := cache.Recent(42, 4)
	req.NoError(err)
	req.Len(messages, 4)
	req.Equal(domain.MessageID(10), messages[0].ID)
}

func TestRecent_IsolatesConversations(t *testing.T) {
	req := require.New(t)
	cache := newTestCache(t)
	now := time.Now()

	req.NoError(cache.StoreMessage(cachedMsg(1, 42, "physics", now)))
	req.NoError(cache.StoreMessage(cachedMsg(2, 43, "history", now)))

	messages, err := cache.Recent(42, 10)
	req.NoError(err)
	req.Len(messages, 1)
	req.Equal(domain.ConversationID(42), messages[0].Conversation)
}

func TestStoreMessage_SameMessageTwiceIsOneEntry(t *testing.T) {
	req := require.New(t)
	cache := newTestCache(t)
	msg := cachedMsg(1, 42, "hi", time.Now())

	req.NoError(cache.StoreMessage(msg))
	req.NoError(cache.StoreMessage(msg))

	messages, err := cache.Recent(42, 10)
	req.NoError(err)
	req.Len(messages, 1)
}

func TestStoreMessage_RoundTripsDescriptor(t *testing.T) {
	req := require.New(t)
	cache := newTestCache(t)

	msg := cachedMsg(1, 42, "", time.Date(2025, 3, 14, 9, 26, 53, 123456789, time.UTC))
	msg.Kind = domain.KindFile
	msg.File = &domain.FileDescriptor{Path: "/uploads/h.pdf", Name: "h.pdf", Size: 99, Checksum: "ab12"}
	req.NoError(cache.StoreMessage(msg))

	messages, err := cache.Recent(42, 1)
	req.NoError(err)
	req.Len(messages, 1)
	req.Equal(msg, messages[0])
}
