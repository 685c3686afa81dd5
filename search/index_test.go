package search

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"campus-chat/domain"
)

func newTestIndex(t *testing.T) *Index {
	index, err := NewInMemoryIndex(slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })
	return index
}

func indexedMsg(id int64, conv int64, sender, text string) domain.Message {
	return domain.Message{
		ID:           domain.MessageID(id),
		Conversation: domain.ConversationID(conv),
		Sender:       domain.User{ID: 7, Name: sender},
		Kind:         domain.KindText,
		Text:         text,
		CreatedAt:    time.Now(),
	}
}

func TestSearch_MatchesIndexedText(t *testing.T) {
	req := require.New(t)
	index := newTestIndex(t)

	req.NoError(index.IndexMessage(indexedMsg(1, 42, "Alice", "homework is due friday")))
	req.NoError(index.IndexMessage(indexedMsg(2, 42, "Bob", "lunch at noon")))

	hits, err := index.Search(context.Background(), ParseQuery("/find homework"))
	req.NoError(err)
	req.Len(hits, 1)
	req.Equal(domain.MessageID(1), hits[0].MessageID)
	req.Equal(domain.ConversationID(42), hits[0].Conversation)
	req.Equal("Alice", hits[0].Sender)
}

func TestSearch_ConversationFilter(t *testing.T) {
	req := require.New(t)
	index := newTestIndex(t)

	req.NoError(index.IndexMessage(indexedMsg(1, 42, "Alice", "exam on monday")))
	req.NoError(index.IndexMessage(indexedMsg(2, 43, "Bob", "exam postponed")))

	hits, err := index.Search(context.Background(), ParseQuery("/find exam --conversation 43"))
	req.NoError(err)
	req.Len(hits, 1)
	req.Equal(domain.ConversationID(43), hits[0].Conversation)
}

func TestSearch_ReindexingSameIdReplaces(t *testing.T) {
	req := require.New(t)
	index := newTestIndex(t)

	req.NoError(index.IndexMessage(indexedMsg(1, 42, "Alice", "draft")))
	req.NoError(index.IndexMessage(indexedMsg(1, 42, "Alice", "final answer")))

	hits, err := index.Search(context.Background(), ParseQuery("/find draft"))
	req.NoError(err)
	req.Empty(hits)

	hits, err = index.Search(context.Background(), ParseQuery("/find final"))
	req.NoError(err)
	req.Len(hits, 1)
}

func TestIndexMessage_FileMessagesSearchableByName(t *testing.T) {
	req := require.New(t)
	index := newTestIndex(t)

	msg := indexedMsg(1, 42, "Alice", "")
	msg.Kind = domain.KindFile
	msg.File = &domain.FileDescriptor{Path: "/uploads/fractions.pdf", Name: "fractions.pdf", Size: 10}
	req.NoError(index.IndexMessage(msg))

	hits, err := index.Search(context.Background(), ParseQuery("/find fractions"))
	req.NoError(err)
	req.Len(hits, 1)
}

func TestParseQuery(t *testing.T) {
	req := require.New(t)

	query := ParseQuery("/find homework due --conversation 12 --limit 5")
	req.Equal("homework due", query.Terms)
	req.EqualValues(12, query.Conversation)
	req.Equal(5, query.Limit)

	query = ParseQuery("/find just terms")
	req.Equal("just terms", query.Terms)
	req.Zero(query.Conversation)
	req.Equal(defaultLimit, query.Limit)

	// Garbage flag values fall back to defaults.
	query = ParseQuery("/find x --limit nope --conversation later")
	req.Equal("x", query.Terms)
	req.Zero(query.Conversation)
	req.Equal(defaultLimit, query.Limit)
}
