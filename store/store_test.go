package store

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"campus-chat/domain"
)

func testMessage(id int64, conv domain.ConversationID, at time.Time) domain.Message {
	return domain.Message{
		ID:           domain.MessageID(id),
		Conversation: conv,
		Sender:       domain.User{ID: 7, Name: "Alice"},
		Kind:         domain.KindText,
		Text:         "hello",
		CreatedAt:    at,
	}
}

func TestChatStore_AppendMessage_Idempotent(t *testing.T) {
	req := require.New(t)
	s := NewChatStore(slog.Default(), 10*time.Second)
	conv := domain.ConversationID(42)
	msg := testMessage(901, conv, time.Now())

	req.True(s.AppendMessage(conv, msg))
	req.False(s.AppendMessage(conv, msg))

	req.Len(s.MessagesFor(conv), 1)
}

func TestChatStore_AppendMessage_OutOfOrderArrival(t *testing.T) {
	req := require.New(t)
	s := NewChatStore(slog.Default(), 10*time.Second)
	conv := domain.ConversationID(42)
	base := time.Now()

	m1 := testMessage(1, conv, base)
	m2 := testMessage(2, conv, base.Add(time.Second))

	// m2 arrives before m1
	s.AppendMessage(conv, m2)
	s.AppendMessage(conv, m1)

	messages := s.MessagesFor(conv)
	req.Len(messages, 2)
	req.Equal(domain.MessageID(1), messages[0].ID)
	req.Equal(domain.MessageID(2), messages[1].ID)
}

func TestChatStore_AppendMessage_SameTimestampOrdersById(t *testing.T) {
	req := require.New(t)
	s := NewChatStore(slog.Default(), 10*time.Second)
	conv := domain.ConversationID(1)
	at := time.Now()

	s.AppendMessage(conv, testMessage(5, conv, at))
	s.AppendMessage(conv, testMessage(3, conv, at))

	messages := s.MessagesFor(conv)
	req.Equal(domain.MessageID(3), messages[0].ID)
	req.Equal(domain.MessageID(5), messages[1].ID)
}

func TestChatStore_PrependHistoryPage_NoDuplicates(t *testing.T) {
	req := require.New(t)
	s := NewChatStore(slog.Default(), 10*time.Second)
	conv := domain.ConversationID(42)
	base := time.Now()

	live := testMessage(100, conv, base.Add(time.Minute))
	s.AppendMessage(conv, live)

	// Page is most-recent-first and overlaps with the live message.
	page := []domain.Message{
		live,
		testMessage(99, conv, base.Add(30*time.Second)),
		testMessage(98, conv, base),
	}
	added := s.PrependHistoryPage(conv, page)
	req.Equal(2, added)

	messages := s.MessagesFor(conv)
	req.Len(messages, 3)
	req.Equal(domain.MessageID(98), messages[0].ID)
	req.Equal(domain.MessageID(99), messages[1].ID)
	req.Equal(domain.MessageID(100), messages[2].ID)
	for i := 1; i < len(messages); i++ {
		req.False(messages[i].Before(messages[i-1]), "display order must be chronological")
	}
}

func TestChatStore_PaginationScenario(t *testing.T) {
	req := require.New(t)
	s := NewChatStore(slog.Default(), 10*time.Second)
	conv := domain.ConversationID(42)
	base := time.Now()

	// First page: 50 messages, most-recent-first.
	page1 := make([]domain.Message, 0, 50)
	for i := 0; i < 50; i++ {
		page1 = append(page1, testMessage(int64(100-i), conv, base.Add(-time.Duration(i)*time.Minute)))
	}
	s.PrependHistoryPage(conv, page1)
	req.Equal(50, s.Count(conv))

	// Second, shorter page: 12 older messages.
	page2 := make([]domain.Message, 0, 12)
	for i := 0; i < 12; i++ {
		page2 = append(page2, testMessage(int64(50-i), conv, base.Add(-time.Duration(50+i)*time.Minute)))
	}
	s.PrependHistoryPage(conv, page2)
	req.Equal(62, s.Count(conv))

	messages := s.MessagesFor(conv)
	for i := 1; i < len(messages); i++ {
		req.False(messages[i].Before(messages[i-1]))
	}
}

func TestChatStore_SetTyping_OneEntryPerUser(t *testing.T) {
	req := require.New(t)
	s := NewChatStore(slog.Default(), 10*time.Second)
	conv := domain.ConversationID(1)
	bob := domain.User{ID: 9, Name: "Bob"}

	s.SetTyping(conv, bob, true)
	s.SetTyping(conv, bob, true)
	req.Len(s.TypingUsersFor(conv), 1)

	s.SetTyping(conv, bob, false)
	req.Empty(s.TypingUsersFor(conv))
}

func TestChatStore_MessageClearsSenderTyping(t *testing.T) {
	req := require.New(t)
	s := NewChatStore(slog.Default(), 10*time.Second)
	conv := domain.ConversationID(1)
	alice := domain.User{ID: 7, Name: "Alice"}

	s.SetTyping(conv, alice, true)
	req.Len(s.TypingUsersFor(conv), 1)

	// Any message from Alice ends her typing presence.
	s.AppendMessage(conv, testMessage(1, conv, time.Now()))
	req.Empty(s.TypingUsersFor(conv))
}

func TestChatStore_TypingTTL(t *testing.T) {
	req := require.New(t)
	s := NewChatStore(slog.Default(), 5*time.Second)
	conv := domain.ConversationID(1)
	bob := domain.User{ID: 9, Name: "Bob"}

	now := time.Now()
	s.now = func() time.Time { return now }
	s.SetTyping(conv, bob, true)
	req.Len(s.TypingUsersFor(conv), 1)

	// The stop event never arrives; the entry decays on its own.
	s.now = func() time.Time { return now.Add(6 * time.Second) }
	req.Empty(s.TypingUsersFor(conv))
}

func TestChatStore_UnreadCounter(t *testing.T) {
	req := require.New(t)
	s := NewChatStore(slog.Default(), 10*time.Second)
	conv := domain.ConversationID(3)
	s.UpsertConversation(domain.Conversation{ID: conv, Name: "Maths", Kind: domain.Group})

	s.AppendMessage(conv, testMessage(1, conv, time.Now()))
	s.AppendMessage(conv, testMessage(2, conv, time.Now().Add(time.Second)))

	c, ok := s.ConversationFor(conv)
	req.True(ok)
	req.Equal(2, c.Unread)

	s.ClearUnread(conv)
	c, _ = s.ConversationFor(conv)
	req.Zero(c.Unread)

	// Re-upserting without a counter keeps the local one.
	s.AppendMessage(conv, testMessage(3, conv, time.Now().Add(2*time.Second)))
	s.UpsertConversation(domain.Conversation{ID: conv, Name: "Maths (renamed)", Kind: domain.Group})
	c, _ = s.ConversationFor(conv)
	req.Equal(1, c.Unread)
	req.Equal("Maths (renamed)", c.Name)
}

func TestChatStore_SubscribeNotifiesTouchedConversation(t *testing.T) {
	req := require.New(t)
	s := NewChatStore(slog.Default(), 10*time.Second)
	conv := domain.ConversationID(8)

	var touched []domain.ConversationID
	s.Subscribe(func(id domain.ConversationID) {
		touched = append(touched, id)
	})

	s.AppendMessage(conv, testMessage(1, conv, time.Now()))
	req.Equal([]domain.ConversationID{conv}, touched)
}
