// Package store holds the authoritative in-memory chat state:
// conversations, per-conversation message lists and typing sets.
// It is a pure state container with subscription notification; no
// network or timer logic lives here.
package store

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"campus-chat/domain"
)

// ChatStore is safe for concurrent use. Messages are held in
// reverse-chronological order internally so history pages land at the
// tail; selectors re-sort for display.
type ChatStore struct {
	mu            sync.RWMutex
	log           *slog.Logger
	typingTTL     time.Duration
	now           func() time.Time
	conversations map[domain.ConversationID]domain.Conversation
	messages      map[domain.ConversationID][]domain.Message
	known         map[domain.ConversationID]map[domain.MessageID]struct{}
	typing        map[domain.ConversationID]map[int64]domain.TypingPresence
	subscribers   []func(domain.ConversationID)
}

func NewChatStore(log *slog.Logger, typingTTL time.Duration) *ChatStore {
	return &ChatStore{
		log:           log,
		typingTTL:     typingTTL,
		now:           time.Now,
		conversations: make(map[domain.ConversationID]domain.Conversation),
		messages:      make(map[domain.ConversationID][]domain.Message),
		known:         make(map[domain.ConversationID]map[domain.MessageID]struct{}),
		typing:        make(map[domain.ConversationID]map[int64]domain.TypingPresence),
	}
}

// Subscribe registers a notification callback invoked after every
// mutation with the touched conversation id. Callbacks run outside the
// store lock and must not assume any ordering across conversations.
func (s *ChatStore) Subscribe(fn func(domain.ConversationID)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

func (s *ChatStore) notify(conv domain.ConversationID) {
	s.mu.RLock()
	subs := make([]func(domain.ConversationID), len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.RUnlock()
	for _, fn := range subs {
		fn(conv)
	}
}

// UpsertConversation inserts or replaces a conversation by id, keeping
// the locally tracked unread counter when the incoming value has none.
func (s *ChatStore) UpsertConversation(conv domain.Conversation) {
	s.mu.Lock()
	if prev, ok := s.conversations[conv.ID]; ok && conv.Unread == 0 {
		conv.Unread = prev.Unread
	}
	s.conversations[conv.ID] = conv
	s.mu.Unlock()
	s.notify(conv.ID)
}

// AppendMessage inserts a message if its id is not already present in
// the conversation, keeping the internal reverse-chronological order.
// It is a no-op for a known id; this idempotency is the
// duplication-prevention contract the whole client depends on.
// A message also clears its sender's typing presence and bumps the
// conversation's unread counter.
// The boolean reports whether the message was actually inserted.
func (s *ChatStore) AppendMessage(conv domain.ConversationID, msg domain.Message) bool {
	s.mu.Lock()
	ids, ok := s.known[conv]
	if !ok {
		ids = make(map[domain.MessageID]struct{})
		s.known[conv] = ids
	}
	if _, dup := ids[msg.ID]; dup {
		s.mu.Unlock()
		return false
	}
	ids[msg.ID] = struct{}{}

	list := s.messages[conv]
	// Insertion point in reverse-chronological order: newest first.
	idx := sort.Search(len(list), func(i int) bool {
		return list[i].Before(msg)
	})
	list = append(list, domain.Message{})
	copy(list[idx+1:], list[idx:])
	list[idx] = msg
	s.messages[conv] = list

	if set, ok := s.typing[conv]; ok {
		delete(set, msg.Sender.ID)
	}
	if c, ok := s.conversations[conv]; ok {
		c.Unread++
		s.conversations[conv] = c
	}
	s.mu.Unlock()
	s.notify(conv)
	return true
}

// PrependHistoryPage merges an older page fetched over HTTP. Pages
// arrive most-recent-first; already-present ids are skipped so a
// re-fetched overlap cannot create duplicates. It returns the number
// of messages actually added.
func (s *ChatStore) PrependHistoryPage(conv domain.ConversationID, page []domain.Message) int {
	s.mu.Lock()
	ids, ok := s.known[conv]
	if !ok {
		ids = make(map[domain.MessageID]struct{})
		s.known[conv] = ids
	}
	added := 0
	list := s.messages[conv]
	for _, msg := range page {
		if _, dup := ids[msg.ID]; dup {
			continue
		}
		ids[msg.ID] = struct{}{}
		list = append(list, msg)
		added++
	}
	// A page can interleave with messages that arrived over the push
	// channel while the fetch was in flight; restore the invariant.
	sort.SliceStable(list, func(i, j int) bool {
		return list[j].Before(list[i])
	})
	s.messages[conv] = list
	s.mu.Unlock()
	if added > 0 {
		s.notify(conv)
	}
	return added
}

// SetTyping adds or removes a typing presence for (conversation, user).
func (s *ChatStore) SetTyping(conv domain.ConversationID, user domain.User, active bool) {
	s.mu.Lock()
	set, ok := s.typing[conv]
	if !ok {
		set = make(map[int64]domain.TypingPresence)
		s.typing[conv] = set
	}
	if active {
		if _, already := set[user.ID]; !already {
			set[user.ID] = domain.TypingPresence{
				Conversation: conv,
				User:         user,
				StartedAt:    s.now(),
			}
		}
	} else {
		delete(set, user.ID)
	}
	s.mu.Unlock()
	s.notify(conv)
}

// ClearUnread resets the unread counter after a read receipt.
func (s *ChatStore) ClearUnread(conv domain.ConversationID) {
	s.mu.Lock()
	if c, ok := s.conversations[conv]; ok && c.Unread != 0 {
		c.Unread = 0
		s.conversations[conv] = c
		s.mu.Unlock()
		s.notify(conv)
		return
	}
	s.mu.Unlock()
}

// MessagesFor returns the conversation's messages sorted for display,
// (timestamp, id) ascending. The slice is a copy.
func (s *ChatStore) MessagesFor(conv domain.ConversationID) []domain.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.messages[conv]
	out := make([]domain.Message, len(list))
	for i, msg := range list {
		out[len(list)-1-i] = msg
	}
	return out
}

// Count reports how many messages are held for a conversation; the
// synchronizer uses it as the offset for backward pagination.
func (s *ChatStore) Count(conv domain.ConversationID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages[conv])
}

// TypingUsersFor returns the active typing presences for a
// conversation. Entries older than the TTL are filtered out, a
// defensive cleanup for a lost stop event.
func (s *ChatStore) TypingUsersFor(conv domain.ConversationID) []domain.TypingPresence {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set := s.typing[conv]
	if len(set) == 0 {
		return nil
	}
	cutoff := s.now().Add(-s.typingTTL)
	var out []domain.TypingPresence
	for _, p := range set {
		if s.typingTTL > 0 && p.StartedAt.Before(cutoff) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].User.ID < out[j].User.ID
	})
	return out
}

// ConversationFor returns a conversation by id.
func (s *ChatStore) ConversationFor(id domain.ConversationID) (domain.Conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conv, ok := s.conversations[id]
	return conv, ok
}

// Conversations returns all known conversations sorted by id.
func (s *ChatStore) Conversations() []domain.Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Conversation, 0, len(s.conversations))
	for _, c := range s.conversations {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out
}
