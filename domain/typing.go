package domain

import "time"

// TypingPresence is the advisory signal that a user is composing in a
// conversation. At most one entry exists per (conversation, user).
// It is removed on a stop event, on any new message from that user in
// that conversation, or after a client-side TTL.
type TypingPresence struct {
	Conversation ConversationID
	User         User
	StartedAt    time.Time
}
