package domain

type ConversationID int64

type ConversationKind string

const (
	Direct ConversationKind = "direct"
	Group  ConversationKind = "group"
)

type User struct {
	ID   int64
	Name string
}

// Conversation is a chat thread between portal users.
// Exactly one Conversation exists per ID; a direct conversation has
// exactly two participants. Conversations are never deleted locally,
// archival is a server concern.
type Conversation struct {
	ID           ConversationID
	Name         string
	Avatar       string
	Kind         ConversationKind
	Participants []User
	Unread       int
}

// NewConversation is the creation request sent to the server.
type NewConversation struct {
	Name         string           `validate:"required"`
	Kind         ConversationKind `validate:"required,oneof=direct group"`
	Participants []int64          `validate:"required,min=1"`
}
