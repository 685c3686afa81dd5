package domain

// Command is a client-originated order carried over the push channel.
type Command interface {
	Conv() ConversationID
}

type SendMessage struct {
	Conversation int64
	Kind         MessageKind
	Text         string
	Attachment   *FileDescriptor
}

func (c SendMessage) Conv() ConversationID {
	return ConversationID(c.Conversation)
}

type TypingStart struct {
	Conversation int64
}

func (c TypingStart) Conv() ConversationID {
	return ConversationID(c.Conversation)
}

type TypingStop struct {
	Conversation int64
}

func (c TypingStop) Conv() ConversationID {
	return ConversationID(c.Conversation)
}
