// Package event defines the server-originated events delivered on the
// push channel. Events carry server-assigned identifiers; the client
// never invents one.
package event

import (
	"campus-chat/domain"
)

type ServerEvent interface {
	Conv() domain.ConversationID
}

type MessageReceived struct {
	Message domain.Message
}

func (e MessageReceived) Conv() domain.ConversationID {
	return e.Message.Conversation
}

type TypingStarted struct {
	Conversation domain.ConversationID
	User         domain.User
}

func (e TypingStarted) Conv() domain.ConversationID {
	return e.Conversation
}

type TypingStopped struct {
	Conversation domain.ConversationID
	User         domain.User
}

func (e TypingStopped) Conv() domain.ConversationID {
	return e.Conversation
}

type ConversationUpserted struct {
	Conversation domain.Conversation
}

func (e ConversationUpserted) Conv() domain.ConversationID {
	return e.Conversation.ID
}
