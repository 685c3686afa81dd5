// Package transport implements the push channel over a websocket.
// The wire format is a JSON envelope {type, payload}; the envelope
// types below are the portal's realtime protocol and must stay stable.
package transport

import (
	"encoding/json"
	"fmt"
	"time"

	"campus-chat/domain"
	"campus-chat/domain/event"
	"campus-chat/errors"
)

// Server -> client event types.
const (
	TypeMessageNew           = "message_new"
	TypeTypingStart          = "typing_start"
	TypeTypingStop           = "typing_stop"
	TypeConversationUpserted = "conversation_upserted"
)

// Client -> server command types.
const (
	TypeMessageSend     = "message_send"
	TypeTypingStartSend = "typing_start"
	TypeTypingStopSend  = "typing_stop"
)

// Envelope is the canonical wire wrapper.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type wireFile struct {
	Path     string `json:"path"`
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	Checksum string `json:"checksum,omitempty"`
}

type wireMessage struct {
	ID             int64     `json:"id"`
	ConversationID int64     `json:"conversation_id"`
	SenderID       int64     `json:"sender_id"`
	SenderName     string    `json:"sender_name"`
	Kind           string    `json:"kind"`
	Text           string    `json:"text,omitempty"`
	File           *wireFile `json:"file,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type wireTyping struct {
	ConversationID int64  `json:"conversation_id"`
	UserID         int64  `json:"user_id"`
	UserName       string `json:"user_name"`
}

type wireConversation struct {
	ID           int64             `json:"id"`
	Name         string            `json:"name"`
	Avatar       string            `json:"avatar,omitempty"`
	Kind         string            `json:"kind"`
	Participants []wireParticipant `json:"participants"`
	Unread       int               `json:"unread,omitempty"`
}

type wireParticipant struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type wireSendMessage struct {
	ConversationID int64     `json:"conversation_id"`
	Kind           string    `json:"kind"`
	Text           string    `json:"text,omitempty"`
	File           *wireFile `json:"file,omitempty"`
}

type wireTypingSignal struct {
	ConversationID int64 `json:"conversation_id"`
}

// EncodeCommand wraps a domain command into its wire envelope.
func EncodeCommand(cmd domain.Command) (Envelope, error) {
	switch c := cmd.(type) {
	case domain.SendMessage:
		payload, err := json.Marshal(wireSendMessage{
			ConversationID: c.Conversation,
			Kind:           string(c.Kind),
			Text:           c.Text,
			File:           fromFileDescriptor(c.Attachment),
		})
		if err != nil {
			return Envelope{}, err
		}
		return Envelope{Type: TypeMessageSend, Payload: payload}, nil
	case domain.TypingStart:
		payload, err := json.Marshal(wireTypingSignal{ConversationID: c.Conversation})
		if err != nil {
			return Envelope{}, err
		}
		return Envelope{Type: TypeTypingStartSend, Payload: payload}, nil
	case domain.TypingStop:
		payload, err := json.Marshal(wireTypingSignal{ConversationID: c.Conversation})
		if err != nil {
			return Envelope{}, err
		}
		return Envelope{Type: TypeTypingStopSend, Payload: payload}, nil
	default:
		return Envelope{}, fmt.Errorf("unsupported command %T", cmd)
	}
}

// DecodeEvent turns a wire envelope into a server event.
func DecodeEvent(env Envelope) (event.ServerEvent, error) {
	switch env.Type {
	case TypeMessageNew:
		var w wireMessage
		if err := json.Unmarshal(env.Payload, &w); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Type, err)
		}
		return event.MessageReceived{Message: toMessage(w)}, nil
	case TypeTypingStart:
		var w wireTyping
		if err := json.Unmarshal(env.Payload, &w); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Type, err)
		}
		return event.TypingStarted{
			Conversation: domain.ConversationID(w.ConversationID),
			User:         domain.User{ID: w.UserID, Name: w.UserName},
		}, nil
	case TypeTypingStop:
		var w wireTyping
		if err := json.Unmarshal(env.Payload, &w); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Type, err)
		}
		return event.TypingStopped{
			Conversation: domain.ConversationID(w.ConversationID),
			User:         domain.User{ID: w.UserID, Name: w.UserName},
		}, nil
	case TypeConversationUpserted:
		var w wireConversation
		if err := json.Unmarshal(env.Payload, &w); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Type, err)
		}
		return event.ConversationUpserted{Conversation: toConversation(w)}, nil
	default:
		return nil, fmt.Errorf("%w: %q", errors.ErrUnknownEventType, env.Type)
	}
}

func toMessage(w wireMessage) domain.Message {
	return domain.Message{
		ID:           domain.MessageID(w.ID),
		Conversation: domain.ConversationID(w.ConversationID),
		Sender:       domain.User{ID: w.SenderID, Name: w.SenderName},
		Kind:         domain.MessageKind(w.Kind),
		Text:         w.Text,
		File:         toFileDescriptor(w.File),
		CreatedAt:    w.CreatedAt,
	}
}

func toConversation(w wireConversation) domain.Conversation {
	participants := make([]domain.User, 0, len(w.Participants))
	for _, p := range w.Participants {
		participants = append(participants, domain.User{ID: p.ID, Name: p.Name})
	}
	return domain.Conversation{
		ID:           domain.ConversationID(w.ID),
		Name:         w.Name,
		Avatar:       w.Avatar,
		Kind:         domain.ConversationKind(w.Kind),
		Participants: participants,
		Unread:       w.Unread,
	}
}

func toFileDescriptor(w *wireFile) *domain.FileDescriptor {
	if w == nil {
		return nil
	}
	return &domain.FileDescriptor{
		Path:     w.Path,
		Name:     w.Name,
		Size:     w.Size,
		Checksum: w.Checksum,
	}
}

func fromFileDescriptor(fd *domain.FileDescriptor) *wireFile {
	if fd == nil {
		return nil
	}
	return &wireFile{
		Path:     fd.Path,
		Name:     fd.Name,
		Size:     fd.Size,
		Checksum: fd.Checksum,
	}
}
