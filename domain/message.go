// Package domain contains core concepts of the chat client.
// This file defines Message entities and related rules.
// Messages are immutable once confirmed by the server.
package domain

import (
	"time"
)

type MessageID int64

type MessageKind string

const (
	KindText  MessageKind = "text"
	KindFile  MessageKind = "file"
	KindImage MessageKind = "image"
)

// Message represents a server-confirmed chat message.
// The ID is assigned by the server; an in-flight send attempt has no
// Message at all (no fabricated local identifiers).
type Message struct {
	ID           MessageID
	Conversation ConversationID
	Sender       User
	Kind         MessageKind
	Text         string
	File         *FileDescriptor
	CreatedAt    time.Time
}

// Before reports whether m sorts before other in display order,
// which is (CreatedAt, ID) ascending.
func (m Message) Before(other Message) bool {
	if m.CreatedAt.Equal(other.CreatedAt) {
		return m.ID < other.ID
	}
	return m.CreatedAt.Before(other.CreatedAt)
}

// FileDescriptor identifies an uploaded attachment on the server.
type FileDescriptor struct {
	Path     string
	Name     string
	Size     int64
	Checksum string
}
