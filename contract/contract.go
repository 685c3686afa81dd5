//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"campus-chat/domain"
	"campus-chat/domain/event"
	"context"
	"io"
	"reflect"
)

// EventSink consumes server events in the order they were received.
type EventSink interface {
	Consume(ctx context.Context, e event.ServerEvent) error
}

// PushChannel is one logical persistent connection to the server.
// Implementations own the transport; they never queue or retry.
type PushChannel interface {
	Dial(ctx context.Context) error
	Send(ctx context.Context, cmd domain.Command) error
	Receive(ctx context.Context) (event.ServerEvent, error)
	Close() error
}

// CommandSender is the outbound primitive exposed by the connection
// manager. Send fails fast when the channel is unhealthy; fallback is
// the caller's business.
type CommandSender interface {
	Send(ctx context.Context, cmd domain.Command) error
	IsConnected() bool
}

// ChatAPI is the HTTP collaborator: history pages, the send fallback,
// uploads, read receipts and the conversation-creation flow.
type ChatAPI interface {
	History(ctx context.Context, conv domain.ConversationID, offset, limit int) ([]domain.Message, error)
	SendText(ctx context.Context, cmd domain.SendMessage) (domain.Message, error)
	Upload(ctx context.Context, conv domain.ConversationID, name string, body io.Reader, size int64) (domain.FileDescriptor, error)
	MarkRead(ctx context.Context, conv domain.ConversationID) error
	AvailableUsers(ctx context.Context) ([]domain.User, error)
	CreateConversation(ctx context.Context, req domain.NewConversation) (domain.Conversation, error)
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes, avoiding the need
// for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}
