// Package syncer merges push-delivered events and HTTP-fetched pages
// into the chat store without duplication or reordering, and owns the
// send-with-fallback policy.
package syncer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"campus-chat/contract"
	"campus-chat/domain"
	"campus-chat/domain/event"
	"campus-chat/errors"
	"campus-chat/moderation"
	"campus-chat/store"
)

var validate = validator.New()

// SendRequest is what the composer hands over: a conversation and a
// text, a file path, or both.
type SendRequest struct {
	Conversation int64 `validate:"required,gt=0"`
	Text         string
	FilePath     string
}

type Option func(*Synchronizer)

// WithModerator masks blacklisted words in outbound text.
func WithModerator(m *moderation.Moderator) Option {
	return func(s *Synchronizer) { s.moderator = m }
}

// WithMaxAttachmentSize overrides the client-side upload cap.
func WithMaxAttachmentSize(limit int64) Option {
	return func(s *Synchronizer) { s.maxFileSize = limit }
}

// WithArchives registers sinks fed with every message that enters the
// store, whichever channel delivered it (local cache, search index).
func WithArchives(sinks ...contract.EventSink) Option {
	return func(s *Synchronizer) { s.archives = append(s.archives, sinks...) }
}

// Synchronizer coordinates the store, the push channel and the HTTP
// collaborator. It holds no mutex of its own: the store serializes all
// state, and per-conversation pagination is serialized by the caller.
type Synchronizer struct {
	log         *slog.Logger
	store       *store.ChatStore
	sender      contract.CommandSender
	api         contract.ChatAPI
	moderator   *moderation.Moderator
	archives    []contract.EventSink
	maxFileSize int64
}

func NewSynchronizer(log *slog.Logger, st *store.ChatStore, sender contract.CommandSender,
	api contract.ChatAPI, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		log:         log,
		store:       st,
		sender:      sender,
		api:         api,
		maxFileSize: defaultMaxAttachmentSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send implements the outbound protocol:
//  1. an attachment is uploaded first over HTTP; upload failure aborts
//     the whole send (files never travel on the push channel);
//  2. the message command is attempted on the push channel; on success
//     nothing is written to the store, the authoritative copy arrives
//     on the event path and is appended then;
//  3. on push failure the HTTP fallback is used and its authoritative
//     response appended directly;
//  4. when both fail the error reaches the caller and no partial state
//     is written anywhere.
func (s *Synchronizer) Send(ctx context.Context, req SendRequest) error {
	if err := validate.Struct(req); err != nil {
		return err
	}
	if req.Text == "" && req.FilePath == "" {
		return errors.ErrEmptyMessage
	}

	text := req.Text
	if s.moderator != nil && text != "" {
		sanitized, hits := s.moderator.Sanitize(text)
		if hits > 0 {
			s.log.Info("Outbound message sanitized",
				"conversation", req.Conversation,
				"hits", hits,
				"lang", moderation.Language(text))
			text = sanitized
		}
	}

	kind := domain.KindText
	var attachment *domain.FileDescriptor
	if req.FilePath != "" {
		fd, detected, err := s.uploadAttachment(ctx, domain.ConversationID(req.Conversation), req.FilePath)
		if err != nil {
			return fmt.Errorf("attachment: %w", err)
		}
		attachment = fd
		kind = detected
	}

	cmd := domain.SendMessage{
		Conversation: req.Conversation,
		Kind:         kind,
		Text:         text,
		Attachment:   attachment,
	}

	// Correlates the push attempt and its fallback in the logs.
	attempt := uuid.New()

	if err := s.sender.Send(ctx, cmd); err == nil {
		s.log.Debug("Message sent on push channel", "attempt", attempt, "conversation", req.Conversation)
		return nil
	} else {
		s.log.Debug("Push send failed, falling back to HTTP", "attempt", attempt, "error", err)
	}

	created, err := s.api.SendText(ctx, cmd)
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrSendFailed, err)
	}
	s.record(ctx, created)
	s.log.Debug("Message sent on fallback channel", "attempt", attempt, "id", created.ID)
	return nil
}

// Consume applies server events to the store in receipt order,
// making the synchronizer the connection manager's event sink.
// Append is idempotent by id, so a push echo of a message already
// appended by the fallback path is a no-op.
func (s *Synchronizer) Consume(ctx context.Context, e event.ServerEvent) error {
	switch evt := e.(type) {
	case event.MessageReceived:
		s.record(ctx, evt.Message)
	case event.TypingStarted:
		s.store.SetTyping(evt.Conversation, evt.User, true)
	case event.TypingStopped:
		s.store.SetTyping(evt.Conversation, evt.User, false)
	case event.ConversationUpserted:
		s.store.UpsertConversation(evt.Conversation)
	default:
		// A protocol addition must not poison the pump.
		s.log.Debug("Ignoring server event", "type", fmt.Sprintf("%T", e))
	}
	return nil
}

func (s *Synchronizer) record(ctx context.Context, msg domain.Message) {
	if !s.store.AppendMessage(msg.Conversation, msg) {
		return
	}
	for _, sink := range s.archives {
		if err := sink.Consume(ctx, event.MessageReceived{Message: msg}); err != nil {
			s.log.Error("Archive sink failed", "id", msg.ID, "error", err)
		}
	}
}

// LoadOlder fetches one page of history before the earliest known
// message, using the number of already-held messages as the offset.
// The page is returned so the caller can detect end-of-history (page
// shorter than pageSize); callers serialize per conversation. The page
// is applied to the conversation it belongs to even if the user has
// navigated away, the store is keyed by id so this is always safe.
func (s *Synchronizer) LoadOlder(ctx context.Context, conv domain.ConversationID, known, pageSize int) ([]domain.Message, bool, error) {
	page, err := s.api.History(ctx, conv, known, pageSize)
	if err != nil {
		return nil, false, fmt.Errorf("load older: %w", err)
	}
	s.store.PrependHistoryPage(conv, page)
	return page, len(page) == pageSize, nil
}

// MarkRead tells the server the conversation was opened and clears the
// local unread counter. Fire and forget: a failure is logged, never
// surfaced, never retried.
func (s *Synchronizer) MarkRead(ctx context.Context, conv domain.ConversationID) {
	s.store.ClearUnread(conv)
	if err := s.api.MarkRead(ctx, conv); err != nil {
		s.log.Warn("Read receipt failed", "conversation", conv, "error", err)
	}
}

// AvailableUsers lists the portal users a conversation can be started
// with. Part of the creation flow, not of the hard core.
func (s *Synchronizer) AvailableUsers(ctx context.Context) ([]domain.User, error) {
	return s.api.AvailableUsers(ctx)
}

// CreateConversation validates and submits a creation request, then
// registers the created conversation in the store.
func (s *Synchronizer) CreateConversation(ctx context.Context, req domain.NewConversation) (domain.Conversation, error) {
	if err := validate.Struct(req); err != nil {
		return domain.Conversation{}, err
	}
	if req.Kind == domain.Direct && len(req.Participants) != 2 {
		return domain.Conversation{}, errors.ErrDirectParticipants
	}
	created, err := s.api.CreateConversation(ctx, req)
	if err != nil {
		return domain.Conversation{}, fmt.Errorf("create conversation: %w", err)
	}
	s.store.UpsertConversation(created)
	return created, nil
}
