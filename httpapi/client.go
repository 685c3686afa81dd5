// Package httpapi is the request/response collaborator of the chat
// core: history pages, the send fallback, uploads, read receipts and
// the conversation-creation flow.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/samber/lo"

	"campus-chat/domain"
)

// TokenProvider supplies the bearer token for every request.
type TokenProvider interface {
	Token() (string, error)
}

type Client struct {
	log     *slog.Logger
	http    *http.Client
	baseURL string
	tokens  TokenProvider
}

func NewClient(log *slog.Logger, baseURL string, tokens TokenProvider, timeout time.Duration) *Client {
	return &Client{
		log:     log,
		http:    &http.Client{Timeout: timeout},
		baseURL: baseURL,
		tokens:  tokens,
	}
}

type apiMessage struct {
	ID             int64     `json:"id"`
	ConversationID int64     `json:"conversation_id"`
	SenderID       int64     `json:"sender_id"`
	SenderName     string    `json:"sender_name"`
	Kind           string    `json:"kind"`
	Text           string    `json:"text,omitempty"`
	File           *apiFile  `json:"file,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type apiFile struct {
	Path     string `json:"path"`
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	Checksum string `json:"checksum,omitempty"`
}

type apiUser struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type apiConversation struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Avatar       string    `json:"avatar,omitempty"`
	Kind         string    `json:"kind"`
	Participants []apiUser `json:"participants"`
	Unread       int       `json:"unread,omitempty"`
}

type sendMessageRequest struct {
	Text string   `json:"text,omitempty"`
	Kind string   `json:"kind"`
	File *apiFile `json:"file,omitempty"`
}

type createConversationRequest struct {
	Name         string  `json:"name"`
	Kind         string  `json:"kind"`
	Participants []int64 `json:"participants"`
}

// History fetches one page of older messages, most-recent-first, using
// simple offset pagination.
func (c *Client) History(ctx context.Context, conv domain.ConversationID, offset, limit int) ([]domain.Message, error) {
	query := url.Values{}
	query.Set("offset", strconv.Itoa(offset))
	query.Set("limit", strconv.Itoa(limit))
	path := fmt.Sprintf("/api/chats/%d/messages?%s", conv, query.Encode())

	var page []apiMessage
	if err := c.do(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, fmt.Errorf("history page: %w", err)
	}
	return lo.Map(page, func(m apiMessage, _ int) domain.Message {
		return toMessage(m)
	}), nil
}

// SendText is the HTTP fallback for the push send. The response is the
// authoritative message including its server id.
func (c *Client) SendText(ctx context.Context, cmd domain.SendMessage) (domain.Message, error) {
	path := fmt.Sprintf("/api/chats/%d/messages", cmd.Conversation)
	body := sendMessageRequest{
		Text: cmd.Text,
		Kind: string(cmd.Kind),
		File: fromFileDescriptor(cmd.Attachment),
	}
	var created apiMessage
	if err := c.do(ctx, http.MethodPost, path, body, &created); err != nil {
		return domain.Message{}, fmt.Errorf("send fallback: %w", err)
	}
	return toMessage(created), nil
}

// Upload transfers an attachment as multipart form data and returns
// the server-side file descriptor for a subsequent message.
func (c *Client) Upload(ctx context.Context, conv domain.ConversationID, name string, body io.Reader, size int64) (domain.FileDescriptor, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("file", name)
	if err != nil {
		return domain.FileDescriptor{}, err
	}
	if _, err := io.Copy(part, body); err != nil {
		return domain.FileDescriptor{}, err
	}
	if err := form.Close(); err != nil {
		return domain.FileDescriptor{}, err
	}

	path := fmt.Sprintf("%s/api/chats/%d/files", c.baseURL, conv)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, path, &buf)
	if err != nil {
		return domain.FileDescriptor{}, err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	if err := c.authorize(req); err != nil {
		return domain.FileDescriptor{}, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.FileDescriptor{}, fmt.Errorf("upload: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return domain.FileDescriptor{}, statusError(resp)
	}
	var uploaded apiFile
	if err := json.NewDecoder(resp.Body).Decode(&uploaded); err != nil {
		return domain.FileDescriptor{}, fmt.Errorf("upload response: %w", err)
	}
	return domain.FileDescriptor{
		Path: uploaded.Path,
		Name: uploaded.Name,
		Size: uploaded.Size,
	}, nil
}

// MarkRead notifies the server that the conversation was opened.
// The acknowledgment payload is ignorable.
func (c *Client) MarkRead(ctx context.Context, conv domain.ConversationID) error {
	path := fmt.Sprintf("/api/chats/%d/read", conv)
	if err := c.do(ctx, http.MethodPost, path, nil, nil); err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	return nil
}

func (c *Client) AvailableUsers(ctx context.Context) ([]domain.User, error) {
	var users []apiUser
	if err := c.do(ctx, http.MethodGet, "/api/chats/users", nil, &users); err != nil {
		return nil, fmt.Errorf("available users: %w", err)
	}
	return lo.Map(users, func(u apiUser, _ int) domain.User {
		return domain.User{ID: u.ID, Name: u.Name}
	}), nil
}

func (c *Client) CreateConversation(ctx context.Context, req domain.NewConversation) (domain.Conversation, error) {
	body := createConversationRequest{
		Name:         req.Name,
		Kind:         string(req.Kind),
		Participants: req.Participants,
	}
	var created apiConversation
	if err := c.do(ctx, http.MethodPost, "/api/chats", body, &created); err != nil {
		return domain.Conversation{}, fmt.Errorf("create conversation: %w", err)
	}
	return toConversation(created), nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if err := c.authorize(req); err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return statusError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) authorize(req *http.Request) error {
	if c.tokens == nil {
		return nil
	}
	token, err := c.tokens.Token()
	if err != nil {
		return fmt.Errorf("auth token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}

func statusError(resp *http.Response) error {
	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("%s %s: status %d: %s",
		resp.Request.Method, resp.Request.URL.Path, resp.StatusCode, bytes.TrimSpace(detail))
}

func toMessage(m apiMessage) domain.Message {
	return domain.Message{
		ID:           domain.MessageID(m.ID),
		Conversation: domain.ConversationID(m.ConversationID),
		Sender:       domain.User{ID: m.SenderID, Name: m.SenderName},
		Kind:         domain.MessageKind(m.Kind),
		Text:         m.Text,
		File:         toFileDescriptor(m.File),
		CreatedAt:    m.CreatedAt,
	}
}

func toConversation(c apiConversation) domain.Conversation {
	return domain.Conversation{
		ID:     domain.ConversationID(c.ID),
		Name:   c.Name,
		Avatar: c.Avatar,
		Kind:   domain.ConversationKind(c.Kind),
		Participants: lo.Map(c.Participants, func(u apiUser, _ int) domain.User {
			return domain.User{ID: u.ID, Name: u.Name}
		}),
		Unread: c.Unread,
	}
}

func toFileDescriptor(f *apiFile) *domain.FileDescriptor {
	if f == nil {
		return nil
	}
	return &domain.FileDescriptor{Path: f.Path, Name: f.Name, Size: f.Size, Checksum: f.Checksum}
}

func fromFileDescriptor(fd *domain.FileDescriptor) *apiFile {
	if fd == nil {
		return nil
	}
	return &apiFile{Path: fd.Path, Name: fd.Name, Size: fd.Size, Checksum: fd.Checksum}
}
