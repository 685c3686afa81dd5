package transport

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"campus-chat/domain"
	"campus-chat/domain/event"
	"campus-chat/errors"
)

const readLimitBytes = 1 << 20

// TokenProvider supplies the bearer token attached to the dial request.
type TokenProvider interface {
	Token() (string, error)
}

// Socket is a PushChannel over one websocket connection. Dial replaces
// the underlying connection, so the same Socket survives reconnects.
type Socket struct {
	log    *slog.Logger
	url    string
	tokens TokenProvider

	mu   sync.Mutex
	conn *websocket.Conn
}

func NewSocket(log *slog.Logger, url string, tokens TokenProvider) *Socket {
	return &Socket{log: log, url: url, tokens: tokens}
}

func (s *Socket) Dial(ctx context.Context) error {
	header := http.Header{}
	if s.tokens != nil {
		token, err := s.tokens.Token()
		if err != nil {
			return fmt.Errorf("auth token: %w", err)
		}
		header.Set("Authorization", "Bearer "+token)
	}

	conn, _, err := websocket.Dial(ctx, s.url, &websocket.DialOptions{
		HTTPHeader: header,
	})
	if err != nil {
		return fmt.Errorf("dial %s: %w", s.url, err)
	}
	conn.SetReadLimit(readLimitBytes)

	s.mu.Lock()
	if s.conn != nil {
		_ = s.conn.Close(websocket.StatusNormalClosure, "redial")
	}
	s.conn = conn
	s.mu.Unlock()
	return nil
}

func (s *Socket) Send(ctx context.Context, cmd domain.Command) error {
	env, err := EncodeCommand(cmd)
	if err != nil {
		return err
	}
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return errors.ErrNotDialed
	}
	return wsjson.Write(ctx, conn, env)
}

// Receive blocks for the next server event. Unknown envelope types are
// skipped with a debug log so a protocol addition does not kill the
// connection.
func (s *Socket) Receive(ctx context.Context) (event.ServerEvent, error) {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return nil, errors.ErrNotDialed
	}
	for {
		var env Envelope
		if err := wsjson.Read(ctx, conn, &env); err != nil {
			return nil, err
		}
		evt, err := DecodeEvent(env)
		if err != nil {
			s.log.Debug("Skipping envelope", "type", env.Type, "error", err)
			continue
		}
		return evt, nil
	}
}

func (s *Socket) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close(websocket.StatusNormalClosure, "bye")
	s.conn = nil
	return err
}
