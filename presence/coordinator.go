// Package presence turns raw keystrokes into typing start/stop
// commands. One coordinator per composer instance; it only writes
// outbound presence, inbound presence from other users is handled by
// the ingest path.
package presence

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"campus-chat/contract"
	"campus-chat/domain"
)

// DefaultWindow is the inactivity window after the last keystroke.
const DefaultWindow = 3 * time.Second

// Coordinator is a two-state machine (idle, typing). The first
// keystroke sends a start command; every further keystroke resets the
// inactivity timer without re-sending. The timer elapsing, the message
// being sent, or Close all transition back to idle and send a stop
// command. Send failures are swallowed: presence is advisory.
type Coordinator struct {
	log          *slog.Logger
	sender       contract.CommandSender
	conversation int64
	window       time.Duration

	mu     sync.Mutex
	timer  *time.Timer
	typing bool
	closed bool
}

func NewCoordinator(log *slog.Logger, sender contract.CommandSender, conversation int64, window time.Duration) *Coordinator {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Coordinator{
		log:          log,
		sender:       sender,
		conversation: conversation,
		window:       window,
	}
}

// Keystroke records composer activity.
func (c *Coordinator) Keystroke(ctx context.Context) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	start := !c.typing
	c.typing = true
	if c.timer == nil {
		c.timer = time.AfterFunc(c.window, c.expire)
	} else {
		c.timer.Reset(c.window)
	}
	c.mu.Unlock()

	if start {
		if err := c.sender.Send(ctx, domain.TypingStart{Conversation: c.conversation}); err != nil {
			c.log.Debug("Typing start dropped", "conversation", c.conversation, "error", err)
		}
	}
}

// MessageSent transitions to idle immediately: the composer was
// flushed, the presence signal is over.
func (c *Coordinator) MessageSent(ctx context.Context) {
	c.stop(ctx)
}

// Close tears the machine down, cancelling the owned timer so it can
// never fire against a torn-down conversation.
func (c *Coordinator) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	wasTyping := c.typing
	c.typing = false
	if c.timer != nil {
		c.timer.Stop()
	}
	c.mu.Unlock()

	if wasTyping {
		c.sendStop(context.Background())
	}
}

func (c *Coordinator) expire() {
	c.stop(context.Background())
}

func (c *Coordinator) stop(ctx context.Context) {
	c.mu.Lock()
	if c.closed || !c.typing {
		c.mu.Unlock()
		return
	}
	c.typing = false
	if c.timer != nil {
		c.timer.Stop()
	}
	c.mu.Unlock()

	c.sendStop(ctx)
}

func (c *Coordinator) sendStop(ctx context.Context) {
	if err := c.sender.Send(ctx, domain.TypingStop{Conversation: c.conversation}); err != nil {
		c.log.Debug("Typing stop dropped", "conversation", c.conversation, "error", err)
	}
}
