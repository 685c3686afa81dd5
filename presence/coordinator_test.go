package presence

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"campus-chat/domain"
	"campus-chat/mocks"
)

func TestKeystrokeBurst_SendsOneStartOneStop(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	sender := mocks.NewMockCommandSender(ctrl)
	c := NewCoordinator(slog.Default(), sender, 42, time.Hour)
	ctx := context.Background()

	// Given a burst of keystrokes within the window
	sender.EXPECT().Send(gomock.Any(), domain.TypingStart{Conversation: 42}).Return(nil).Times(1)
	for i := 0; i < 10; i++ {
		c.Keystroke(ctx)
	}

	// When the message is flushed
	sender.EXPECT().Send(gomock.Any(), domain.TypingStop{Conversation: 42}).Return(nil).Times(1)
	c.MessageSent(ctx)

	// Then further flushes while idle send nothing
	c.MessageSent(ctx)
	req.NotNil(c)
}

func TestInactivity_SendsStopAfterWindow(t *testing.T) {
	ctrl := gomock.NewController(t)
	sender := mocks.NewMockCommandSender(ctrl)
	c := NewCoordinator(slog.Default(), sender, 42, 20*time.Millisecond)
	ctx := context.Background()

	stopped := make(chan struct{})
	sender.EXPECT().Send(gomock.Any(), domain.TypingStart{Conversation: 42}).Return(nil)
	sender.EXPECT().Send(gomock.Any(), domain.TypingStop{Conversation: 42}).
		DoAndReturn(func(context.Context, domain.Command) error {
			close(stopped)
			return nil
		})

	c.Keystroke(ctx)

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("inactivity stop never fired")
	}
}

func TestKeystroke_ResetsInactivityTimer(t *testing.T) {
	ctrl := gomock.NewController(t)
	sender := mocks.NewMockCommandSender(ctrl)
	c := NewCoordinator(slog.Default(), sender, 42, 60*time.Millisecond)
	ctx := context.Background()

	stopped := make(chan struct{})
	sender.EXPECT().Send(gomock.Any(), domain.TypingStart{Conversation: 42}).Return(nil).Times(1)
	sender.EXPECT().Send(gomock.Any(), domain.TypingStop{Conversation: 42}).
		DoAndReturn(func(context.Context, domain.Command) error {
			close(stopped)
			return nil
		})

	// Keystrokes 20ms apart keep the 60ms window from elapsing.
	for i := 0; i < 5; i++ {
		c.Keystroke(ctx)
		select {
		case <-stopped:
			t.Fatal("window elapsed while still typing")
		case <-time.After(20 * time.Millisecond):
		}
	}

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("inactivity stop never fired")
	}
}

func TestClose_SendsStopAndCancelsTimer(t *testing.T) {
	ctrl := gomock.NewController(t)
	sender := mocks.NewMockCommandSender(ctrl)
	c := NewCoordinator(slog.Default(), sender, 42, 30*time.Millisecond)
	ctx := context.Background()

	sender.EXPECT().Send(gomock.Any(), domain.TypingStart{Conversation: 42}).Return(nil)
	sender.EXPECT().Send(gomock.Any(), domain.TypingStop{Conversation: 42}).Return(nil).Times(1)

	c.Keystroke(ctx)
	c.Close()

	// The cancelled timer must not produce a second stop.
	time.Sleep(60 * time.Millisecond)

	// A closed coordinator ignores late keystrokes.
	c.Keystroke(ctx)
}

func TestSendFailures_AreSwallowed(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	sender := mocks.NewMockCommandSender(ctrl)
	c := NewCoordinator(slog.Default(), sender, 42, time.Hour)
	ctx := context.Background()

	sender.EXPECT().Send(gomock.Any(), gomock.Any()).Return(fmt.Errorf("channel down")).Times(2)

	c.Keystroke(ctx)
	c.MessageSent(ctx)
	req.NotNil(c)
}
