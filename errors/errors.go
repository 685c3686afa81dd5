package errors

import "fmt"

var (
	ErrChannelDown        = fmt.Errorf("push channel is down")
	ErrNotDialed          = fmt.Errorf("push channel has not been dialed")
	ErrReconnectExhausted = fmt.Errorf("reconnect attempts exhausted")
	ErrSendFailed         = fmt.Errorf("message could not be sent on any channel")
	ErrEmptyMessage       = fmt.Errorf("message needs a text or an attachment")
	ErrFileTooLarge       = fmt.Errorf("attachment exceeds the size limit")
	ErrDirectParticipants = fmt.Errorf("a direct conversation needs exactly two participants")
	ErrTokenExpired       = fmt.Errorf("auth token is expired")
	ErrEmptyWords         = fmt.Errorf("no words have been found")
	ErrWorkerPanic        = fmt.Errorf("worker panic")
	ErrUnknownEventType   = fmt.Errorf("unknown server event type")
)
