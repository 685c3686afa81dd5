// Package sink adapts local archives (history cache, search index)
// to the event sink interface the synchronizer fans out to.
package sink

import (
	"context"
	"log/slog"

	"campus-chat/domain/event"
	"campus-chat/repositories"
)

type CacheSink struct {
	cache repositories.IHistoryCache
	log   *slog.Logger
}

func NewCacheSink(cache repositories.IHistoryCache, log *slog.Logger) CacheSink {
	return CacheSink{cache: cache, log: log}
}

func (s CacheSink) Consume(_ context.Context, e event.ServerEvent) error {
	switch evt := e.(type) {
	case event.MessageReceived:
		return s.cache.StoreMessage(evt.Message)
	}
	return nil
}
