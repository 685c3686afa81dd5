package sink

import (
	"context"
	"log/slog"

	"campus-chat/domain/event"
	"campus-chat/search"
)

type SearchSink struct {
	index *search.Index
	log   *slog.Logger
}

func NewSearchSink(index *search.Index, log *slog.Logger) SearchSink {
	return SearchSink{index: index, log: log}
}

func (s SearchSink) Consume(_ context.Context, e event.ServerEvent) error {
	switch evt := e.(type) {
	case event.MessageReceived:
		return s.index.IndexMessage(evt.Message)
	}
	return nil
}
