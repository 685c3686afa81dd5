// Package search maintains a local full-text index over cached
// messages and answers the viewer's /find queries. The index is a
// derived view; losing it costs nothing but a re-index.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/blugelabs/bluge"

	"campus-chat/domain"
)

type Index struct {
	log    *slog.Logger
	writer *bluge.Writer
}

// NewInMemoryIndex opens a throwaway index, the default for a client
// session.
func NewInMemoryIndex(log *slog.Logger) (*Index, error) {
	writer, err := bluge.OpenWriter(bluge.InMemoryOnlyConfig())
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	return &Index{log: log, writer: writer}, nil
}

// NewPersistentIndex opens an index backed by a directory, paired with
// the badger history cache.
func NewPersistentIndex(log *slog.Logger, path string) (*Index, error) {
	writer, err := bluge.OpenWriter(bluge.DefaultConfig(path))
	if err != nil {
		return nil, fmt.Errorf("open index at %s: %w", path, err)
	}
	return &Index{log: log, writer: writer}, nil
}

// IndexMessage upserts one message. Only text is searchable; file
// messages are indexed by their file name.
func (i *Index) IndexMessage(msg domain.Message) error {
	text := msg.Text
	if text == "" && msg.File != nil {
		text = msg.File.Name
	}
	doc := bluge.NewDocument(strconv.FormatInt(int64(msg.ID), 10))
	doc.AddField(bluge.NewTextField("text", text).StoreValue())
	doc.AddField(bluge.NewKeywordField("conversation", strconv.FormatInt(int64(msg.Conversation), 10)).StoreValue())
	doc.AddField(bluge.NewKeywordField("sender", msg.Sender.Name).StoreValue())
	return i.writer.Update(doc.ID(), doc)
}

// Hit is one search result, resolved back into store coordinates.
type Hit struct {
	MessageID    domain.MessageID
	Conversation domain.ConversationID
	Text         string
	Sender       string
}

// Search runs a parsed query and returns up to query.Limit hits, best
// match first.
func (i *Index) Search(ctx context.Context, query *Query) ([]Hit, error) {
	reader, err := i.writer.Reader()
	if err != nil {
		return nil, fmt.Errorf("index reader: %w", err)
	}
	defer func() {
		if err := reader.Close(); err != nil {
			i.log.Debug("Index reader close failed", "error", err)
		}
	}()

	boolean := bluge.NewBooleanQuery().
		AddMust(bluge.NewMatchQuery(query.Terms).SetField("text"))
	if query.Conversation != 0 {
		boolean.AddMust(bluge.NewTermQuery(strconv.FormatInt(query.Conversation, 10)).
			SetField("conversation"))
	}

	request := bluge.NewTopNSearch(query.Limit, boolean)
	iterator, err := reader.Search(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	var hits []Hit
	for {
		match, err := iterator.Next()
		if err != nil {
			return nil, err
		}
		if match == nil {
			break
		}
		var hit Hit
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			switch field {
			case "_id":
				if id, err := strconv.ParseInt(string(value), 10, 64); err == nil {
					hit.MessageID = domain.MessageID(id)
				}
			case "conversation":
				if id, err := strconv.ParseInt(string(value), 10, 64); err == nil {
					hit.Conversation = domain.ConversationID(id)
				}
			case "text":
				hit.Text = string(value)
			case "sender":
				hit.Sender = string(value)
			}
			return true
		})
		if err != nil {
			return nil, err
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

func (i *Index) Close() error {
	return i.writer.Close()
}
