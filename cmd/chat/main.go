package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"campus-chat/connection"
	"campus-chat/contract"
	"campus-chat/domain"
	"campus-chat/httpapi"
	"campus-chat/internal"
	"campus-chat/moderation"
	"campus-chat/presence"
	"campus-chat/repositories"
	"campus-chat/runtime"
	"campus-chat/search"
	"campus-chat/sink"
	"campus-chat/store"
	"campus-chat/syncer"
	"campus-chat/transport"
)

// Exit codes to provide meaningful status to the operating system.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	// The main function acts as a thin wrapper.
	// Its only responsibility is to call run() and handle the OS exit code.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Chat client terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run wires the whole client: store, push channel, synchronizer,
// archives and the terminal viewer loop. The pattern keeps defers
// running on every exit path and the entry point testable.
func run() (int, error) {
	// 1. Configuration & logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	mask, err := internal.CharacterRune(config.MaskCharacter)
	if err != nil {
		return exitConfig, err
	}
	logger := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Local archives: badger history cache and bluge search index
	var archives []contract.EventSink
	var cache *repositories.HistoryCache
	if config.CacheFilepath != "" {
		db, err := badger.Open(badger.DefaultOptions(config.CacheFilepath).
			WithLoggingLevel(badger.ERROR))
		if err != nil {
			return exitRuntime, fmt.Errorf("history cache opening failed: %w", err)
		}
		defer db.Close()
		c := repositories.NewHistoryCache(db, logger)
		cache = &c
		archives = append(archives, sink.NewCacheSink(c, logger))
	}

	index, err := search.NewInMemoryIndex(logger)
	if err != nil {
		return exitRuntime, err
	}
	defer index.Close()
	archives = append(archives, sink.NewSearchSink(index, logger))

	// 3. Moderation
	lists, err := moderation.LoadEmbedded()
	if err != nil {
		return exitRuntime, err
	}
	logger.Info(fmt.Sprintf("%d censored words loaded [%s]",
		len(lists.Words), strings.Join(lists.Languages, ",")))
	moderator, err := moderation.NewModerator(lists.Words, mask)
	if err != nil {
		return exitRuntime, err
	}

	// 4. Transport, connection manager, synchronizer
	tokens := httpapi.NewSessionToken(config.AuthToken, time.Minute)
	api := httpapi.NewClient(logger, config.APIBaseURL, tokens, config.HTTPTimeout)
	socket := transport.NewSocket(logger, config.PushURL, tokens)
	manager := connection.NewManager(logger, socket,
		connection.WithBackoff(config.ReconnectBaseDelay, config.ReconnectMaxDelay, config.ReconnectMaxAttempts))

	chatStore := store.NewChatStore(logger, config.TypingTTL)
	synchronizer := syncer.NewSynchronizer(logger, chatStore, manager, api,
		syncer.WithModerator(moderator),
		syncer.WithMaxAttachmentSize(config.MaxFileSize),
		syncer.WithArchives(archives...))
	manager.OnEvent(synchronizer)

	// 5. Supervised workers
	supervisor := runtime.NewSupervisor(logger)
	supervisor.Add(manager)
	supervisor.Add(runtime.NewDiagnosticsWorker(logger, manager, config.DiagnosticsInterval))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		supervisor.Run(ctx)
	}()
	defer func() {
		supervisor.Stop()
		wg.Wait()
	}()

	// 6. Viewer / composer loop
	viewer, err := newViewer(logger, chatStore)
	if err != nil {
		return exitConfig, err
	}
	if err := console(ctx, logger, config, viewer, chatStore, synchronizer, manager, cache, index); err != nil {
		return exitRuntime, err
	}
	return exitOK, nil
}

// console runs the line-based composer. A real composer would feed the
// typing coordinator per keystroke; a terminal gives us whole lines,
// so each line counts as one burst of activity.
func console(ctx context.Context, logger *slog.Logger, config internal.Config,
	viewer *viewer, chatStore *store.ChatStore,
	synchronizer *syncer.Synchronizer, manager *connection.Manager,
	cache *repositories.HistoryCache, index *search.Index) error {

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	var (
		active        domain.ConversationID
		typist        *presence.Coordinator
		hasMore       = true
		isLoadingMore bool
	)
	defer func() {
		if typist != nil {
			typist.Close()
		}
	}()

	chatStore.Subscribe(func(conv domain.ConversationID) {
		if conv == active {
			viewer.render(active)
		}
	})

	fmt.Println("Commands: /open <id>, /more, /find <terms>, /users, /chats, /file <path>, /quit")
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			line = strings.TrimSpace(line)
			switch {
			case line == "":
				continue
			case line == "/quit":
				return nil
			case line == "/chats":
				viewer.renderConversations()
			case line == "/users":
				users, err := synchronizer.AvailableUsers(ctx)
				if err != nil {
					logger.Warn("User listing failed", "error", err)
					continue
				}
				viewer.renderUsers(users)
			case strings.HasPrefix(line, "/open "):
				id, err := strconv.ParseInt(strings.TrimPrefix(line, "/open "), 10, 64)
				if err != nil {
					fmt.Println("usage: /open <conversation id>")
					continue
				}
				if typist != nil {
					typist.Close()
				}
				active = domain.ConversationID(id)
				typist = presence.NewCoordinator(logger, manager, id, config.TypingWindow)
				hasMore = true
				warmConversation(ctx, chatStore, synchronizer, cache, active, config.HistoryPageSize, &hasMore)
				synchronizer.MarkRead(ctx, active)
				viewer.render(active)
			case line == "/more":
				if active == 0 || isLoadingMore || !hasMore {
					continue
				}
				isLoadingMore = true
				_, more, err := synchronizer.LoadOlder(ctx, active, chatStore.Count(active), config.HistoryPageSize)
				isLoadingMore = false
				if err != nil {
					logger.Warn("History page failed", "error", err)
					continue
				}
				hasMore = more
			case strings.HasPrefix(line, "/find "):
				hits, err := index.Search(ctx, search.ParseQuery(line))
				if err != nil {
					logger.Warn("Search failed", "error", err)
					continue
				}
				viewer.renderHits(hits)
			case strings.HasPrefix(line, "/file "):
				if active == 0 {
					fmt.Println("open a conversation first")
					continue
				}
				err := synchronizer.Send(ctx, syncer.SendRequest{
					Conversation: int64(active),
					FilePath:     strings.TrimSpace(strings.TrimPrefix(line, "/file ")),
				})
				if err != nil {
					fmt.Printf("failed to send: %v\n", err)
				}
			default:
				if active == 0 {
					fmt.Println("open a conversation first")
					continue
				}
				typist.Keystroke(ctx)
				err := synchronizer.Send(ctx, syncer.SendRequest{
					Conversation: int64(active),
					Text:         line,
				})
				typist.MessageSent(ctx)
				if err != nil {
					fmt.Printf("failed to send: %v\n", err)
				}
			}
		}
	}
}

// warmConversation fills an empty conversation from the local cache
// first, then asks the server for the freshest page.
func warmConversation(ctx context.Context, chatStore *store.ChatStore,
	synchronizer *syncer.Synchronizer, cache *repositories.HistoryCache,
	conv domain.ConversationID, pageSize int, hasMore *bool) {

	if chatStore.Count(conv) == 0 && cache != nil {
		if cached, err := cache.Recent(conv, pageSize); err == nil {
			chatStore.PrependHistoryPage(conv, cached)
		}
	}
	_, more, err := synchronizer.LoadOlder(ctx, conv, 0, pageSize)
	if err == nil {
		*hasMore = more
	}
}
