package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/gookit/color"
	"github.com/kelseyhightower/envconfig"
	"github.com/olekukonko/tablewriter"

	"campus-chat/domain"
	"campus-chat/search"
	"campus-chat/store"
)

// ViewerConfig tunes terminal rendering only; the core never sees it.
type ViewerConfig struct {
	Colours bool `envconfig:"CHAT_COLOURS" default:"true"`
	MaxRows int  `envconfig:"CHAT_MAX_ROWS" default:"30"`
}

type viewer struct {
	log    *slog.Logger
	store  *store.ChatStore
	config ViewerConfig
}

func newViewer(log *slog.Logger, st *store.ChatStore) (*viewer, error) {
	var cfg ViewerConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &viewer{log: log, store: st, config: cfg}, nil
}

// render prints the active conversation: messages in display order,
// then the typing line.
func (v *viewer) render(conv domain.ConversationID) {
	messages := v.store.MessagesFor(conv)
	if len(messages) > v.config.MaxRows {
		messages = messages[len(messages)-v.config.MaxRows:]
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Time", "Sender", "Message"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, msg := range messages {
		table.Append([]string{
			msg.CreatedAt.Local().Format(time.TimeOnly),
			msg.Sender.Name,
			body(msg),
		})
	}
	table.Render()

	typing := v.store.TypingUsersFor(conv)
	if len(typing) > 0 {
		line := ""
		for i, p := range typing {
			if i > 0 {
				line += ", "
			}
			line += p.User.Name
		}
		if v.config.Colours {
			color.Gray.Printf("%s typing...\n", line)
		} else {
			fmt.Printf("%s typing...\n", line)
		}
	}
}

func (v *viewer) renderConversations() {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Name", "Kind", "Unread"})
	for _, c := range v.store.Conversations() {
		unread := strconv.Itoa(c.Unread)
		if c.Unread > 0 && v.config.Colours {
			unread = color.Red.Sprint(unread)
		}
		table.Append([]string{
			strconv.FormatInt(int64(c.ID), 10),
			c.Name,
			string(c.Kind),
			unread,
		})
	}
	table.Render()
}

func (v *viewer) renderUsers(users []domain.User) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Name"})
	for _, u := range users {
		table.Append([]string{strconv.FormatInt(u.ID, 10), u.Name})
	}
	table.Render()
}

func (v *viewer) renderHits(hits []search.Hit) {
	if len(hits) == 0 {
		fmt.Println("no matches")
		return
	}
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Conversation", "Sender", "Message"})
	for _, h := range hits {
		table.Append([]string{
			strconv.FormatInt(int64(h.Conversation), 10),
			h.Sender,
			h.Text,
		})
	}
	table.Render()
}

func body(msg domain.Message) string {
	if msg.File != nil {
		return fmt.Sprintf("[%s] %s (%d bytes)", msg.Kind, msg.File.Name, msg.File.Size)
	}
	return msg.Text
}
