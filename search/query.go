package search

import (
	"strconv"
	"strings"
)

const defaultLimit = 10

// Query decouples the viewer's raw /find input from the index engine.
type Query struct {
	RawInput     string // original composer input
	Terms        string // text to match
	Conversation int64  // 0 means all conversations
	Limit        int
}

// ParseQuery extracts command-line style arguments from a raw string.
// Example: /find homework --conversation 12 --limit 5
func ParseQuery(input string) *Query {
	query := &Query{
		RawInput: input,
		Limit:    defaultLimit,
	}

	parts := strings.Fields(input)
	var terms []string

	for i := 0; i < len(parts); i++ {
		part := parts[i]

		if strings.HasPrefix(part, "--") && i+1 < len(parts) {
			key := strings.TrimPrefix(part, "--")
			val := parts[i+1]
			switch key {
			case "conversation":
				if id, err := strconv.ParseInt(val, 10, 64); err == nil {
					query.Conversation = id
				}
			case "limit":
				if n, err := strconv.Atoi(val); err == nil && n > 0 {
					query.Limit = n
				}
			}
			i++
			continue
		}

		if !strings.HasPrefix(part, "/") {
			terms = append(terms, part)
		}
	}

	query.Terms = strings.Join(terms, " ")
	return query
}
