package internal

import (
	"fmt"
	"time"
)

type Config struct {
	PushURL    string `env:"CHAT_PUSH_URL,required=true"`
	APIBaseURL string `env:"CHAT_API_URL,required=true"`
	AuthToken  string `env:"CHAT_AUTH_TOKEN,required=true"`
	LogLevel   string `env:"LOG_LEVEL,required=true"`

	HistoryPageSize int           `env:"HISTORY_PAGE_SIZE,default=50"`
	HTTPTimeout     time.Duration `env:"HTTP_TIMEOUT,default=10s"`

	TypingWindow time.Duration `env:"TYPING_WINDOW,default=3s"`
	TypingTTL    time.Duration `env:"TYPING_TTL,default=10s"`

	MaxFileSize int64 `env:"MAX_FILE_SIZE,default=10485760"`

	ReconnectBaseDelay   time.Duration `env:"RECONNECT_BASE_DELAY,default=500ms"`
	ReconnectMaxDelay    time.Duration `env:"RECONNECT_MAX_DELAY,default=30s"`
	ReconnectMaxAttempts int           `env:"RECONNECT_MAX_ATTEMPTS,default=8"`

	CacheFilepath string `env:"CACHE_FILEPATH"`
	MaskCharacter string `env:"MASK_CHARACTER,default=*"`

	DiagnosticsInterval time.Duration `env:"DIAGNOSTICS_INTERVAL,default=30s"`
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"MASK_CHARACTER must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
