// Package bot delivers operational alerts to Telegram chats.
//
// The log handler in lib/logger forwards records at or above the configured
// level; SendMessageWithLevel fans the text out to every configured chat.
package bot

import (
	"fmt"
	"log/slog"

	tgbotapi "github.com/PaulSonOfLars/gotgbot/v2"

	"evtickets/lib/sl"
)

type TgBot struct {
	log      *slog.Logger
	api      *tgbotapi.Bot
	chatIds  []int64
	minLevel slog.Level
}

func NewTgBot(apiKey string, chatIds []int64, minLevel slog.Level, log *slog.Logger) (*TgBot, error) {
	if len(chatIds) == 0 {
		return nil, fmt.Errorf("no chat ids configured")
	}
	api, err := tgbotapi.NewBot(apiKey, nil)
	if err != nil {
		return nil, fmt.Errorf("creating api instance: %v", err)
	}
	return &TgBot{
		log:      log.With(sl.Module("tgbot")),
		api:      api,
		chatIds:  chatIds,
		minLevel: minLevel,
	}, nil
}

// ParseLevel maps a config string to a slog level; unknown values fall back to error.
func ParseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelError
	}
	return level
}
