package bot

import (
	"log/slog"
)

func (t *TgBot) SendMessage(msg string) {
	t.SendMessageWithLevel(msg, t.minLevel)
}

// SendMessageWithLevel sends msg to every configured chat when level reaches the bot threshold.
func (t *TgBot) SendMessageWithLevel(msg string, level slog.Level) {
	if level < t.minLevel {
		return
	}
	for _, id := range t.chatIds {
		t.plainResponse(id, msg)
	}
}
