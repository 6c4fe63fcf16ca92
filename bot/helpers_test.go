package bot

import (
	"log/slog"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	assert.Equal(t, "ticket\\.redeemed", Sanitize("ticket.redeemed"))
	assert.Equal(t, "\\(x\\) \\- y\\!", Sanitize("(x) - y!"))
	assert.Equal(t, "plain", Sanitize("plain"))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("INFO"))
	assert.Equal(t, slog.LevelError, ParseLevel("nonsense"))
}

func TestSplitMessage(t *testing.T) {
	assert.Equal(t, []string{"short"}, splitMessage("short", 10))

	parts := splitMessage("line one\nline two\nline three", 12)
	assert.Equal(t, []string{"line one\n", "line two\n", "line three"}, parts)

	// "ção" has multi-byte runes at positions that a byte cut would split
	text := strings.Repeat("ção", 5)
	parts = splitMessage(text, 4)
	assert.Equal(t, text, strings.Join(parts, ""))
	for _, p := range parts {
		assert.True(t, utf8.ValidString(p), "part %q", p)
		assert.LessOrEqual(t, len(p), 4)
	}
}
