package mind

import (
	"fmt"
	"strings"

	"github.com/lunabot/luna/internal/storage/sqlite"
)

// Character budgets per prompt section. LLMs average ~4 chars/token for
// English; never ship the full history.
const (
	MaxPersonaChars = 2400
	MaxMemoryChars  = 3200
	MaxMessageChars = 1600
)

// TrimToChars truncates s to maxChars, trying to cut at a word boundary.
func TrimToChars(s string, maxChars int) string {
	if maxChars <= 0 || len(s) <= maxChars {
		return s
	}
	r := []rune(s)
	if len(r) <= maxChars {
		return s
	}
	out := string(r[:maxChars])
	lastSpace := strings.LastIndex(out, " ")
	if lastSpace > maxChars/2 {
		return strings.TrimSpace(out[:lastSpace])
	}
	return strings.TrimSpace(out)
}

// BuildPrompt combines the persona, the user's recent memory window (oldest
// to newest) and the new message into one prompt string for the completion
// client.
func BuildPrompt(persona, botName, username string, memories []sqlite.Memory, message string) string {
	var b strings.Builder

	b.WriteString(TrimToChars(persona, MaxPersonaChars))
	b.WriteString("\n\n")

	if len(memories) > 0 {
		b.WriteString("--- Recent conversation with ")
		b.WriteString(username)
		b.WriteString(" ---\n")
		var lines []string
		for _, m := range memories {
			lines = append(lines, fmt.Sprintf("%s: %s", m.Username, m.Content))
			if m.Reply != "" {
				lines = append(lines, fmt.Sprintf("%s: %s", botName, m.Reply))
			}
		}
		b.WriteString(TrimToChars(strings.Join(lines, "\n"), MaxMemoryChars))
		b.WriteString("\n\n")
	}

	b.WriteString(username)
	b.WriteString(" says: ")
	b.WriteString(TrimToChars(message, MaxMessageChars))
	b.WriteString("\n")
	b.WriteString("Reply as ")
	b.WriteString(botName)
	b.WriteString(", in character, without prefixing your name.")

	return b.String()
}
