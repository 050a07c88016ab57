package mind

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lunabot/luna/internal/storage/sqlite"
)

func TestBuildPrompt(t *testing.T) {
	memories := []sqlite.Memory{
		{Username: "alice", Content: "what's your favorite color?", Reply: "Moonlight silver, obviously."},
		{Username: "alice", Content: "mine is green"},
	}

	prompt := BuildPrompt("You are Luna, a dreamy companion.", "Luna", "alice", memories, "do you remember my favorite color?")

	assert.True(t, strings.HasPrefix(prompt, "You are Luna"))
	assert.Contains(t, prompt, "--- Recent conversation with alice ---")
	assert.Contains(t, prompt, "alice: what's your favorite color?")
	assert.Contains(t, prompt, "Luna: Moonlight silver, obviously.")
	assert.Contains(t, prompt, "alice says: do you remember my favorite color?")
	assert.Contains(t, prompt, "Reply as Luna")

	// History must read oldest to newest.
	first := strings.Index(prompt, "favorite color?")
	second := strings.Index(prompt, "mine is green")
	assert.Less(t, first, second)

	// Unanswered memories contribute no bot line.
	assert.Equal(t, 1, strings.Count(prompt, "Luna: Moonlight"))
}

func TestBuildPromptNoHistory(t *testing.T) {
	prompt := BuildPrompt("persona", "Luna", "bob", nil, "hello")
	assert.NotContains(t, prompt, "Recent conversation")
	assert.Contains(t, prompt, "bob says: hello")
}

func TestBuildPromptBudgets(t *testing.T) {
	hugePersona := strings.Repeat("persona ", 1000)
	hugeMessage := strings.Repeat("words ", 1000)
	prompt := BuildPrompt(hugePersona, "Luna", "bob", nil, hugeMessage)

	// Both sections are cut to their budgets, so the total stays bounded.
	assert.Less(t, len(prompt), MaxPersonaChars+MaxMessageChars+200)
}

func TestTrimToChars(t *testing.T) {
	assert.Equal(t, "short", TrimToChars("short", 100))
	assert.Equal(t, "short", TrimToChars("short", 0))

	out := TrimToChars("one two three four five", 14)
	assert.Equal(t, "one two three", out)

	// No usable word boundary: hard cut.
	out = TrimToChars(strings.Repeat("x", 50), 10)
	assert.Equal(t, strings.Repeat("x", 10), out)
}
