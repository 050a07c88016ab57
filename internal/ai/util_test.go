package ai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanReply(t *testing.T) {
	assert.Equal(t, "hello", cleanReply("  hello  "))
	assert.Equal(t, "the answer", cleanReply("<think>internal musing\nmore musing</think>the answer"))
	assert.Equal(t, "quoted reply", cleanReply(`"quoted reply"`))
	assert.Equal(t, "curly", cleanReply("“curly”"))

	// Mismatched quotes stay.
	assert.Equal(t, `"half quoted`, cleanReply(`"half quoted`))

	long := strings.Repeat("a", 3000)
	out := cleanReply(long)
	assert.True(t, strings.HasSuffix(out, "[truncated]"))
	assert.LessOrEqual(t, len(out), 2800+len("\n\n[truncated]"))
}

func TestIsGarbageResponse(t *testing.T) {
	assert.True(t, isGarbageResponse("<html><body>502</body></html>"))
	assert.True(t, isGarbageResponse("This request is Not Allowed"))
	assert.True(t, isGarbageResponse(" "))
	assert.True(t, isGarbageResponse("x"))
	assert.False(t, isGarbageResponse("a perfectly fine reply"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate([]byte("short")))
	long := strings.Repeat("b", 400)
	out := truncate([]byte(long))
	assert.Equal(t, 303, len(out))
	assert.True(t, strings.HasSuffix(out, "..."))
}
