package mind

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTriggerDecide(t *testing.T) {
	cfg := TriggerConfig{
		BotName:      "Luna",
		Cooldown:     5 * time.Second,
		ReplyChance:  0, // no random replies in tests
		NameMatching: true,
	}
	now := time.Now()

	t.Run("mention", func(t *testing.T) {
		tr := NewTrigger(cfg)
		d := tr.Decide("u1", "hey you", true, now)
		assert.True(t, d.Respond)
		assert.Equal(t, "mention", d.Reason)
	})

	t.Run("name match is case insensitive", func(t *testing.T) {
		tr := NewTrigger(cfg)
		d := tr.Decide("u1", "good night LUNA!", false, now)
		assert.True(t, d.Respond)
		assert.Equal(t, "name", d.Reason)
	})

	t.Run("name matching disabled", func(t *testing.T) {
		off := cfg
		off.NameMatching = false
		tr := NewTrigger(off)
		d := tr.Decide("u1", "good night luna", false, now)
		assert.False(t, d.Respond)
		assert.Equal(t, "ignored", d.Reason)
	})

	t.Run("plain message ignored", func(t *testing.T) {
		tr := NewTrigger(cfg)
		d := tr.Decide("u1", "just chatting", false, now)
		assert.False(t, d.Respond)
		assert.Equal(t, "ignored", d.Reason)
	})

	t.Run("chance always fires at 1.0", func(t *testing.T) {
		always := cfg
		always.ReplyChance = 1.0
		tr := NewTrigger(always)
		d := tr.Decide("u1", "just chatting", false, now)
		assert.True(t, d.Respond)
		assert.Equal(t, "chance", d.Reason)
	})
}

func TestTriggerCooldown(t *testing.T) {
	tr := NewTrigger(TriggerConfig{BotName: "Luna", Cooldown: 5 * time.Second})
	now := time.Now()

	d := tr.Decide("u1", "hi", true, now)
	assert.True(t, d.Respond)

	// Inside the window the same user is suppressed, even when mentioned.
	d = tr.Decide("u1", "hi again", true, now.Add(2*time.Second))
	assert.False(t, d.Respond)
	assert.Equal(t, "cooldown", d.Reason)

	// A different user is unaffected.
	d = tr.Decide("u2", "hi", true, now.Add(2*time.Second))
	assert.True(t, d.Respond)

	// After the window the first user is eligible again.
	d = tr.Decide("u1", "hi once more", true, now.Add(6*time.Second))
	assert.True(t, d.Respond)
}

func TestTriggerSuppressedMessageDoesNotResetWindow(t *testing.T) {
	tr := NewTrigger(TriggerConfig{BotName: "Luna", Cooldown: 5 * time.Second})
	now := time.Now()

	tr.Decide("u1", "hi", true, now)
	tr.Decide("u1", "spam", true, now.Add(4*time.Second))

	// 6s after the handled message the window has expired, regardless of the
	// suppressed message in between.
	d := tr.Decide("u1", "hello", true, now.Add(6*time.Second))
	assert.True(t, d.Respond)
}

func TestTriggerPrune(t *testing.T) {
	tr := NewTrigger(TriggerConfig{BotName: "Luna", Cooldown: 5 * time.Second})
	now := time.Now()

	tr.Decide("old", "hi", true, now)
	tr.Decide("fresh", "hi", true, now.Add(4*time.Second))

	tr.Prune(now.Add(5 * time.Second))

	tr.mu.Lock()
	_, oldKept := tr.lastSeen["old"]
	_, freshKept := tr.lastSeen["fresh"]
	tr.mu.Unlock()
	assert.False(t, oldKept)
	assert.True(t, freshKept)
}
