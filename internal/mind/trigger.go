package mind

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"
)

// TriggerConfig holds the knobs for deciding whether to answer a message.
// Autonomous replies and name matching are product policy, so they are
// configurable rather than hardcoded.
type TriggerConfig struct {
	BotName      string
	Cooldown     time.Duration // per-user window between handled messages
	ReplyChance  float64       // 0..1 probability of an unprompted reply
	NameMatching bool          // respond when the message contains the bot name
}

// Trigger decides whether an inbound message deserves a reply. The only
// persistent state is the last-response timestamp per user.
type Trigger struct {
	cfg TriggerConfig

	mu       sync.Mutex
	lastSeen map[string]time.Time
	rnd      *rand.Rand
}

func NewTrigger(cfg TriggerConfig) *Trigger {
	return &Trigger{
		cfg:      cfg,
		lastSeen: make(map[string]time.Time),
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Decision explains why a message was or was not handled.
type Decision struct {
	Respond bool
	Reason  string // "mention" | "name" | "chance" | "cooldown" | "ignored"
}

// Decide applies the trigger policy. When it returns Respond=true the user's
// cooldown window is started; callers must not call Decide twice for the same
// message.
func (t *Trigger) Decide(userID, content string, mentioned bool, now time.Time) Decision {
	reason := ""
	switch {
	case mentioned:
		reason = "mention"
	case t.cfg.NameMatching && containsName(content, t.cfg.BotName):
		reason = "name"
	case t.cfg.ReplyChance > 0 && t.roll() < t.cfg.ReplyChance:
		reason = "chance"
	default:
		return Decision{Respond: false, Reason: "ignored"}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if last, ok := t.lastSeen[userID]; ok && now.Sub(last) < t.cfg.Cooldown {
		return Decision{Respond: false, Reason: "cooldown"}
	}
	t.lastSeen[userID] = now
	return Decision{Respond: true, Reason: reason}
}

// Prune drops cooldown entries older than the window; called periodically so
// the map does not grow with every user ever seen.
func (t *Trigger) Prune(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, last := range t.lastSeen {
		if now.Sub(last) >= t.cfg.Cooldown {
			delete(t.lastSeen, id)
		}
	}
}

func (t *Trigger) roll() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rnd.Float64()
}

func containsName(content, name string) bool {
	if name == "" {
		return false
	}
	return strings.Contains(strings.ToLower(content), strings.ToLower(name))
}

// RunCooldownCleaner prunes stale cooldown entries every minute until ctx is
// done. Call from main or app lifecycle.
func RunCooldownCleaner(ctx context.Context, t *Trigger) {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.Prune(time.Now())
		}
	}
}
