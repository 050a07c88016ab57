package ai

import (
	"context"

	"github.com/lunabot/luna/pkg/log"
)

// Apology is the user-safe reply when every provider has failed.
const Apology = "Sorry, my head is somewhere in the clouds right now... ask me again in a little while? 🌙"

// Completer obtains a completion for a prompt, tolerating provider failures.
// Complete never fails: primary errors fall through to the secondary, and a
// static apology covers total unavailability.
type Completer struct {
	primary   Provider
	secondary Provider
	persona   string
}

// NewCompleter wires the configured providers. Either provider may be nil
// when its credential is absent.
func NewCompleter(primary, secondary Provider, persona string) *Completer {
	return &Completer{primary: primary, secondary: secondary, persona: persona}
}

// Complete returns a non-empty reply for prompt. All provider failures are
// logged and degraded, never surfaced.
func (c *Completer) Complete(ctx context.Context, prompt string) string {
	logger := log.FromCtx(ctx)

	if c.primary != nil {
		out, err := c.primary.Generate(ctx, []Message{{Role: "user", Content: prompt}})
		if err == nil {
			if reply := cleanReply(out); !isGarbageResponse(reply) {
				return reply
			}
			logger.Warn().Msg("primary returned garbage, falling back")
		} else {
			logger.Warn().Err(err).Msg("primary provider failed, falling back")
		}
	}

	if c.secondary != nil {
		messages := []Message{
			{Role: "system", Content: c.persona},
			{Role: "user", Content: prompt},
		}
		out, err := c.secondary.Generate(ctx, messages)
		if err == nil {
			if reply := cleanReply(out); !isGarbageResponse(reply) {
				return reply
			}
			logger.Warn().Msg("secondary returned garbage")
		} else {
			logger.Warn().Err(err).Msg("secondary provider failed")
		}
	}

	return Apology
}

// HasProvider reports whether at least one provider is configured; without
// one, every reply is the apology.
func (c *Completer) HasProvider() bool {
	return c.primary != nil || c.secondary != nil
}

// Persona returns the persona text the completer was built with.
func (c *Completer) Persona() string {
	return c.persona
}
