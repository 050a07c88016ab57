package discord

import (
	"regexp"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/lunabot/luna/internal/mind"
	"github.com/lunabot/luna/internal/storage/sqlite"
	"github.com/lunabot/luna/pkg/log"
)

var mentionRe = regexp.MustCompile(`<@!?\d+>`)

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.Author.ID == s.State.User.ID {
		return
	}

	content := strings.TrimSpace(mentionRe.ReplaceAllString(m.Content, ""))
	if content == "" {
		return
	}

	mentioned := false
	for _, user := range m.Mentions {
		if user.ID == s.State.User.ID {
			mentioned = true
			break
		}
	}

	logger := log.FromCtx(b.ctx)
	decision := b.trigger.Decide(m.Author.ID, content, mentioned, time.Now())
	if !decision.Respond {
		if decision.Reason == "cooldown" {
			logger.Debug().Str("user", m.Author.ID).Msg("suppressed by cooldown")
		}
		return
	}

	if !b.limiter.Allow(time.Now()) {
		logger.Warn().Msg("LLM budget exhausted")
		if mentioned {
			_, _ = s.ChannelMessageSend(m.ChannelID, "Give me a minute to catch my breath, okay? 🌙")
		}
		return
	}

	b.respond(s, m, content, decision.Reason)
}

// respond stores the message, builds the prompt from the user's memory
// window, calls the completion client and sends the reply. Nothing in here is
// allowed to crash the handler; errors are logged and the user gets at worst
// the apology string.
func (b *Bot) respond(s *discordgo.Session, m *discordgo.MessageCreate, content, reason string) {
	ctx := b.ctx
	logger := log.FromCtx(ctx)
	username := displayName(m)

	_ = s.ChannelTyping(m.ChannelID)

	if err := b.profiles.Touch(ctx, m.Author.ID, username); err != nil {
		logger.Error().Err(err).Msg("failed to touch profile")
	}

	// History is fetched before the new message is stored so the prompt does
	// not contain it twice.
	history, err := b.memories.RecentByUser(ctx, m.Author.ID, b.cfg.HistoryWindow)
	if err != nil {
		logger.Error().Err(err).Msg("failed to load memories")
	}

	memID, err := b.memories.Add(ctx, sqlite.Memory{
		UserID:   m.Author.ID,
		Username: username,
		Content:  content,
	})
	if err != nil {
		logger.Error().Err(err).Msg("failed to store memory")
	}

	prompt := mind.BuildPrompt(b.completer.Persona(), b.cfg.BotName, username, history, content)

	started := time.Now()
	reply := b.completer.Complete(ctx, prompt)
	b.limiter.Record(time.Now())
	logger.Info().
		Str("user", m.Author.ID).
		Str("trigger", reason).
		Dur("took", time.Since(started)).
		Int("reply_len", len(reply)).
		Msg("generated reply")

	if memID != 0 {
		if err := b.memories.SetReply(ctx, memID, reply); err != nil {
			logger.Error().Err(err).Msg("failed to store reply")
		}
	}

	for _, chunk := range splitMessage(reply, 2000) {
		if _, err := s.ChannelMessageSend(m.ChannelID, chunk); err != nil {
			logger.Error().Err(err).Str("channel", m.ChannelID).Msg("send failed")
			return
		}
	}
}

func displayName(m *discordgo.MessageCreate) string {
	if m.Member != nil && m.Member.Nick != "" {
		return m.Member.Nick
	}
	if m.Author.GlobalName != "" {
		return m.Author.GlobalName
	}
	return m.Author.Username
}
