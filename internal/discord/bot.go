package discord

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/lunabot/luna/internal/ai"
	"github.com/lunabot/luna/internal/config"
	"github.com/lunabot/luna/internal/mind"
	"github.com/lunabot/luna/internal/storage/sqlite"
	"github.com/lunabot/luna/pkg/log"
)

// Bot wires the Discord session to the trigger policy, the memory store and
// the completion client.
type Bot struct {
	dg        *discordgo.Session
	cfg       *config.Config
	memories  *sqlite.Memories
	profiles  *sqlite.Profiles
	completer *ai.Completer
	trigger   *mind.Trigger
	limiter   *mind.LLMRateLimiter

	ctx context.Context // run context, carries the logger into handlers
}

func NewBot(cfg *config.Config, memories *sqlite.Memories, profiles *sqlite.Profiles, completer *ai.Completer) *Bot {
	return &Bot{
		cfg:       cfg,
		memories:  memories,
		profiles:  profiles,
		completer: completer,
		trigger: mind.NewTrigger(mind.TriggerConfig{
			BotName:      cfg.BotName,
			Cooldown:     cfg.Cooldown,
			ReplyChance:  cfg.ReplyChance,
			NameMatching: cfg.NameMatching,
		}),
		limiter: mind.DefaultLLMLimiter(),
	}
}

// Run opens the Discord session and blocks until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	b.ctx = ctx
	logger := log.FromCtx(ctx)

	dg, err := discordgo.New("Bot " + b.cfg.DiscordToken)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	b.dg = dg

	b.configureIntents()
	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onMessageCreate)
	dg.AddHandler(b.onInteractionCreate)

	if err := dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer dg.Close()

	go mind.RunCooldownCleaner(ctx, b.trigger)

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received, closing Discord session")
	return nil
}

func (b *Bot) configureIntents() {
	b.dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent
}

// GuildCount reports how many guilds the session currently sees; used by the
// status endpoint.
func (b *Bot) GuildCount() int {
	if b.dg == nil || b.dg.State == nil {
		return 0
	}
	return len(b.dg.State.Guilds)
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	logger := log.FromCtx(b.ctx)

	if err := b.registerCommands(); err != nil {
		logger.Error().Err(err).Msg("failed to register slash commands")
	}

	logger.Info().
		Str("user", r.User.Username).
		Int("guilds", len(r.Guilds)).
		Msgf("%s is awake", b.cfg.BotName)
}

// splitMessage chunks a reply at the platform message limit, preferring to
// break at newlines.
func splitMessage(msg string, limit int) []string {
	var result []string
	for len(msg) > limit {
		cut := strings.LastIndex(msg[:limit], "\n")
		if cut == -1 {
			cut = limit
		}
		result = append(result, strings.TrimSpace(msg[:cut]))
		msg = strings.TrimSpace(msg[cut:])
	}
	if msg != "" {
		result = append(result, msg)
	}
	return result
}
