package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/lunabot/luna/internal/version"
	"github.com/lunabot/luna/pkg/log"
)

func commandDefinitions() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "forget",
			Description: "Make Luna forget everything she remembers about you",
		},
		{
			Name:        "about",
			Description: "Who is Luna?",
		},
	}
}

func (b *Bot) registerCommands() error {
	appID := b.dg.State.User.ID
	for _, def := range commandDefinitions() {
		if _, err := b.dg.ApplicationCommandCreate(appID, "", def); err != nil {
			return fmt.Errorf("failed to register /%s: %w", def.Name, err)
		}
	}
	return nil
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	switch i.ApplicationCommandData().Name {
	case "forget":
		b.handleForget(s, i)
	case "about":
		b.handleAbout(s, i)
	}
}

func (b *Bot) handleForget(s *discordgo.Session, i *discordgo.InteractionCreate) {
	logger := log.FromCtx(b.ctx)
	userID := interactionUserID(i)
	if userID == "" {
		return
	}

	n, err := b.memories.Forget(b.ctx, userID)
	msg := "There. Like we just met. ✨"
	if err != nil {
		logger.Error().Err(err).Str("user", userID).Msg("forget failed")
		msg = "I tried to forget, but something got in the way. Try again?"
	} else {
		logger.Info().Str("user", userID).Int64("records", n).Msg("forgot user")
	}

	respondEphemeral(s, i, msg)
}

func (b *Bot) handleAbout(s *discordgo.Session, i *discordgo.InteractionCreate) {
	msg := fmt.Sprintf("**%s** — %s\nversion %s", version.AppName, version.AppDescription, version.AppVersion)
	respondEphemeral(s, i, msg)
}

func respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, msg string) {
	_ = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: msg,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}
