package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lunabot/luna/internal/ai"
	"github.com/lunabot/luna/internal/config"
	"github.com/lunabot/luna/internal/discord"
	"github.com/lunabot/luna/internal/mind"
	"github.com/lunabot/luna/internal/status"
	"github.com/lunabot/luna/internal/storage/sqlite"
	"github.com/lunabot/luna/pkg/log"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the bot",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)
		logger.Info().Msg("starting luna")

		cfg := config.New(ctx)

		db, err := sqlite.NewDB(ctx, cfg.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()

		memories := sqlite.NewMemories(db)
		profiles := sqlite.NewProfiles(db)

		persona := mind.LoadPersona(cfg.PersonaPath)
		completer := ai.NewCompleter(buildPrimary(cfg), buildSecondary(cfg), persona)
		if !completer.HasProvider() {
			logger.Warn().Msg("no AI provider configured, every reply will be an apology")
		}

		bot := discord.NewBot(cfg, memories, profiles, completer)

		go status.RunServer(ctx, cfg.StatusAddr, bot.GuildCount)

		if err := bot.Run(ctx); err != nil {
			return err
		}
		logger.Info().Msg("luna has been shut down gracefully")
		return nil
	},
}

func buildPrimary(cfg *config.Config) ai.Provider {
	if cfg.GeminiAPIKey == "" && cfg.GeminiTokenURL == "" {
		return nil
	}
	return ai.NewGemini(ai.GeminiConfig{
		BaseURL:  cfg.GeminiBaseURL,
		APIKey:   cfg.GeminiAPIKey,
		TokenURL: cfg.GeminiTokenURL,
		Model:    cfg.GeminiModel,
	})
}

func buildSecondary(cfg *config.Config) ai.Provider {
	if cfg.GithubToken == "" {
		return nil
	}
	return ai.NewGitHubModels(cfg.GithubBaseURL, cfg.GithubToken, cfg.GithubModel)
}

func init() {
	rootCmd.AddCommand(startCmd)
}
