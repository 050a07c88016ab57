package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/lunabot/luna/pkg/log"
)

// Config holds all tunables. Everything except the Discord token has a
// working default.
type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN"`

	// Primary completion provider.
	GeminiAPIKey   string `env:"GEMINI_API_KEY"`
	GeminiTokenURL string `env:"GEMINI_TOKEN_URL"`
	GeminiBaseURL  string `env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com/v1beta"`
	GeminiModel    string `env:"GEMINI_MODEL"`

	// Secondary OpenAI-compatible provider. Optional.
	GithubToken   string `env:"GITHUB_TOKEN"`
	GithubBaseURL string `env:"GITHUB_BASE_URL" envDefault:"https://models.inference.ai.azure.com"`
	GithubModel   string `env:"GITHUB_MODEL" envDefault:"gpt-4o-mini"`

	// Persona and trigger policy.
	BotName      string        `env:"BOT_NAME" envDefault:"Luna"`
	PersonaPath  string        `env:"PERSONA_PATH"`
	Cooldown     time.Duration `env:"COOLDOWN" envDefault:"5s"`
	ReplyChance  float64       `env:"REPLY_CHANCE" envDefault:"0.02"`
	NameMatching bool          `env:"NAME_MATCHING" envDefault:"true"`

	// Memory.
	HistoryWindow int    `env:"HISTORY_WINDOW" envDefault:"10"`
	DBPath        string `env:"DB_PATH" envDefault:"data/luna.db"`

	StatusAddr string `env:"STATUS_ADDR" envDefault:":8787"`
	Debug      bool   `env:"DEBUG" envDefault:"false"`
}

// New loads .env (if present), parses the environment and validates the
// credentials that have no fallback. Misconfiguration is fatal at startup.
func New(ctx context.Context) *Config {
	logger := log.FromCtx(ctx)

	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg("no .env file, using system environment")
	}

	c := &Config{}
	if err := env.Parse(c); err != nil {
		logger.Fatal().Err(err).Msg("failed to parse config")
	}

	if c.DiscordToken == "" {
		logger.Fatal().Msg("DISCORD_TOKEN is not set")
	}
	if c.HistoryWindow < 1 {
		c.HistoryWindow = 10
	}
	if c.ReplyChance < 0 || c.ReplyChance > 1 {
		c.ReplyChance = 0
	}

	return c
}

// IsDebug peeks at DEBUG before the logger exists.
func IsDebug() bool {
	c := struct {
		Debug bool `env:"DEBUG" envDefault:"false"`
	}{}
	_ = env.Parse(&c)
	return c.Debug
}
