package status

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/lunabot/luna/internal/version"
	"github.com/lunabot/luna/pkg/log"
)

// Health is the liveness payload.
type Health struct {
	App     string `json:"app"`
	Version string `json:"version"`
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Guilds  int    `json:"guilds"`
}

// RunServer starts the liveness HTTP server and blocks until ctx is
// cancelled; run in a goroutine. guildCount may be nil.
func RunServer(ctx context.Context, addr string, guildCount func() int) {
	logger := log.FromCtx(ctx)
	started := time.Now()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		guilds := 0
		if guildCount != nil {
			guilds = guildCount()
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(Health{
			App:     version.AppName,
			Version: version.AppVersion,
			Status:  "ok",
			Uptime:  time.Since(started).Round(time.Second).String(),
			Guilds:  guilds,
		})
	})

	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		logger.Info().Msg("shutting down status server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info().Str("addr", addr).Msg("status server listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		// Log but never kill the process; the bot can live without liveness.
		logger.Error().Err(err).Msg("status server exited")
	}
}
