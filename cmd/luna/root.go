package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/lunabot/luna/internal/config"
	"github.com/lunabot/luna/internal/version"
	"github.com/lunabot/luna/pkg/log"
)

var debug bool

var rootCmd = &cobra.Command{
	Use:   "luna",
	Short: version.AppName + " — " + version.AppDescription,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", config.IsDebug(), "enable debug logging")
}

func setupLogger(ctx context.Context) (context.Context, func()) {
	return log.NewContextWithLogger(ctx, debug || config.IsDebug())
}
