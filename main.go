package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "citycompass",
	Short: "Civic issue reporting service",
	Long: `citycompass lets citizens report municipal problems and lets verified
city departments work through them.

Running it without a command starts the HTTP server.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		slog.Error("command failed", "err", err)
		os.Exit(1)
	}
}
