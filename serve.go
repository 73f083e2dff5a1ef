package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"citycompass/config"
	"citycompass/routes"
	"citycompass/services"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE:  runServe,
}

func init() {
	for _, cmd := range []*cobra.Command{rootCmd, serveCmd} {
		cmd.Flags().Bool("seed", true, "Create the bootstrap departments and sample issues if missing")
	}
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	store, err := config.OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if seed, _ := cmd.Flags().GetBool("seed"); seed {
		if err := services.Seed(ctx, store); err != nil {
			return err
		}
	}

	rdb, err := config.ConnectRedis(ctx, cfg)
	if err != nil {
		slog.Warn("rate limiting disabled", "err", err)
	}
	if rdb != nil {
		defer rdb.Close()
	}

	router, err := routes.NewRouter(cfg, store, rdb)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		slog.Info("Server listening", "addr", srv.Addr, "driver", cfg.DBDriver, "strict_transitions", cfg.StrictTransitions)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
