package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MEKXH/nudge/internal/audit"
	"github.com/MEKXH/nudge/internal/config"
	"github.com/MEKXH/nudge/internal/notify"
	"github.com/MEKXH/nudge/internal/server"
	"github.com/MEKXH/nudge/internal/store"
	"github.com/spf13/cobra"
)

// NewServeCmd creates the serve command
func NewServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the broker in the foreground",
		Long: `Starts the broker on 127.0.0.1 and blocks until it shuts down. The
broker stops on SIGINT/SIGTERM, on a shutdown request from the stop
command, or when the watchdog finds it idle with nothing pending.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if port != 0 {
				cfg.Server.Port = port
			}
			return runServe(cfg)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "Port to listen on (overrides config)")
	return cmd
}

func runServe(cfg *config.Config) error {
	srv := server.New(cfg.Server, store.New(), server.Options{
		Notifier: notify.NewDispatcher(cfg.Notify),
		Audit:    audit.NewWriter(config.StateDir()),
	})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		sig := <-sigCh
		slog.Info("signal received, shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			slog.Warn("shutdown error", "error", err)
		}
	}()

	return srv.Start()
}
