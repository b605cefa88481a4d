package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/selimozcann/PhishHunter/internal/scanner"
	"github.com/selimozcann/PhishHunter/internal/web"
)

func newServeCmd() *cobra.Command {
	var addr string
	c := &cobra.Command{
		Use:   "serve",
		Short: "Serve the scan API and web form",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Web.ListenAddr = addr
			}
			logger := newLogger()
			sc, err := scanner.New(cfg, scanner.WithLogger(logger))
			if err != nil {
				return err
			}
			srv := web.NewServer(cfg, sc, logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start() }()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}
			logger.Println("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Stop(shutdownCtx)
		},
	}
	c.Flags().StringVarP(&addr, "listen", "l", "", "Listen address (default from config)")
	return c
}
