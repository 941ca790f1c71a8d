package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/heritage-cli/internal/api"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the heritage search HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if servePort != 0 {
			cfg.Server.Port = servePort
		}

		env, err := initSearch(cfg, "serve")
		if err != nil {
			return err
		}

		srv := api.NewServer(env.Service, api.Options{
			Port:            cfg.Server.Port,
			CORSOrigins:     cfg.Server.CORSOrigins,
			DefaultRadiusKm: cfg.Search.DefaultRadiusKm,
			RequestTimeout:  cfg.Search.Timeout() + 10*time.Second,
		}, zap.L().With(zap.String("component", "api")))

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Stop(shutdownCtx)
		}()

		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
