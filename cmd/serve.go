package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/abhisek/practix/internal/httpapi"
	"github.com/abhisek/practix/internal/metrics"
	"github.com/abhisek/practix/internal/tracing"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}
		gin.SetMode(cfg.Server.Mode)
		metrics.Init()

		shutdown, err := tracing.Setup(ctx, cfg.Tracing, version, log)
		if err != nil {
			return err
		}
		defer func() {
			if err := shutdown(context.WithoutCancel(ctx)); err != nil {
				log.Warn("tracing shutdown failed", "error", err)
			}
		}()

		svc, err := newServices(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer svc.Close()

		checks := map[string]httpapi.HealthCheck{"store": svc.store.Ping}
		if svc.cache != nil {
			checks["redis"] = svc.cache.HealthCheck
		}

		srv := httpapi.New(httpapi.Deps{
			Graph:   svc.graph,
			Sets:    svc.sets,
			Tracker: svc.tracker,
			Ledger:  svc.ledger,
			Log:     log,
			Checks:  checks,
		})
		return srv.Run(ctx, cfg.Server.Addr, cfg.Server.ShutdownTimeout)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
}
