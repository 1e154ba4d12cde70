package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/paw-chain/pawdex/api"
	"github.com/paw-chain/pawdex/app"
	"github.com/paw-chain/pawdex/app/telemetry"
)

// StartCmd runs the node: REST/RPC API, monitoring endpoints and the fee
// distribution scheduler, until SIGINT or SIGTERM.
func StartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Run the node",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			nc, err := getNodeContext(cmd)
			if err != nil {
				return err
			}
			cfg := nc.config
			logger := nc.logger

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			tracing, err := telemetry.NewProvider(cfg.Telemetry)
			if err != nil {
				return err
			}
			defer func() {
				if err := tracing.Shutdown(context.Background()); err != nil {
					logger.Error("failed to shut down tracing", "error", err)
				}
			}()

			dexApp, err := openApp(cmd, app.WithTracer(tracing.Tracer()))
			if err != nil {
				return err
			}
			defer func() {
				if err := dexApp.Close(); err != nil {
					logger.Error("failed to close database", "error", err)
				}
			}()

			apiCfg := api.DefaultConfig()
			apiCfg.Address = cfg.APIAddress
			apiCfg.MonitorAddress = cfg.MonitorAddress
			apiCfg.RateLimitRPS = cfg.RateLimit
			apiCfg.RateLimitBurst = cfg.RateBurst

			server := api.NewServer(dexApp, apiCfg, logger)
			monitor := api.NewMonitor(dexApp, dexApp, logger)
			scheduler := app.NewScheduler(dexApp, cfg.SchedulerInterval, logger)

			logger.Info("starting node", "home", cfg.Home, "height", dexApp.Height())

			g, gCtx := errgroup.WithContext(ctx)
			g.Go(func() error { return server.Start(gCtx) })
			g.Go(func() error { return monitor.Start(gCtx, apiCfg.MonitorAddress) })
			g.Go(func() error {
				scheduler.Run(gCtx)
				return nil
			})
			if err := g.Wait(); err != nil {
				return err
			}

			logger.Info("node stopped", "height", dexApp.Height())
			return nil
		},
	}
}
