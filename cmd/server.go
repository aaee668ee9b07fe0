package cmd

import (
	"context"
	"golang-pe-backtest/internal/delivery/http"
	"log"
	httpNet "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the backtest API and run the scheduled backtest",
	Run:   Serve,
}

func Serve(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appDep, err := NewAppDependency(ctx)
	if err != nil {
		log.Fatalf("Failed to create app dependency: %v", err)
	}

	services := appDep.Services()
	httpHandler := http.NewHttpAPIHandler(ctx, appDep.echo, appDep.cfg, appDep.validator, services)

	if appDep.cfg.Scheduler.Enabled {
		if err := services.SchedulerService.Start(ctx); err != nil {
			log.Fatalf("Failed to start scheduler: %v", err)
		}
	}

	apiServer := NewHTTPServer(ctx, appDep, httpHandler)
	go func() {
		if err := apiServer.Start(); err != nil && err != httpNet.ErrServerClosed {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	<-ctx.Done()
	appDep.log.Info("Shutting down gracefully...")

	if err := apiServer.Stop(); err != nil {
		appDep.log.Error("Failed to stop HTTP server", zap.Error(err))
	}

	if appDep.cfg.Scheduler.Enabled {
		select {
		case <-services.SchedulerService.Stop().Done():
		case <-time.After(appDep.cfg.Scheduler.TimeoutDuration):
			appDep.log.Warn("Timeout while waiting for running backtest, forcing shutdown")
		}
	}

	if err := appDep.Close(); err != nil {
		log.Fatalf("Failed to close app dependency: %v", err)
	}
}
