package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	cron "github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/poofware/logistics-gateway/internal/app"
	"github.com/poofware/logistics-gateway/internal/config"
	"github.com/poofware/logistics-gateway/internal/constants"
	"github.com/poofware/logistics-gateway/internal/utils"
)

func main() {
	utils.InitLogger(config.AppName)
	cfg := config.LoadConfig()
	defer cfg.Close()

	application, err := app.NewApp(cfg)
	if err != nil {
		utils.Logger.Fatal("Failed to initialize application:", err)
	}
	defer application.Close()

	svc := application.Wire()

	if cfg.LDFlag_SeedDemoPartner {
		if err := app.SeedDemoPartner(context.Background(), svc.Partners, cfg.DemoPartnerSecret); err != nil {
			utils.Logger.Fatal("Failed to seed demo partner:", err)
		}
	}

	//----------------------------------------------------------------------
	// Periodic queue depth report via cron
	//----------------------------------------------------------------------
	c := cron.New()
	_, schErr := c.AddFunc(cfg.QueueMonitorSpec, func() {
		svc.QueueMonitor.LogDepths(context.Background())
	})
	if schErr != nil {
		utils.Logger.WithError(schErr).Fatal("Failed to schedule queue monitor job")
	}
	c.Start()
	defer c.Stop()

	//----------------------------------------------------------------------
	// Server
	//----------------------------------------------------------------------
	server := &http.Server{
		Addr:         ":" + cfg.AppPort,
		Handler:      application.WithCORS(application.NewRouter(svc)),
		ReadTimeout:  cfg.RequestTimeout,
		WriteTimeout: cfg.RequestTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		utils.Logger.Infof("Starting %s on port: %s", cfg.AppName, cfg.AppPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		utils.Logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		utils.Logger.WithError(err).Error("Server stopped with error")
	}
}
