package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/agrodepot/internal/config"
	"github.com/mamadbah2/agrodepot/internal/domain/models"
	"github.com/mamadbah2/agrodepot/internal/repository/memory"
	"github.com/mamadbah2/agrodepot/internal/repository/mongodb"
	"github.com/mamadbah2/agrodepot/internal/repository/sheets"
	"github.com/mamadbah2/agrodepot/internal/scheduler"
	"github.com/mamadbah2/agrodepot/internal/server/handlers"
	"github.com/mamadbah2/agrodepot/internal/server/router"
	inventorysvc "github.com/mamadbah2/agrodepot/internal/service/inventory"
	registrysvc "github.com/mamadbah2/agrodepot/internal/service/registry"
	reportingsvc "github.com/mamadbah2/agrodepot/internal/service/reporting"
	"github.com/mamadbah2/agrodepot/pkg/clients/alerting"
	"github.com/mamadbah2/agrodepot/pkg/logger"
)

const actorCacheTTL = time.Minute

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	var (
		store      models.Store
		reportSink reportingsvc.ReportSink
	)
	if cfg.MongoDB.URI != "" {
		mongoStore, err := mongodb.NewStore(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName, baseLogger.Named("repo.mongo"))
		if err != nil {
			baseLogger.Fatal("failed to init mongodb store", zap.Error(err))
		}
		defer func() {
			if err := mongoStore.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		store = mongoStore
		reportSink = mongoStore
	} else {
		baseLogger.Warn("MONGODB_URI not set, using volatile in-memory store")
		store = memory.NewStore()
	}

	var alertClient alerting.Client
	if cfg.AlertsEnabled() {
		alertClient = alerting.NewWebhookClient(cfg.Alerts)
		baseLogger.Info("alert webhook enabled")
	} else {
		baseLogger.Warn("ALERT_WEBHOOK_URL not set, alerts will only be logged")
	}
	dispatcher := alerting.NewEventBridge(alertClient, baseLogger.Named("alerts"))

	inventorySvc := inventorysvc.NewService(store, dispatcher, baseLogger.Named("svc.inventory"))
	registrySvc := registrysvc.NewService(store, inventorySvc, baseLogger.Named("svc.registry"))

	var exporter reportingsvc.RowExporter
	if cfg.SheetsEnabled() {
		sheetExporter, err := sheets.NewExporter(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets exporter", zap.Error(err))
		}
		exporter = sheetExporter
		baseLogger.Info("sheets report export enabled")
	}
	reportingSvc := reportingsvc.NewService(store, inventorySvc, reportSink, exporter, baseLogger.Named("svc.reporting"))

	sched := scheduler.New(cfg.Reporting, reportingSvc, inventorySvc, store, alertClient, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	actorCache := handlers.NewActorCache(actorCacheTTL)
	registryHandler := handlers.NewRegistryHandler(registrySvc, actorCache, baseLogger.Named("handlers.registry"))
	inventoryHandler := handlers.NewInventoryHandler(inventorySvc, registrySvc, baseLogger.Named("handlers.inventory"))
	engine := router.New(registryHandler, inventoryHandler, registrySvc, actorCache, baseLogger.Named("router"))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
