package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leadflow-be/internal/bootstrap"
	"leadflow-be/internal/config"
	"leadflow-be/internal/server"
	"leadflow-be/internal/tracer"
	"leadflow-be/pkg/database"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

func main() {
	cfg := config.Load()

	// 1. Initialize Database
	var gormDB *gorm.DB
	if cfg.Database.Connection != "" {
		db, err := database.Open(cfg.Database.Connection, database.ForEnvironment(cfg.App.IsProduction()))
		if err != nil {
			log.Panicf("Unable to connect to GORM DB: %v", err)
		}
		gormDB = db
	}

	// 2. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)
	defer container.Close()

	// 3. Initialize Tracer (opt-in) before the otelfiber middleware is built
	shutdownTracer := tracer.InitTracer(cfg.Tracing, cfg.App.Environment, container.Logger)
	defer shutdownTracer(context.Background())

	srv := server.New(cfg, container)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Run hub, notification consumer and HTTP server until a signal or failure
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		container.Hub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		return container.NotificationService.Start(gctx)
	})
	g.Go(srv.Run)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Printf("Server stopped: %v", err)
	}
}
