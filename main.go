package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aagaur/studiocms/config"
	"github.com/aagaur/studiocms/media"
	"github.com/aagaur/studiocms/records"
	"github.com/aagaur/studiocms/routes"
	"github.com/aagaur/studiocms/utils"
)

func main() {
	cfg := config.Load()

	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}
	defer utils.Logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := config.InitDatabase(records.Models()...)
	if err != nil {
		utils.Sugar.Fatalf("database init failed: %v", err)
	}
	var store records.Store
	if db != nil {
		store = records.NewGormStore(db)
	} else {
		utils.Sugar.Warn("DB_DRIVER=memory: records are kept in process and lost on restart")
		store = records.NewMemoryStore()
	}

	host, err := media.NewHost(ctx, cfg)
	if err != nil {
		utils.Sugar.Fatalf("media host init failed: %v", err)
	}
	sweeper := media.NewSweeper(db, host, time.Duration(cfg.OrphanSweepMinutes)*time.Minute)
	gateway := media.NewGateway(host, media.Options{
		Folder:      cfg.MediaFolder,
		Concurrency: cfg.UploadConcurrency,
		Retries:     cfg.UploadRetries,
		Orphans:     sweeper,
	})

	cache := utils.NewCache(utils.InitRedis(cfg), time.Duration(cfg.CacheTTLSeconds)*time.Second)
	svc := routes.Services{
		Projects: records.NewService(records.Projects, store, gateway, cache),
		Events:   records.NewService(records.Events, store, gateway, cache),
		Team:     records.NewService(records.Team, store, gateway, cache),
		Interns:  records.NewService(records.Interns, store, gateway, cache),
	}

	mediaDir := ""
	if local, ok := host.(*media.LocalHost); ok {
		mediaDir = local.Dir()
	}
	r := routes.SetupRouter(svc, media.LimitsFrom(cfg), mediaDir)

	go sweeper.Run(ctx)

	utils.Sugar.Infof("starting server on port %s, media host %s, store %s", cfg.AppPort, host.Name(), cfg.DBDriver)
	if err := utils.GraceServer(ctx, ":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
