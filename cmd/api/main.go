package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Barap1/UniExplorer/config"
	annrepo "github.com/Barap1/UniExplorer/internal/annotations/repository"
	annservice "github.com/Barap1/UniExplorer/internal/annotations/service"
	"github.com/Barap1/UniExplorer/internal/annotations/stream"
	"github.com/Barap1/UniExplorer/internal/auth"
	"github.com/Barap1/UniExplorer/internal/bodies"
	"github.com/Barap1/UniExplorer/internal/bootstrap"
	"github.com/Barap1/UniExplorer/internal/explorers"
	"github.com/Barap1/UniExplorer/internal/leaderboard"
	"github.com/Barap1/UniExplorer/internal/tiles"
)

const serviceName = "uniexplorer-api"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	bootstrap.SetGinMode(cfg.App.Environment)

	authClient, fsClient, err := auth.InitializeFirebase(ctx, &cfg.Firebase)
	if err != nil {
		log.Fatalf("firebase: %v", err)
	}
	defer fsClient.Close()

	db, err := bootstrap.OpenDB(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	redisClient, err := bootstrap.OpenRedis(ctx, cfg.Redis)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer redisClient.Close()

	explorerRepo := explorers.NewRepo(db)
	if err := explorerRepo.EnsureSchema(ctx); err != nil {
		log.Fatalf("schema: %v", err)
	}

	registry := bodies.NewRegistry()
	annotationRepo := annrepo.NewAnnotationRepository(fsClient)

	watcher := stream.WatcherFunc(func(wctx context.Context, body, userID string) stream.Subscription {
		return annotationRepo.Watch(wctx, body, userID)
	})

	boardCache := leaderboard.NewBoardCache(redisClient, cfg.Leaderboard.CacheTTL)
	boardSvc := leaderboard.NewService(annotationRepo, boardCache, cfg.Leaderboard.TopN)

	scheduler := leaderboard.NewScheduler(boardSvc, cfg.Leaderboard.RefreshInterval)
	if err := scheduler.Start(ctx); err != nil {
		log.Fatalf("scheduler: %v", err)
	}
	defer scheduler.Stop()

	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName:    serviceName,
		Version:        cfg.App.Version,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AuthClient:     authClient,
		DB:             db,
		Redis:          redisClient,
		Registry:       registry,
		Annotations:    annservice.NewAnnotationService(annotationRepo, registry),
		Stream:         stream.NewHandler(watcher, registry, cfg.Server.AllowedOrigins),
		Leaderboard:    boardSvc,
		Explorers:      explorerRepo,
		TileProxy:      tiles.NewProxy(registry, tiles.NewTileCache(redisClient, cfg.Tiles.CacheTTL), cfg.Tiles.UpstreamTimeout),
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Printf("%s listening on :%s", serviceName, cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
