// One-shot maintenance tool: recomputes the leaderboard and refreshes the
// Redis cache, then exits. Useful after bulk imports or when the cache was
// flushed and the first viewer should not pay for the scan.
package main

import (
	"context"
	"log"
	"time"

	"github.com/Barap1/UniExplorer/config"
	annrepo "github.com/Barap1/UniExplorer/internal/annotations/repository"
	"github.com/Barap1/UniExplorer/internal/auth"
	"github.com/Barap1/UniExplorer/internal/bootstrap"
	"github.com/Barap1/UniExplorer/internal/leaderboard"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	_, fsClient, err := auth.InitializeFirebase(ctx, &cfg.Firebase)
	if err != nil {
		log.Fatalf("firebase: %v", err)
	}
	defer fsClient.Close()

	redisClient, err := bootstrap.OpenRedis(ctx, cfg.Redis)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer redisClient.Close()

	cache := leaderboard.NewBoardCache(redisClient, cfg.Leaderboard.CacheTTL)
	svc := leaderboard.NewService(annrepo.NewAnnotationRepository(fsClient), cache, cfg.Leaderboard.TopN)

	board, err := svc.Refresh(ctx)
	if err != nil {
		log.Fatalf("refresh: %v", err)
	}

	log.Printf("leaderboard refreshed: %d discoveries by %d explorers", board.TotalDiscoveries, board.TotalExplorers)
}
