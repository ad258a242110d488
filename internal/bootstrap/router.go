package bootstrap

import (
	fbauth "firebase.google.com/go/v4/auth"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	annhttp "github.com/Barap1/UniExplorer/internal/annotations/http"
	annservice "github.com/Barap1/UniExplorer/internal/annotations/service"
	"github.com/Barap1/UniExplorer/internal/annotations/stream"
	httpapi "github.com/Barap1/UniExplorer/internal/api/http"
	"github.com/Barap1/UniExplorer/internal/api/http/middleware"
	"github.com/Barap1/UniExplorer/internal/auth"
	"github.com/Barap1/UniExplorer/internal/bodies"
	"github.com/Barap1/UniExplorer/internal/explorers"
	"github.com/Barap1/UniExplorer/internal/leaderboard"
	"github.com/Barap1/UniExplorer/internal/tiles"
)

type RouterDeps struct {
	ServiceName    string
	Version        string
	AllowedOrigins []string

	AuthClient *fbauth.Client
	DB         *pgxpool.Pool
	Redis      *redis.Client

	Registry    *bodies.Registry
	Annotations *annservice.AnnotationService
	Stream      *stream.Handler
	Leaderboard *leaderboard.Service
	Explorers   *explorers.Repo
	TileProxy   *tiles.Proxy
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     dep.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
	}))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.DB, dep.Redis)
	healthHandler.RegisterRoutes(r)

	requireAuth := auth.RequireAuth(dep.AuthClient)

	api := r.Group("/api/v1")
	api.Use(auth.OptionalAuth(dep.AuthClient))

	bodies.NewHandler(dep.Registry).Register(api.Group("/bodies"))
	dep.TileProxy.Register(api.Group("/tiles"))
	annhttp.New(dep.Annotations).Register(api.Group("/annotations"), dep.Stream, requireAuth)
	leaderboard.NewHandler(dep.Leaderboard).Register(api.Group("/leaderboard"))
	explorers.NewHandler(dep.Explorers).Register(api.Group("/auth"), requireAuth)

	return r
}
