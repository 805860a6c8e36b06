package api

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nekogravitycat/directory-portal/internal/auth"
	"github.com/nekogravitycat/directory-portal/internal/avatar"
	avatarHttp "github.com/nekogravitycat/directory-portal/internal/avatar/http"
	"github.com/nekogravitycat/directory-portal/internal/pkg/metrics"
	proxyHttp "github.com/nekogravitycat/directory-portal/internal/proxy/http"
	"github.com/nekogravitycat/directory-portal/internal/user"
	userHttp "github.com/nekogravitycat/directory-portal/internal/user/http"
)

// Config holds everything the router needs.
type Config struct {
	IsProduction bool
	ProdOrigins  []string
	Logger       *zap.Logger

	JWTManager    *auth.JWTManager
	AuthHandler   *AuthHandler
	ProxyHandler  *proxyHttp.Handler
	UserService   user.Service
	AvatarService avatar.Service

	RateLimitRPS   float64
	RateLimitBurst int
}

// NewRouter initializes the HTTP router engine.
// It is responsible for assembling middleware (CORS, Logger, Auth) and registering routes for various modules.
func NewRouter(cfg Config) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()

	// Global Middleware:
	// - RequestID + RequestLogger: one structured log line per request.
	// - Recovery: Captures panics to prevent server crashes and returns a 500 error.
	// - Instrument: Prometheus request metrics.
	r.Use(RequestID(), RequestLogger(log.Named("http")), gin.Recovery(), metrics.Instrument())

	// Configure CORS (Cross-Origin Resource Sharing).
	// Cookies carry the session, so credentials are allowed.
	config := cors.DefaultConfig()
	if cfg.IsProduction {
		config.AllowOrigins = cfg.ProdOrigins
	} else {
		config.AllowOrigins = []string{
			"http://localhost:3000", // Front-end dev server
			"http://localhost:8081", // Swagger
		}
	}
	config.AllowCredentials = true
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", requestIDHeader}
	config.ExposeHeaders = []string{requestIDHeader}
	if len(config.AllowOrigins) > 0 {
		r.Use(cors.New(config))
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// sessionMiddleware: Validates the session cookie or Bearer JWT.
	sessionMiddleware := auth.SessionRequired(cfg.JWTManager)

	RegisterAuthRoutes(r, cfg.AuthHandler, sessionMiddleware)
	proxyHttp.RegisterRoutes(r, cfg.ProxyHandler, RateLimitBy(cfg.RateLimitRPS, cfg.RateLimitBurst, ProxyRateKey))

	// Initialize HTTP Handlers for each module (injecting Service dependencies).
	userHandler := userHttp.NewHandler(cfg.UserService)
	avatarHandler := avatarHttp.NewHandler(cfg.AvatarService)

	// Register API routes under /v1
	v1 := r.Group("/v1", RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
	{
		userHttp.RegisterRoutes(v1, userHandler, sessionMiddleware)
		avatarHttp.RegisterRoutes(v1, avatarHandler)
	}

	return r
}
