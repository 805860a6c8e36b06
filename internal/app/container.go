package app

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nekogravitycat/directory-portal/internal/api"
	"github.com/nekogravitycat/directory-portal/internal/auth"
	"github.com/nekogravitycat/directory-portal/internal/avatar"
	"github.com/nekogravitycat/directory-portal/internal/directory"
	"github.com/nekogravitycat/directory-portal/internal/pkg/metrics"
	proxyHttp "github.com/nekogravitycat/directory-portal/internal/proxy/http"
	"github.com/nekogravitycat/directory-portal/internal/user"
	"github.com/nekogravitycat/directory-portal/internal/yandex"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction bool
	ProdOrigins  []string
	Logger       *zap.Logger

	OAuth         auth.OAuthConfig
	SessionSecret string
	SessionTTL    time.Duration

	OrgID          string
	API360BaseURL  string
	LoginInfoURL   string
	AvatarBaseURL  string
	ProxyBaseURL   string
	RequestTimeout time.Duration

	// HTTPClient, when set, is used for every outbound call.
	HTTPClient *http.Client

	RateLimitRPS   float64
	RateLimitBurst int
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router     *gin.Engine
	JWTManager *auth.JWTManager
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) *Container {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	metrics.Register()

	// Init Components
	jwtManager := auth.NewJWTManager(cfg.SessionSecret, cfg.SessionTTL)
	oauth := auth.NewYandexOAuth(cfg.OAuth)

	yandexClient := yandex.NewClient(yandex.Config{
		LoginInfoURL: cfg.LoginInfoURL,
		API360URL:    cfg.API360BaseURL,
		AvatarURL:    cfg.AvatarBaseURL,
		Timeout:      cfg.RequestTimeout,
	}, log.Named("yandex")).WithHTTPClient(cfg.HTTPClient)

	// Proxy Module
	proxyHandler := proxyHttp.NewHandler(yandexClient, cfg.OrgID, log)

	// User Module
	userService := user.NewService(user.DirectoryClients(directory.Options{
		ProxyURL:   cfg.ProxyBaseURL,
		APIURL:     cfg.API360BaseURL,
		Timeout:    cfg.RequestTimeout,
		HTTPClient: cfg.HTTPClient,
		Logger:     log,
	}), log)

	// Avatar Module
	avatarService := avatar.NewService(yandexClient, avatar.NewImageProcessor(), log)

	// API Router Config
	routerParams := api.Config{
		IsProduction:   cfg.IsProduction,
		ProdOrigins:    cfg.ProdOrigins,
		Logger:         log,
		JWTManager:     jwtManager,
		AuthHandler:    api.NewAuthHandler(oauth, jwtManager, yandexClient, cfg.IsProduction, log),
		ProxyHandler:   proxyHandler,
		UserService:    userService,
		AvatarService:  avatarService,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	}

	// Router
	router := api.NewRouter(routerParams)

	return &Container{
		Router:     router,
		JWTManager: jwtManager,
	}
}
