package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/nekogravitycat/directory-portal/internal/auth"
	"github.com/nekogravitycat/directory-portal/internal/directory"
	"github.com/nekogravitycat/directory-portal/internal/yandex"
)

const (
	stateCookie = "oauth_state"
	stateTTL    = 10 * time.Minute
)

type AuthHandler struct {
	oauth         *oauth2.Config
	jwtManager    *auth.JWTManager
	api           *yandex.Client
	httpClient    *http.Client
	secureCookies bool
	log           *zap.Logger
}

func NewAuthHandler(
	oauth *oauth2.Config,
	jwtManager *auth.JWTManager,
	api *yandex.Client,
	secureCookies bool,
	log *zap.Logger,
) *AuthHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthHandler{
		oauth:         oauth,
		jwtManager:    jwtManager,
		api:           api,
		httpClient:    &http.Client{Timeout: api.Config().Timeout},
		secureCookies: secureCookies,
		log:           log.Named("auth"),
	}
}

//
// GET /api/auth/signin
//

func (h *AuthHandler) SignIn(c *gin.Context) {
	state := uuid.NewString()

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookie, state, int(stateTTL.Seconds()), "/api/auth", "", h.secureCookies, true)

	c.Redirect(http.StatusFound, h.oauth.AuthCodeURL(state))
}

//
// GET /api/auth/callback/yandex
//

func (h *AuthHandler) Callback(c *gin.Context) {
	if oauthErr := c.Query("error"); oauthErr != "" {
		h.log.Warn("authorization denied", zap.String("error", oauthErr), zap.String("description", c.Query("error_description")))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization denied", "details": oauthErr})
		return
	}

	state, err := c.Cookie(stateCookie)
	if err != nil || state == "" || state != c.Query("state") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid oauth state"})
		return
	}

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "authorization code is required"})
		return
	}

	ctx := context.WithValue(c.Request.Context(), oauth2.HTTPClient, h.httpClient)

	token, err := h.oauth.Exchange(ctx, code)
	if err != nil {
		h.log.Error("failed to exchange authorization code", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to exchange authorization code"})
		return
	}

	data, err := h.api.LoginInfo(ctx, yandex.OAuthHeader(token.AccessToken))
	if err != nil {
		h.log.Error("failed to load profile", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to load profile"})
		return
	}

	info, err := yandex.DecodeLoginInfo(data)
	if err != nil {
		h.log.Error("unreadable profile", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to load profile"})
		return
	}

	session := profileSession(info, token)

	signed, expiresAt, err := h.jwtManager.GenerateSessionToken(session)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate session"})
		return
	}

	h.log.Info("user signed in", zap.String("user_id", session.UserID))

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookie, "", -1, "/api/auth", "", h.secureCookies, true)
	c.SetCookie(auth.SessionCookie, signed, int(time.Until(expiresAt).Seconds()), "/", "", h.secureCookies, true)

	c.Redirect(http.StatusFound, "/")
}

//
// GET /api/auth/session
//

func (h *AuthHandler) Session(c *gin.Context) {
	s, ok := auth.GetSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	c.JSON(http.StatusOK, NewSessionResponse(s))
}

//
// POST /api/auth/signout
//

func (h *AuthHandler) SignOut(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.SessionCookie, "", -1, "/", "", h.secureCookies, true)
	c.Status(http.StatusNoContent)
}

// profileSession maps the Yandex profile the same way for every sign-in:
// the real name wins over the display name.
func profileSession(info yandex.LoginInfo, token *oauth2.Token) auth.Session {
	name := info.RealName
	if name == "" {
		name = info.DisplayName
	}

	return auth.Session{
		UserID:       info.ID.String(),
		Name:         name,
		Email:        info.DefaultEmail,
		Image:        directory.AvatarURL(info.DefaultAvatarID),
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenExpiry:  token.Expiry,
	}
}

// RegisterAuthRoutes registers the sign-in flow under /api/auth.
func RegisterAuthRoutes(r gin.IRouter, h *AuthHandler, sessionMiddleware gin.HandlerFunc) {
	group := r.Group("/api/auth")
	{
		group.GET("/signin", h.SignIn)
		group.GET("/callback/yandex", h.Callback)
		group.GET("/session", sessionMiddleware, h.Session)
		group.POST("/signout", h.SignOut)
	}
}
