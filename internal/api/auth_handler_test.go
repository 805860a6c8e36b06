package api

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/nekogravitycat/directory-portal/internal/auth"
	"github.com/nekogravitycat/directory-portal/internal/yandex"
)

func newTestAuthHandler(t *testing.T, upstream http.Handler) (*gin.Engine, *auth.JWTManager) {
	gin.SetMode(gin.TestMode)

	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	oauth := auth.NewYandexOAuth(auth.OAuthConfig{
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost/api/auth/callback/yandex",
		Endpoint: oauth2.Endpoint{
			AuthURL:   srv.URL + "/authorize",
			TokenURL:  srv.URL + "/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	})
	api := yandex.NewClient(yandex.Config{LoginInfoURL: srv.URL + "/info", Timeout: time.Second}, nil)

	r := gin.New()
	RegisterAuthRoutes(r, NewAuthHandler(oauth, jwtManager, api, false, nil), auth.SessionRequired(jwtManager))
	return r, jwtManager
}

func callback(r http.Handler, query string, state string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/auth/callback/yandex?"+query, nil)
	if state != "" {
		req.AddCookie(&http.Cookie{Name: stateCookie, Value: state})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func tokenServer(info string, infoStatus int) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"access_token":"y0_abc","token_type":"bearer","expires_in":3600}`)
	})
	mux.HandleFunc("GET /info", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(infoStatus)
		_, _ = io.WriteString(w, info)
	})
	return mux
}

func TestCallback(t *testing.T) {
	t.Run("Denied by user", func(t *testing.T) {
		r, _ := newTestAuthHandler(t, tokenServer("", http.StatusOK))
		w := callback(r, "error=access_denied", "s")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "access_denied")
	})

	t.Run("Missing state cookie", func(t *testing.T) {
		r, _ := newTestAuthHandler(t, tokenServer("", http.StatusOK))
		w := callback(r, "code=c&state=s", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Missing code", func(t *testing.T) {
		r, _ := newTestAuthHandler(t, tokenServer("", http.StatusOK))
		w := callback(r, "state=s", "s")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Profile unavailable", func(t *testing.T) {
		r, _ := newTestAuthHandler(t, tokenServer(`{"error":"expired"}`, http.StatusUnauthorized))
		w := callback(r, "code=c&state=s", "s")
		assert.Equal(t, http.StatusBadGateway, w.Code)
	})

	t.Run("Session from display name", func(t *testing.T) {
		r, jwtManager := newTestAuthHandler(t, tokenServer(`{"id":"42","display_name":"ivan","default_email":"ivan@yandex.ru"}`, http.StatusOK))
		w := callback(r, "code=c&state=s", "s")
		require.Equal(t, http.StatusFound, w.Code, w.Body.String())

		var session *http.Cookie
		for _, c := range w.Result().Cookies() {
			if c.Name == auth.SessionCookie {
				session = c
			}
		}
		require.NotNil(t, session)

		claims, err := jwtManager.ParseAndValidate(session.Value)
		require.NoError(t, err)
		s := claims.Session()
		assert.Equal(t, "42", s.UserID)
		assert.Equal(t, "ivan", s.Name)
		assert.Equal(t, "y0_abc", s.AccessToken)
		assert.Empty(t, s.Image)
	})
}

func TestProfileSession(t *testing.T) {
	token := &oauth2.Token{AccessToken: "y0_abc", RefreshToken: "r"}

	s := profileSession(yandex.LoginInfo{
		ID:              "7",
		RealName:        "Иванов Иван",
		DisplayName:     "ivan",
		DefaultAvatarID: "0/0-0",
	}, token)

	assert.Equal(t, "Иванов Иван", s.Name)
	assert.Equal(t, "https://avatars.yandex.net/get-yapic/0/0-0/islands-200", s.Image)
	assert.Equal(t, "r", s.RefreshToken)
}
