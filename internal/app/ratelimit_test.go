package app

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/directory-portal/internal/auth"
)

func TestRateLimitIsPerClient(t *testing.T) {
	appContainer, appSrv := startApp(1, 2)
	defer appSrv.Close()

	get := func(path, remoteAddr, accessToken string) *httptest.ResponseRecorder {
		token, _, err := appContainer.JWTManager.GenerateSessionToken(auth.Session{UserID: "1", AccessToken: accessToken})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = remoteAddr
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		appContainer.Router.ServeHTTP(w, req)
		return w
	}

	t.Run("Signed-in users do not share the proxy bucket", func(t *testing.T) {
		for i := 1; i <= 5; i++ {
			w := get("/v1/me", fmt.Sprintf("203.0.113.%d:4000", i), fmt.Sprintf("y0_client-%d", i))
			assert.Equal(t, http.StatusOK, w.Code, "client %d: %s", i, w.Body.String())
		}
	})

	t.Run("One client is still limited", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, get("/v1/me", "198.51.100.1:4000", "y0_busy").Code)
		assert.Equal(t, http.StatusOK, get("/v1/me", "198.51.100.1:4000", "y0_busy").Code)

		w := get("/v1/me", "198.51.100.1:4000", "y0_busy")
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.JSONEq(t, `{"error":"rate limit exceeded"}`, w.Body.String())
	})

	t.Run("Direct proxy callers are limited by IP", func(t *testing.T) {
		call := func(credential string) int {
			req := httptest.NewRequest(http.MethodGet, "/api/proxy/user", nil)
			req.RemoteAddr = "198.51.100.2:4000"
			req.Header.Set("Authorization", "OAuth "+credential)
			w := httptest.NewRecorder()
			appContainer.Router.ServeHTTP(w, req)
			return w.Code
		}

		assert.Equal(t, http.StatusOK, call("y0_a"))
		assert.Equal(t, http.StatusOK, call("y0_b"))
		assert.Equal(t, http.StatusTooManyRequests, call("y0_c"))
	})
}
