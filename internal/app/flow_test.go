package app

import (
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/directory-portal/internal/api"
	"github.com/nekogravitycat/directory-portal/internal/auth"
	"github.com/nekogravitycat/directory-portal/internal/directory"
	proxyHttp "github.com/nekogravitycat/directory-portal/internal/proxy/http"
	"github.com/nekogravitycat/directory-portal/internal/pkg/response"
	userHttp "github.com/nekogravitycat/directory-portal/internal/user/http"
)

func TestSignInFlow(t *testing.T) {
	var state *http.Cookie
	var session *http.Cookie

	t.Run("Sign in redirects to Yandex", func(t *testing.T) {
		w := executeRequest("GET", "/api/auth/signin", nil, "")
		require.Equal(t, http.StatusFound, w.Code)

		loc, err := url.Parse(w.Header().Get("Location"))
		require.NoError(t, err)
		assert.Equal(t, "/authorize", loc.Path)
		assert.Equal(t, "code", loc.Query().Get("response_type"))
		assert.Contains(t, loc.Query().Get("scope"), "directory:read")

		state = findCookie(w, "oauth_state")
		require.NotNil(t, state)
		assert.Equal(t, state.Value, loc.Query().Get("state"))
	})

	t.Run("Callback rejects a forged state", func(t *testing.T) {
		w := executeRequest("GET", "/api/auth/callback/yandex?code=good-code&state=forged", nil, "", state)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Callback rejects a bad code", func(t *testing.T) {
		w := executeRequest("GET", "/api/auth/callback/yandex?code=bad&state="+state.Value, nil, "", state)
		assert.Equal(t, http.StatusBadGateway, w.Code)
	})

	t.Run("Callback creates the session", func(t *testing.T) {
		w := executeRequest("GET", "/api/auth/callback/yandex?code=good-code&state="+state.Value, nil, "", state)
		require.Equal(t, http.StatusFound, w.Code, w.Body.String())
		assert.Equal(t, "/", w.Header().Get("Location"))

		session = findCookie(w, auth.SessionCookie)
		require.NotNil(t, session)
		assert.True(t, session.HttpOnly)
	})

	t.Run("Session describes the user", func(t *testing.T) {
		w := executeRequest("GET", "/api/auth/session", nil, "", session)
		require.Equal(t, http.StatusOK, w.Code)

		var resp api.SessionResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, selfID, resp.User.ID)
		assert.Equal(t, "Иванов Иван Иванович", resp.User.Name)
		assert.Equal(t, "https://avatars.yandex.net/get-yapic/131652443/islands-200", resp.User.Image)
		assert.Equal(t, testAccessToken, resp.AccessToken)
	})

	t.Run("Sign out clears the cookie", func(t *testing.T) {
		w := executeRequest("POST", "/api/auth/signout", nil, "", session)
		assert.Equal(t, http.StatusNoContent, w.Code)
		cleared := findCookie(w, auth.SessionCookie)
		require.NotNil(t, cleared)
		assert.Empty(t, cleared.Value)
	})

	t.Run("Session without cookie", func(t *testing.T) {
		w := executeRequest("GET", "/api/auth/session", nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestScreensThroughProxy(t *testing.T) {
	token := sessionToken(t)

	t.Run("Me", func(t *testing.T) {
		w := executeRequest("GET", "/v1/me", nil, token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp userHttp.MeResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, selfID, resp.User.ID)
		assert.Equal(t, userHttp.NameResponse{Last: "Иванов", First: "Иван", Middle: "Иванович"}, resp.User.Name)
	})

	t.Run("Own record falls back to self data", func(t *testing.T) {
		w := executeRequest("GET", "/v1/users/"+selfID, nil, token)
		require.Equal(t, http.StatusOK, w.Code)

		var resp userHttp.UserResultResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Degraded)
		assert.Equal(t, "ivanov@yandex.ru", resp.User.Email)
	})

	t.Run("Other record is a degraded placeholder", func(t *testing.T) {
		w := executeRequest("GET", "/v1/users/200", nil, token)
		require.Equal(t, http.StatusOK, w.Code)

		var resp userHttp.UserResultResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Degraded)
		assert.Equal(t, "200", resp.User.ID)
		assert.Equal(t, directory.ReasonReadOthers, resp.User.Warning)
	})

	t.Run("Rename falls back to demo mode", func(t *testing.T) {
		body := map[string]any{"name": map[string]string{"first": "Пётр", "last": "Петров"}}
		w := executeRequest("PATCH", "/v1/users/"+selfID+"/name", body, token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp userHttp.UserResultResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Degraded)
		assert.Equal(t, proxyHttp.DemoWarning, resp.User.Warning)
		assert.Equal(t, userHttp.NameResponse{Last: "Петров", First: "Пётр"}, resp.User.Name)

		upstream.mu.Lock()
		defer upstream.mu.Unlock()
		assert.JSONEq(t, `{"name":"Петров Пётр"}`, string(upstream.lastPatch))
	})

	t.Run("Users page", func(t *testing.T) {
		w := executeRequest("GET", "/v1/users?page=2&per_page=2", nil, token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp response.PageResponse[userHttp.UserResponse]
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 5, resp.TotalPages)
		assert.Equal(t, []int{1, 2, 3, 4, 5}, resp.VisiblePages)
		require.Len(t, resp.Items, 2)
		assert.Equal(t, "Петрова Анна", resp.Items[0].DisplayName)
		assert.Equal(t, userHttp.NameResponse{Last: "Сидоров", First: "Сидор"}, resp.Items[1].Name)

		upstream.mu.Lock()
		defer upstream.mu.Unlock()
		assert.Equal(t, "777?page=2&per_page=2", upstream.lastQuery)
	})

	t.Run("Users error relays diagnostics", func(t *testing.T) {
		w := executeRequest("GET", "/v1/users?org_id=bad", nil, token)
		require.Equal(t, http.StatusBadRequest, w.Code)

		var resp proxyHttp.UsersErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Len(t, resp.Troubleshooting, 3)
		assert.Contains(t, resp.Details, "bad")
	})

	t.Run("Delete is forwarded without fallback", func(t *testing.T) {
		w := executeRequest("DELETE", "/v1/users/200", nil, token)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "forbidden")
	})
}

func TestOperationalEndpoints(t *testing.T) {
	w := executeRequest("GET", "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = executeRequest("GET", "/metrics", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")

	w = executeRequest("GET", "/v1/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
