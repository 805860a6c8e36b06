package directory

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/nekogravitycat/directory-portal/internal/yandex"
)

const testToken = "y0_test-token"

type fakeDirectory struct {
	t *testing.T

	loginInfo      string
	loginStatus    int
	userStatus     int
	userBody       string
	usersStatus    int
	usersBody      string
	nameStatus     int
	nameBody       string
	deleteStatus   int
	lastUsersQuery string
	lastNameBody   map[string]any
}

func (f *fakeDirectory) server() *httptest.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/proxy/user", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(f.t, "OAuth "+testToken, r.Header.Get("Authorization"))
		writeJSON(w, f.loginStatus, f.loginInfo)
	})

	mux.HandleFunc("GET /v1/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(f.t, "OAuth "+testToken, r.Header.Get("Authorization"))
		writeJSON(w, f.userStatus, f.userBody)
	})

	mux.HandleFunc("DELETE /v1/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, f.deleteStatus, `{"error":"forbidden"}`)
	})

	mux.HandleFunc("GET /api/proxy/users", func(w http.ResponseWriter, r *http.Request) {
		f.lastUsersQuery = r.URL.RawQuery
		writeJSON(w, f.usersStatus, f.usersBody)
	})

	mux.HandleFunc("PATCH /api/proxy/user/name", func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		f.lastNameBody = map[string]any{}
		_ = json.Unmarshal(data, &f.lastNameBody)
		writeJSON(w, f.nameStatus, f.nameBody)
	})

	srv := httptest.NewServer(mux)
	f.t.Cleanup(srv.Close)
	return srv
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func newTestClient(t *testing.T, f *fakeDirectory, token string) *Client {
	srv := f.server()
	return NewClient(token, Options{
		ProxyURL: srv.URL,
		APIURL:   srv.URL,
		Logger:   zaptest.NewLogger(t),
	})
}

func TestCurrentUser(t *testing.T) {
	f := &fakeDirectory{t: t, loginInfo: `{"id": 100, "real_name": "Иванов Иван", "default_email": "i@yandex.ru"}`}
	c := newTestClient(t, f, testToken)

	u, err := c.CurrentUser(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "100", u.ID)
	assert.Equal(t, "i@yandex.ru", u.Email)
	assert.Equal(t, Name{Last: "Иванов", First: "Иван"}, u.Name)
}

func TestCurrentUserEmptyBody(t *testing.T) {
	f := &fakeDirectory{t: t, loginInfo: ``}
	c := newTestClient(t, f, testToken)

	_, err := c.CurrentUser(context.Background())
	require.Error(t, err)
	assert.Equal(t, "error: failed to get user data", err.Error())
}

func TestUserAuthoritative(t *testing.T) {
	f := &fakeDirectory{
		t:        t,
		userBody: `{"id": "555", "email": "p@corp.ru", "name": {"first": "Петр", "last": "Петров"}}`,
	}
	c := newTestClient(t, f, testToken)

	res, err := c.User(context.Background(), "555")
	require.NoError(t, err)

	assert.False(t, res.IsDegraded())
	assert.Equal(t, "555", res.User.ID)
	assert.Equal(t, Name{First: "Петр", Last: "Петров"}, res.User.Name)
}

func TestUserFallbackForOtherUser(t *testing.T) {
	f := &fakeDirectory{
		t:          t,
		userStatus: http.StatusNotFound,
		userBody:   `{"message":"not found"}`,
		loginInfo:  `{"id": "100", "real_name": "Иванов Иван"}`,
	}
	c := newTestClient(t, f, testToken)

	res, err := c.User(context.Background(), "200")
	require.NoError(t, err)

	assert.True(t, res.IsDegraded())
	assert.Equal(t, "200", res.User.ID)
	assert.Equal(t, ReasonReadOthers, res.User.Warning)
	assert.Equal(t, ReasonReadOthers, res.Reason)
}

func TestUserFallbackForSelf(t *testing.T) {
	f := &fakeDirectory{
		t:          t,
		userStatus: http.StatusForbidden,
		loginInfo:  `{"id": 100, "real_name": "Иванов Иван"}`,
	}
	c := newTestClient(t, f, testToken)

	res, err := c.User(context.Background(), "100")
	require.NoError(t, err)

	assert.False(t, res.IsDegraded())
	assert.Empty(t, res.User.Warning)
	assert.Equal(t, Name{Last: "Иванов", First: "Иван"}, res.User.Name)
}

func TestUserShapeMismatchFallsBack(t *testing.T) {
	f := &fakeDirectory{
		t:         t,
		userBody:  `{"unexpected": true}`,
		loginInfo: `{"id": 100}`,
	}
	c := newTestClient(t, f, testToken)

	res, err := c.User(context.Background(), "300")
	require.NoError(t, err)
	assert.True(t, res.IsDegraded())
}

func TestUserBothPathsFail(t *testing.T) {
	f := &fakeDirectory{
		t:           t,
		userStatus:  http.StatusNotFound,
		loginStatus: http.StatusUnauthorized,
		loginInfo:   `{"error":"expired"}`,
	}
	c := newTestClient(t, f, testToken)

	_, err := c.User(context.Background(), "300")
	require.Error(t, err)

	var de *Error
	require.True(t, errors.As(err, &de))
	assert.Equal(t, KindNotFound, de.Kind)
}

func TestUsers(t *testing.T) {
	f := &fakeDirectory{
		t:         t,
		usersBody: `{"page": 2, "perPage": 10, "total": 35, "users": [{"id": 1, "name": "A B"}]}`,
	}
	c := newTestClient(t, f, testToken)

	list, err := c.Users(context.Background(), 2, 10, "42")
	require.NoError(t, err)

	assert.Equal(t, "orgId=42&page=2&perPage=10", f.lastUsersQuery)
	assert.Equal(t, 2, list.Page)
	assert.Equal(t, 4, list.TotalPages(10))
	require.Len(t, list.Users, 1)
	assert.Equal(t, Name{Last: "A", First: "B"}, list.Users[0].Name)
}

func TestUsersKeepsStructuredError(t *testing.T) {
	f := &fakeDirectory{
		t:           t,
		usersStatus: http.StatusBadRequest,
		usersBody:   `{"error":"bad org","details":"check ORG_ID","troubleshooting":["1"],"original_error":{"code":3}}`,
	}
	c := newTestClient(t, f, testToken)

	_, err := c.Users(context.Background(), 1, 10, "")
	require.Error(t, err)

	var de *Error
	require.True(t, errors.As(err, &de))
	assert.Equal(t, http.StatusBadRequest, de.Status)
	assert.Equal(t, "bad org", de.Message)
	assert.JSONEq(t, f.usersBody, string(de.Payload))
	assert.Equal(t, "page=1&perPage=10", f.lastUsersQuery)
}

func TestUsersClassifiedErrorKeepsStableMessage(t *testing.T) {
	f := &fakeDirectory{
		t:           t,
		usersStatus: http.StatusUnauthorized,
		usersBody:   `{"error":"Authorization header is required"}`,
	}
	c := newTestClient(t, f, testToken)

	_, err := c.Users(context.Background(), 1, 10, "")
	require.Error(t, err)

	var de *Error
	require.True(t, errors.As(err, &de))
	assert.Equal(t, KindReauthenticate, de.Kind)
	assert.Equal(t, MsgReauthenticate, de.Message)
	assert.JSONEq(t, f.usersBody, string(de.Payload))
}

func TestUpdateUserNameWithoutFirstName(t *testing.T) {
	f := &fakeDirectory{
		t:        t,
		nameBody: `{"id": "100", "name": "Петров  Петрович", "_warning": "demo"}`,
	}
	c := newTestClient(t, f, testToken)

	want := Name{Last: "Петров", Middle: "Петрович"}
	res, err := c.UpdateUserName(context.Background(), "100", NameParts(want))
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"name": "Петров  Петрович"}, f.lastNameBody["nameData"])
	assert.Equal(t, want, res.User.Name)
}

func TestUpdateUserNameDegraded(t *testing.T) {
	f := &fakeDirectory{
		t:        t,
		nameBody: `{"id": "100", "email": "i@yandex.ru", "name": "Петров Петр Петрович", "_warning": "demo"}`,
	}
	c := newTestClient(t, f, testToken)

	res, err := c.UpdateUserName(context.Background(), "100", NameParts(Name{Last: "Петров", First: "Петр", Middle: "Петрович"}))
	require.NoError(t, err)

	assert.Equal(t, "100", f.lastNameBody["userId"])
	assert.Equal(t, map[string]any{"name": "Петров Петр Петрович"}, f.lastNameBody["nameData"])

	assert.True(t, res.IsDegraded())
	assert.Equal(t, "demo", res.User.Warning)
	assert.Equal(t, Name{Last: "Петров", First: "Петр", Middle: "Петрович"}, res.User.Name)
}

func TestUpdateUserNameAuthoritative(t *testing.T) {
	f := &fakeDirectory{
		t:        t,
		nameBody: `{"id": 555, "name": {"first": "Петр", "last": "Петров"}, "position": "Engineer"}`,
	}
	c := newTestClient(t, f, testToken)

	res, err := c.UpdateUserName(context.Background(), "555", NameText("Петров Петр"))
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"name": "Петров Петр"}, f.lastNameBody["nameData"])
	assert.False(t, res.IsDegraded())
	assert.Equal(t, "555", res.User.ID)
	assert.Equal(t, "Engineer", res.User.Position)
	assert.Equal(t, Name{First: "Петр", Last: "Петров"}, res.User.Name)
}

func TestDeleteUserPropagatesError(t *testing.T) {
	f := &fakeDirectory{t: t, deleteStatus: http.StatusForbidden}
	c := newTestClient(t, f, testToken)

	err := c.DeleteUser(context.Background(), "555")
	require.Error(t, err)

	status, ok := yandex.StatusOf(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, KindForbidden, Classify(err).Kind)
}

func TestDeleteUser(t *testing.T) {
	f := &fakeDirectory{t: t, deleteStatus: http.StatusOK}
	c := newTestClient(t, f, testToken)

	require.NoError(t, c.DeleteUser(context.Background(), "555"))
}

func TestMissingToken(t *testing.T) {
	f := &fakeDirectory{t: t}
	c := newTestClient(t, f, "")
	ctx := context.Background()

	_, err := c.CurrentUser(ctx)
	assert.ErrorIs(t, err, ErrNoToken)
	_, err = c.User(ctx, "1")
	assert.ErrorIs(t, err, ErrNoToken)
	_, err = c.Users(ctx, 1, 10, "")
	assert.ErrorIs(t, err, ErrNoToken)
	_, err = c.UpdateUserName(ctx, "1", NameText("A B"))
	assert.ErrorIs(t, err, ErrNoToken)
	assert.ErrorIs(t, c.DeleteUser(ctx, "1"), ErrNoToken)
}
