// Package directory holds the canonical user model, the name normalizer, the
// shape mappers and the Directory Client that reads and edits users through
// the proxy endpoints and the Yandex 360 API.
package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nekogravitycat/directory-portal/internal/pkg/metrics"
	"github.com/nekogravitycat/directory-portal/internal/yandex"
)

const (
	DefaultTimeout = 30 * time.Second

	// ReasonReadOthers is attached to placeholder records for other users.
	ReasonReadOthers = "demo mode: insufficient privileges to read other users' data"

	clientUserAgent = "directory-portal-client"
)

var errShapeMismatch = errors.New("unexpected user payload")

// Options configures a Client.
type Options struct {
	// ProxyURL is the base URL of the server exposing /api/proxy/*.
	ProxyURL string
	// APIURL is the Yandex 360 base URL used for direct corporate calls.
	APIURL     string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client talks to the directory on behalf of one authenticated identity.
// The token is fixed at construction; build a new Client per session.
type Client struct {
	token    string
	proxyURL string
	api      *yandex.Client
	log      *zap.Logger
}

// NewClient creates a Client bound to token.
func NewClient(token string, opts Options) *Client {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	api := yandex.NewClient(yandex.Config{
		API360URL: opts.APIURL,
		Timeout:   opts.Timeout,
		UserAgent: clientUserAgent,
	}, log).WithHTTPClient(opts.HTTPClient)

	return &Client{
		token:    token,
		proxyURL: strings.TrimRight(opts.ProxyURL, "/"),
		api:      api,
		log:      log.Named("directory"),
	}
}

func (c *Client) authorization() string {
	return yandex.OAuthHeader(c.token)
}

// CurrentUser returns the signed-in user from the personal-info proxy.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	if c.token == "" {
		return nil, ErrNoToken
	}

	data, err := c.api.Do(ctx, yandex.Request{
		Endpoint:      "proxy_user",
		Method:        http.MethodGet,
		URL:           c.proxyURL + "/api/proxy/user",
		Authorization: c.authorization(),
	})
	if err != nil {
		c.log.Error("failed to get current user", zap.Error(err))
		return nil, Classify(err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, Classify(ErrEmptyResponse)
	}

	info, err := yandex.DecodeLoginInfo(trimmed)
	if err != nil {
		return nil, Classify(err)
	}

	u := FromLoginInfo(info)
	return &u, nil
}

// User reads a user from the corporate API. When that fails, the caller's
// own record is returned if id is theirs; any other id gets a degraded
// placeholder.
func (c *Client) User(ctx context.Context, id string) (Result, error) {
	if c.token == "" {
		return Result{}, ErrNoToken
	}

	u, primaryErr := c.corporateUser(ctx, id)
	if primaryErr == nil {
		return Authoritative(u), nil
	}

	c.log.Warn("corporate user lookup failed, falling back",
		zap.String("user_id", id),
		zap.Error(primaryErr),
	)

	current, err := c.CurrentUser(ctx)
	if err != nil {
		c.log.Error("fallback to current user failed", zap.String("user_id", id), zap.Error(err))
		return Result{}, fmt.Errorf("failed to get user %s: %w", id, Classify(primaryErr))
	}

	if current.ID == id {
		return Authoritative(*current), nil
	}

	metrics.Fallback("get_user")
	return Degraded(placeholderUser(id), ReasonReadOthers), nil
}

func (c *Client) corporateUser(ctx context.Context, id string) (User, error) {
	data, err := c.api.GetUser(ctx, c.authorization(), id)
	if err != nil {
		return User{}, err
	}

	var du yandex.DirectoryUser
	if err := json.Unmarshal(data, &du); err != nil {
		return User{}, fmt.Errorf("%w: %v", errShapeMismatch, err)
	}
	if du.ID == "" {
		return User{}, fmt.Errorf("%w: missing id", errShapeMismatch)
	}
	return FromDirectoryUser(du), nil
}

// Users returns one page of organization users. An empty orgID lets the
// proxy use its configured default.
func (c *Client) Users(ctx context.Context, page, perPage int, orgID string) (*UserList, error) {
	if c.token == "" {
		return nil, ErrNoToken
	}

	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("perPage", strconv.Itoa(perPage))
	if orgID != "" {
		q.Set("orgId", orgID)
	}

	c.log.Debug("listing users", zap.Int("page", page), zap.Int("per_page", perPage))

	data, err := c.api.Do(ctx, yandex.Request{
		Endpoint:      "proxy_users",
		Method:        http.MethodGet,
		URL:           c.proxyURL + "/api/proxy/users?" + q.Encode(),
		Authorization: c.authorization(),
	})
	if err != nil {
		c.log.Error("failed to list users", zap.Error(err))
		e := Classify(err)
		// Unclassified failures keep the proxy's own diagnostic message.
		if msg := e.PayloadMessage(); msg != "" && e.Kind == KindOther {
			e.Message = msg
		}
		return nil, e
	}

	var list UserList
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, Classify(fmt.Errorf("decode users page: %w", err))
	}
	return &list, nil
}

// UpdateUserName sends the name as a single display string and returns the
// record the proxy answered with. A proxy-side fallback comes back degraded.
func (c *Client) UpdateUserName(ctx context.Context, id string, name NameValue) (Result, error) {
	if c.token == "" {
		return Result{}, ErrNoToken
	}

	body := map[string]any{
		"userId":   id,
		"nameData": map[string]string{"name": name.Display()},
	}

	data, err := c.api.Do(ctx, yandex.Request{
		Endpoint:      "proxy_user_name",
		Method:        http.MethodPatch,
		URL:           c.proxyURL + "/api/proxy/user/name",
		Authorization: c.authorization(),
		Body:          body,
	})
	if err != nil {
		c.log.Error("failed to update user name", zap.String("user_id", id), zap.Error(err))
		return Result{}, Classify(err)
	}

	var resp struct {
		ID              yandex.ID `json:"id"`
		Email           string    `json:"email"`
		Name            NameValue `json:"name"`
		Image           string    `json:"image"`
		DefaultAvatarID string    `json:"default_avatar_id"`
		Position        string    `json:"position"`
		DisplayName     string    `json:"display_name"`
		Warning         string    `json:"_warning"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return Result{}, Classify(fmt.Errorf("decode update response: %w", err))
	}

	u := User{
		ID:       resp.ID.String(),
		Email:    resp.Email,
		Name:     resp.Name.Structured(),
		Image:    resp.Image,
		Position: resp.Position,
	}
	if resp.DefaultAvatarID != "" {
		u.Image = AvatarURL(resp.DefaultAvatarID)
	}
	if resp.DisplayName != "" {
		u.Position = resp.DisplayName
	}

	if resp.Warning != "" {
		return Degraded(u, resp.Warning), nil
	}
	return Authoritative(u), nil
}

// DeleteUser removes a user through the corporate API. There is no
// fallback; the upstream error is returned as is.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	if c.token == "" {
		return ErrNoToken
	}

	if err := c.api.DeleteUser(ctx, c.authorization(), id); err != nil {
		c.log.Error("failed to delete user", zap.String("user_id", id), zap.Error(err))
		return err
	}
	return nil
}

func placeholderUser(id string) User {
	return User{
		ID:    id,
		Email: "user@example.com",
		Name: Name{
			First:  "Name",
			Last:   "Surname",
			Middle: "Patronymic",
		},
		Position: "Employee",
	}
}
