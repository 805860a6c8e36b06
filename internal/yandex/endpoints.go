package yandex

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/nekogravitycat/directory-portal/internal/pkg/metrics"
)

// LoginInfo fetches the personal-account record. authorization is forwarded verbatim.
func (c *Client) LoginInfo(ctx context.Context, authorization string) ([]byte, error) {
	u := c.cfg.LoginInfoURL + "?format=json"
	return c.Do(ctx, Request{
		Endpoint:      "login_info",
		Method:        http.MethodGet,
		URL:           u,
		Authorization: authorization,
	})
}

// GetUser reads a corporate user by id.
func (c *Client) GetUser(ctx context.Context, authorization, userID string) ([]byte, error) {
	return c.Do(ctx, Request{
		Endpoint:      "get_user",
		Method:        http.MethodGet,
		URL:           c.usersURL(userID),
		Authorization: authorization,
	})
}

// UpdateUserName patches the name of a corporate user. name is sent as-is
// under the "name" field.
func (c *Client) UpdateUserName(ctx context.Context, authorization, userID string, name json.RawMessage) ([]byte, error) {
	return c.Do(ctx, Request{
		Endpoint:      "update_user_name",
		Method:        http.MethodPatch,
		URL:           c.usersURL(userID),
		Authorization: authorization,
		Body:          map[string]json.RawMessage{"name": name},
	})
}

// DeleteUser removes a corporate user.
func (c *Client) DeleteUser(ctx context.Context, authorization, userID string) error {
	_, err := c.Do(ctx, Request{
		Endpoint:      "delete_user",
		Method:        http.MethodDelete,
		URL:           c.usersURL(userID),
		Authorization: authorization,
	})
	return err
}

// ListOrgUsers reads one page of an organization's users. The upstream
// contract uses snake_case per_page.
func (c *Client) ListOrgUsers(ctx context.Context, authorization, orgID string, page, perPage int) ([]byte, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))

	u := c.cfg.API360URL + "/directory/v1/org/" + url.PathEscape(orgID) + "/users?" + q.Encode()
	return c.Do(ctx, Request{
		Endpoint:      "list_org_users",
		Method:        http.MethodGet,
		URL:           u,
		Authorization: authorization,
	})
}

// Avatar downloads the 200px avatar image. The caller must close the body.
func (c *Client) Avatar(ctx context.Context, avatarID string) (io.ReadCloser, string, error) {
	u := c.cfg.AvatarURL + "/get-yapic/" + escapeSegments(avatarID) + "/islands-200"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, "", Error.Wrap(err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ObserveUpstream("avatar", 0, time.Since(start))
		return nil, "", Error.New("GET avatar: %v", err)
	}
	metrics.ObserveUpstream("avatar", resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, "", &UpstreamError{Endpoint: "avatar", Status: resp.StatusCode, Body: body}
	}

	return resp.Body, resp.Header.Get("Content-Type"), nil
}

// escapeSegments escapes each path segment, keeping the slashes of ids
// like "0/0-0".
func escapeSegments(id string) string {
	parts := strings.Split(strings.Trim(id, "/"), "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

func (c *Client) usersURL(userID string) string {
	return c.cfg.API360URL + "/v1/users/" + url.PathEscape(userID)
}
