// Package http exposes the server-side proxy that attaches the caller's
// Authorization header to Yandex ID and Yandex 360 requests.
package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nekogravitycat/directory-portal/internal/directory"
	"github.com/nekogravitycat/directory-portal/internal/pkg/logger"
	"github.com/nekogravitycat/directory-portal/internal/pkg/metrics"
	"github.com/nekogravitycat/directory-portal/internal/yandex"
)

const (
	// DefaultOrgID is the placeholder organization used when none is configured.
	DefaultOrgID = "_"

	// DemoWarning marks a rename that was acknowledged without reaching the directory.
	DemoWarning = "demo mode: the name was changed locally only. The Yandex 360 API requires a corporate Yandex 360 for Business account."

	defaultPage    = 1
	defaultPerPage = 10
	maxPerPage     = 1000

	authorizationKey = "proxyAuthorization"
)

// RequireAuthorization rejects requests without an Authorization header and
// stores the header verbatim for the handlers.
func RequireAuthorization() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header is required",
			})
			return
		}
		c.Set(authorizationKey, header)
		c.Next()
	}
}

func authorization(c *gin.Context) string {
	return c.GetString(authorizationKey)
}

type Handler struct {
	api   *yandex.Client
	orgID string
	log   *zap.Logger
}

// NewHandler creates the proxy handler. orgID is the default organization
// for user listings.
func NewHandler(api *yandex.Client, orgID string, log *zap.Logger) *Handler {
	if orgID == "" {
		orgID = DefaultOrgID
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		api:   api,
		orgID: orgID,
		log:   log.Named("proxy"),
	}
}

// User relays the personal-account record of the token owner.
func (h *Handler) User(c *gin.Context) {
	data, err := h.api.LoginInfo(c.Request.Context(), authorization(c))
	if err != nil {
		h.log.Error("failed to get user data", zap.Error(err))
		relayError(c, err)
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

// UpdateUserName renames a user through the corporate API. When that call
// fails for any reason, the rename is acknowledged in demo mode from the
// caller's own login info.
func (h *Handler) UpdateUserName(c *gin.Context) {
	authz := authorization(c)

	var req UpdateNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}
	if req.UserID == "" || req.NameData == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId and nameData are required"})
		return
	}

	name := req.NameData.Name
	if len(bytes.TrimSpace(name)) == 0 {
		name = json.RawMessage("null")
	}

	h.log.Info("updating user name",
		zap.String("user_id", req.UserID.String()),
		zap.ByteString("name", name),
		zap.String("authorization", logger.TokenPrefix(authz)),
	)

	ctx := c.Request.Context()

	data, err := h.api.UpdateUserName(ctx, authz, req.UserID.String(), name)
	if err == nil {
		c.Data(http.StatusOK, "application/json; charset=utf-8", data)
		return
	}

	status, _ := yandex.StatusOf(err)
	h.log.Warn("corporate rename failed, switching to demo mode",
		zap.String("user_id", req.UserID.String()),
		zap.Int("status", status),
		zap.Error(err),
	)
	metrics.Fallback("update_user_name")

	infoData, err := h.api.LoginInfo(ctx, authz)
	if err != nil {
		h.log.Error("demo mode: failed to get user data", zap.Error(err))
		relayError(c, err)
		return
	}

	info, err := yandex.DecodeLoginInfo(infoData)
	if err != nil {
		h.log.Error("demo mode: unreadable user data", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update user name"})
		return
	}

	c.JSON(http.StatusOK, DemoNameResponse{
		ID:      info.ID.String(),
		Email:   info.DefaultEmail,
		Name:    displayName(name),
		Warning: DemoWarning,
	})
}

// Users relays one page of organization users. Upstream failures are
// answered with a diagnostic body whose status mirrors the upstream one.
func (h *Handler) Users(c *gin.Context) {
	page := queryInt(c, "page", defaultPage)
	if page < 1 {
		page = defaultPage
	}
	perPage := queryInt(c, "perPage", defaultPerPage)
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	orgID := c.Query("orgId")
	if orgID == "" {
		orgID = h.orgID
	}
	if orgID == DefaultOrgID {
		h.log.Warn("organization id is not configured, set ORG_ID to a real Yandex 360 organization")
	}

	h.log.Info("listing organization users",
		zap.String("org_id", orgID),
		zap.Int("page", page),
		zap.Int("per_page", perPage),
	)

	data, err := h.api.ListOrgUsers(c.Request.Context(), authorization(c), orgID, page, perPage)
	if err != nil {
		h.log.Error("failed to list users", zap.String("org_id", orgID), zap.Error(err))
		status, body := usersError(err, orgID)
		c.JSON(status, body)
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

// relayError answers with the upstream status and body, or 500 when there
// was no upstream response.
func relayError(c *gin.Context, err error) {
	var upErr *yandex.UpstreamError
	if errors.As(err, &upErr) {
		c.JSON(upErr.Status, gin.H{"error": originalError(upErr)})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func usersError(err error, orgID string) (int, UsersErrorResponse) {
	status := http.StatusInternalServerError
	var original any = err.Error()

	var upErr *yandex.UpstreamError
	if errors.As(err, &upErr) {
		status = upErr.Status
		original = originalError(upErr)
	}

	switch status {
	case http.StatusBadRequest:
		return status, UsersErrorResponse{
			Error: "Invalid request to the Yandex 360 API.",
			Details: fmt.Sprintf("The organization ID (%s) may be wrong or the token lacks permissions. "+
				"Check ORG_ID in the server configuration and the access rights of the token.", orgID),
			Troubleshooting: []string{
				"1. Set a valid organization ID (ORG_ID)",
				"2. Make sure the OAuth token is allowed to read users",
				"3. Check that your account has access to Yandex 360 for Business",
			},
			OriginalError: original,
		}
	case http.StatusNotFound:
		return status, UsersErrorResponse{
			Error: "Failed to list users. The organization was not found or you have no access to the Yandex 360 API.",
			Details: fmt.Sprintf("Organization ID used: %s. Make sure the organization ID is correct "+
				"and you have access to the Yandex 360 for Business API.", orgID),
			OriginalError: original,
		}
	case http.StatusUnauthorized, http.StatusForbidden:
		return status, UsersErrorResponse{
			Error:         "Access denied. Check authorization and access rights to the Yandex 360 API.",
			Details:       "Make sure the token is valid and has enough rights for the Yandex 360 for Business API.",
			OriginalError: original,
		}
	default:
		return status, UsersErrorResponse{
			Error:         "Failed to list users from the Yandex 360 API.",
			Details:       fmt.Sprintf("Upstream status: %d. See server logs for details.", status),
			OriginalError: original,
		}
	}
}

func originalError(upErr *yandex.UpstreamError) any {
	if len(bytes.TrimSpace(upErr.Body)) == 0 {
		return upErr.Error()
	}
	return upErr.Payload()
}

// displayName renders the requested name the way it would be shown: a
// string as is, an object as "last first middle".
func displayName(raw json.RawMessage) string {
	var v directory.NameValue
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}
	return v.Display()
}

func queryInt(c *gin.Context, key string, def int) int {
	v := c.Query(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
