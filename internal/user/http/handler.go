package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/directory-portal/internal/auth"
	"github.com/nekogravitycat/directory-portal/internal/pkg/request"
	"github.com/nekogravitycat/directory-portal/internal/pkg/response"
	"github.com/nekogravitycat/directory-portal/internal/user"
)

type UserHandler struct {
	userService user.Service
}

func NewHandler(userService user.Service) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// Me retrieves the profile of the signed-in user.
func (h *UserHandler) Me(c *gin.Context) {
	u, err := h.userService.Me(c.Request.Context(), auth.GetAccessToken(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, MeResponse{User: NewUserResponse(u)})
}

// List retrieves one page of organization users together with the page
// count and the window of page numbers to show.
func (h *UserHandler) List(c *gin.Context) {
	var req ListUsersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.Normalize(user.DefaultPageSize)

	filter := user.UserFilter{
		OrgID:    req.OrgID,
		Page:     req.Page,
		PageSize: req.PageSize,
	}

	page, err := h.userService.List(c.Request.Context(), auth.GetAccessToken(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	// Convert directory users to DTOs
	items := make([]UserResponse, len(page.Users))
	for i := range page.Users {
		items[i] = NewUserResponse(&page.Users[i])
	}

	resp := response.NewPageResponse(items, page.Page, page.PageSize, page.Total)

	c.JSON(http.StatusOK, resp)
}

// Get retrieves a user by ID. Without directory access the caller gets a
// placeholder marked as degraded.
func (h *UserHandler) Get(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.userService.GetByID(c.Request.Context(), auth.GetAccessToken(c), req.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewUserResultResponse(res))
}

// UpdateName renames a user.
func (h *UserHandler) UpdateName(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}
	if err := uri.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var body UpdateNameRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body", "details": err.Error()})
		return
	}

	if err := body.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.userService.Rename(c.Request.Context(), auth.GetAccessToken(c), uri.ID, *body.Name)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewUserResultResponse(res))
}

// Delete removes a user from the organization.
func (h *UserHandler) Delete(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.userService.Delete(c.Request.Context(), auth.GetAccessToken(c), req.ID); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
