package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/directory-portal/internal/avatar"
	"github.com/nekogravitycat/directory-portal/internal/pkg/response"
)

type Handler struct {
	avatarService avatar.Service
}

func NewHandler(avatarService avatar.Service) *Handler {
	return &Handler{
		avatarService: avatarService,
	}
}

// ServeThumbnail serves a resized avatar as JPEG.
func (h *Handler) ServeThumbnail(c *gin.Context) {
	size := avatar.DefaultSize
	if v := c.Query("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "size must be a number"})
			return
		}
		size = n
	}

	thumb, err := h.avatarService.Thumbnail(c.Request.Context(), c.Param("avatarId"), size)
	if err != nil {
		response.Error(c, err)
		return
	}

	// Thumbnails are always JPEG
	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, "image/jpeg", thumb)
}
