package http

import "github.com/gin-gonic/gin"

// RegisterRoutes registers avatar routes. Avatar ids may contain slashes.
func RegisterRoutes(r gin.IRouter, handler *Handler) {
	group := r.Group("/avatars")

	group.GET("/*avatarId", handler.ServeThumbnail)
}
