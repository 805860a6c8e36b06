package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the user screens. All of them need a session.
func RegisterRoutes(g *gin.RouterGroup, h *UserHandler, sessionMiddleware gin.HandlerFunc) {
	g.GET("/me", sessionMiddleware, h.Me)

	usersGroup := g.Group("/users")
	usersGroup.Use(sessionMiddleware)
	{
		usersGroup.GET("", h.List)
		usersGroup.GET("/:id", h.Get)
		usersGroup.PATCH("/:id/name", h.UpdateName)
		usersGroup.DELETE("/:id", h.Delete)
	}
}
