package http

import "github.com/gin-gonic/gin"

// RegisterRoutes registers the proxy routes under /api/proxy. Extra
// middlewares (rate limiting) run before the Authorization check.
func RegisterRoutes(r gin.IRouter, h *Handler, middlewares ...gin.HandlerFunc) {
	group := r.Group("/api/proxy")
	group.Use(middlewares...)
	group.Use(RequireAuthorization())

	group.GET("/user", h.User)
	group.PATCH("/user/name", h.UpdateUserName)
	group.GET("/users", h.Users)
}
