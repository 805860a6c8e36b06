package auth

import "github.com/gin-gonic/gin"

const (
	userIDKey      = "userID"
	userEmailKey   = "userEmail"
	accessTokenKey = "accessToken"
	sessionKey     = "session"
)

// GetUserID returns the authenticated user's ID or empty string.
func GetUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// GetUserEmail returns the authenticated user's email or empty string.
func GetUserEmail(c *gin.Context) string {
	return c.GetString(userEmailKey)
}

// GetAccessToken returns the Yandex access token of the session or empty string.
func GetAccessToken(c *gin.Context) string {
	return c.GetString(accessTokenKey)
}

// GetSession returns the session stored by SessionRequired.
func GetSession(c *gin.Context) (Session, bool) {
	if v, ok := c.Get(sessionKey); ok {
		if s, ok := v.(Session); ok {
			return s, true
		}
	}
	return Session{}, false
}
