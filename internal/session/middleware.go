package session

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const contextKey = "workspace_id"

// Middleware makes sure every request carries a workspace ID cookie,
// issuing a new one when the browser has none.
func Middleware(cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(cookieName)
		if err != nil || uuid.Validate(id) != nil {
			id = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(cookieName, id, 0, "/", "", false, true)
		}
		c.Set(contextKey, id)
		c.Next()
	}
}

// WorkspaceID returns the workspace ID set by Middleware.
func WorkspaceID(c *gin.Context) string {
	return c.GetString(contextKey)
}
