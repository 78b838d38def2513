package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/moyoez/friendlyshare-go/types"
	"github.com/moyoez/friendlyshare-go/users"
)

const userContextKey = "friendlyshare.user"

// RequireRole authenticates the basic-auth header against the directory and
// refuses callers below the required role. Missing and wrong credentials get
// the same 401; a valid user with too low a role gets 403.
func RequireRole(dir *users.Directory, required types.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := dir.Authenticate(c.GetHeader("Authorization"))
		if !ok {
			c.Header("WWW-Authenticate", `Basic realm="Authentication Required"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Access Denied. Incorrect username or password"})
			return
		}
		if user.Role < required {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}
		c.Set(userContextKey, user)
		c.Next()
	}
}

// CurrentUser returns the authenticated user stored by RequireRole.
func CurrentUser(c *gin.Context) (types.User, bool) {
	v, exists := c.Get(userContextKey)
	if !exists {
		return types.User{}, false
	}
	user, ok := v.(types.User)
	return user, ok
}
