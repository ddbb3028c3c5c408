package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Roles recognized on incoming requests.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// identityKey is the gin context key the middleware stores the identity under.
const identityKey = "identity"

// Identity is the authenticated principal attached to each request. Token
// issuance and verification happen in the upstream auth gateway; by the time
// a request reaches this service the gateway has translated the token into
// these headers.
type Identity struct {
	UserID string
	Role   string
}

// IsAdmin reports whether the identity carries the admin role.
func (id Identity) IsAdmin() bool {
	return id.Role == RoleAdmin
}

// Middleware extracts the identity from the X-User-Id / X-User-Role headers
// and rejects requests that carry none.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-Id")
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "authentication required",
			})
			return
		}
		role := c.GetHeader("X-User-Role")
		if role != RoleAdmin {
			role = RoleUser
		}
		c.Set(identityKey, Identity{UserID: userID, Role: role})
		c.Next()
	}
}

// RequireAdmin aborts with 403 unless the request identity is an admin.
// Must run after Middleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := FromContext(c)
		if !ok || !id.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "admin access required",
			})
			return
		}
		c.Next()
	}
}

// FromContext returns the identity the middleware attached.
func FromContext(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}
