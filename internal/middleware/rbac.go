package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/pudocs/dept-portal-api/internal/models"
	appErrors "github.com/pudocs/dept-portal-api/pkg/errors"
	"github.com/pudocs/dept-portal-api/pkg/response"
)

// RBAC enforces role-based access control for routes. The sentinel "SELF"
// allows a caller whose uid matches the :id route parameter.
func RBAC(allowed ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims := claimsValue.(*models.JWTClaims)

		allowSelf := false
		allowedRoles := make(map[models.UserRole]struct{})

		for _, a := range allowed {
			if a == "SELF" {
				allowSelf = true
				continue
			}
			allowedRoles[models.UserRole(a)] = struct{}{}
		}

		if _, ok := allowedRoles[claims.Role]; ok {
			c.Next()
			return
		}

		if allowSelf {
			if targetID := c.Param("id"); targetID != "" && targetID == claims.UID {
				c.Next()
				return
			}
		}

		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}

// RequireRoles is a helper that accepts a list of roles.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make([]string, len(roles))
	for i, r := range roles {
		allowed[i] = string(r)
	}
	return RBAC(allowed...)
}

// CurrentUser extracts the authenticated identity from the gin context.
func CurrentUser(c *gin.Context) (models.UserInfo, bool) {
	claimsValue, exists := c.Get(ContextUserKey)
	if !exists {
		return models.UserInfo{}, false
	}
	claims, ok := claimsValue.(*models.JWTClaims)
	if !ok {
		return models.UserInfo{}, false
	}
	return models.UserInfo{UID: claims.UID, Email: claims.Email, Role: claims.Role}, true
}
