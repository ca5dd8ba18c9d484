package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	CtxStaffIDKey = "staff_id"
	CtxRoleKey    = "role"
)

// StaffID returns the authenticated caller's staff id set by RequireAuth.
func StaffID(c *gin.Context) string {
	return c.GetString(CtxStaffIDKey)
}

// Role returns the authenticated caller's role set by RequireAuth.
func Role(c *gin.Context) string {
	return c.GetString(CtxRoleKey)
}

// IsPrivileged reports whether the caller may act on other staff's records.
func IsPrivileged(c *gin.Context) bool {
	r := Role(c)
	return r == RoleManager || r == RoleAdmin
}

// RequireAuth validates "Authorization: Bearer <token>" and stores sub/role
// in the gin context.
func RequireAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if h == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing Authorization header"})
			return
		}

		parts := strings.SplitN(h, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid Authorization header"})
			return
		}

		tokenStr := strings.TrimSpace(parts[1])
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "empty token"})
			return
		}

		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
			// Pin the algorithm (rejects alg=none and friends).
			if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
				return nil, jwt.ErrTokenSignatureInvalid
			}
			return secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || token == nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid claims"})
			return
		}

		subAny, ok := claims["sub"]
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing sub"})
			return
		}
		sub, ok := subAny.(string)
		if !ok || sub == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid sub"})
			return
		}

		role := ""
		if roleAny, hasRole := claims["role"]; hasRole {
			if roleStr, ok := roleAny.(string); ok {
				role = roleStr
			}
		}

		c.Set(CtxStaffIDKey, sub)
		c.Set(CtxRoleKey, role)
		c.Next()
	}
}

// RequireRole gates a route to the given roles. Returns an explicit 403
// instead of letting handlers fall through to zero-row updates.
func RequireRole(roles ...string) gin.HandlerFunc {
	roleSet := make(map[string]struct{})
	for _, r := range roles {
		if r == "" {
			continue
		}
		roleSet[r] = struct{}{}
	}

	return func(c *gin.Context) {
		v, ok := c.Get(CtxRoleKey)
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "missing role"})
			return
		}

		role, ok := v.(string)
		if !ok || role == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "invalid role"})
			return
		}

		if _, allowed := roleSet[role]; !allowed {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}

		c.Next()
	}
}
