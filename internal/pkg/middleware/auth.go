package middleware

import (
	"net/http"
	"strings"

	"footstep/internal/pkg/identity"
	"footstep/pkg/response"
	"footstep/pkg/utils"

	"github.com/gin-gonic/gin"
)

const callerKey = "caller"

// AuthMiddleware JWT认证中间件
func AuthMiddleware(issuer *utils.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Error(c, http.StatusUnauthorized, response.ErrTokenInvalid, "Authorization header is required")
			c.Abort()
			return
		}

		// 检查格式 "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Error(c, http.StatusUnauthorized, response.ErrTokenInvalid, "Invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := issuer.Parse(parts[1], utils.AccessToken)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, response.ErrTokenInvalid, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set(callerKey, identity.Caller{UserID: claims.UserID, Email: claims.Email})
		c.Next()
	}
}

// Caller 取出当前调用者，未认证时返回 Anonymous
func Caller(c *gin.Context) identity.Caller {
	if v, ok := c.Get(callerKey); ok {
		if caller, ok := v.(identity.Caller); ok {
			return caller
		}
	}
	return identity.Anonymous
}
