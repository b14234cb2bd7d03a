package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kpuday2004/Email-Productivity-Agent/internal/domain"
	"github.com/kpuday2004/Email-Productivity-Agent/internal/service"
)

const (
	// SessionCookieName 浏览器会话令牌的 Cookie 名
	SessionCookieName = "session_token"

	contextUserKey   = "user"
	contextUserIDKey = "userID"
)

// SessionAuth 会话认证中间件
type SessionAuth struct {
	auth *service.AuthService
	log  *zap.Logger
}

// NewSessionAuth 创建会话认证中间件
func NewSessionAuth(auth *service.AuthService, log *zap.Logger) *SessionAuth {
	return &SessionAuth{auth: auth, log: log}
}

// RequireAuth 要求请求携带有效的会话令牌
func (sa *SessionAuth) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sa.extractToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"detail": "Not authenticated",
			})
			return
		}

		user, err := sa.auth.Authenticate(token)
		if err != nil {
			sa.log.Warn("rejected session token",
				zap.String("path", c.Request.URL.Path),
				zap.String("ip", c.ClientIP()),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"detail": "Not authenticated",
			})
			return
		}

		// 将用户信息存储到上下文
		c.Set(contextUserIDKey, user.ID)
		c.Set(contextUserKey, user)

		c.Next()
	}
}

// extractToken 从请求中提取会话令牌，Cookie 优先，其次 Authorization 头
func (sa *SessionAuth) extractToken(c *gin.Context) string {
	if token, err := c.Cookie(SessionCookieName); err == nil && token != "" {
		return token
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
	}

	return ""
}

// CurrentUser 从请求上下文中取出认证用户，未认证时返回 nil。
// 只应在 RequireAuth 之后的处理器中调用。
func CurrentUser(c *gin.Context) *domain.User {
	value, exists := c.Get(contextUserKey)
	if !exists {
		return nil
	}
	user, ok := value.(*domain.User)
	if !ok {
		return nil
	}
	return user
}
