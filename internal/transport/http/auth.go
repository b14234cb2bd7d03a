package httptransport

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kpuday2004/Email-Productivity-Agent/internal/domain"
	"github.com/kpuday2004/Email-Productivity-Agent/internal/middleware"
	"github.com/kpuday2004/Email-Productivity-Agent/internal/service"
)

// 会话 Cookie 有效期为 7 天，与令牌本身的生命周期无关：
// 令牌在显式注销前一直有效，Cookie 过期只是让浏览器停止携带它。
const sessionCookieMaxAge = 7 * 24 * 60 * 60

// AuthHandler 处理认证相关的 HTTP 请求
type AuthHandler struct {
	auth *service.AuthService
	log  *zap.Logger
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(auth *service.AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, log: log}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type loginResponse struct {
	User         userResponse `json:"user"`
	SessionToken string       `json:"session_token"`
}

func toUserResponse(user *domain.User) userResponse {
	return userResponse{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
	}
}

// Login 校验凭证并签发会话令牌。
// 令牌同时写入 httpOnly Cookie 与响应体，便于非浏览器客户端使用 Bearer 头。
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Detail(c, http.StatusBadRequest, MsgInvalidRequest)
		return
	}

	user, token, err := h.auth.Login(service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookieName, token, sessionCookieMaxAge, "/", "", false, true)

	h.log.Info("user logged in", zap.String("user_id", user.ID))

	c.JSON(http.StatusOK, loginResponse{
		User:         toUserResponse(user),
		SessionToken: token,
	})
}

// Me 返回当前认证用户的信息
func (h *AuthHandler) Me(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		Detail(c, http.StatusUnauthorized, MsgNotAuthenticated)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}

// Logout 注销会话令牌并清除 Cookie。
// 对未登录的请求同样返回成功，注销是幂等操作。
func (h *AuthHandler) Logout(c *gin.Context) {
	if token, err := c.Cookie(middleware.SessionCookieName); err == nil && token != "" {
		h.auth.Logout(token)
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", false, true)

	Message(c, http.StatusOK, "Logged out")
}
