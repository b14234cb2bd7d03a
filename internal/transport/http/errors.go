package httptransport

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kpuday2004/Email-Productivity-Agent/internal/service"
	"github.com/kpuday2004/Email-Productivity-Agent/internal/storage"
)

// 通用错误消息
const (
	MsgInvalidRequest     = "Invalid request body"
	MsgInvalidCredentials = "Invalid credentials"
	MsgNotAuthenticated   = "Not authenticated"
	MsgEmailNotFound      = "Email not found"
	MsgPromptNotFound     = "Prompt not found"
	MsgInternalError      = "Internal server error"
)

// writeServiceError 将业务错误映射为 HTTP 状态码与错误消息
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		Detail(c, http.StatusUnauthorized, MsgInvalidCredentials)
	case errors.Is(err, service.ErrNotAuthenticated):
		Detail(c, http.StatusUnauthorized, MsgNotAuthenticated)
	case errors.Is(err, storage.ErrEmailNotFound):
		Detail(c, http.StatusNotFound, MsgEmailNotFound)
	case errors.Is(err, storage.ErrPromptNotFound):
		Detail(c, http.StatusNotFound, MsgPromptNotFound)
	default:
		Detail(c, http.StatusInternalServerError, MsgInternalError)
	}
}
