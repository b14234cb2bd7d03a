package httptransport

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kpuday2004/Email-Productivity-Agent/internal/middleware"
	"github.com/kpuday2004/Email-Productivity-Agent/internal/service"
)

// ChatHandler 处理对话相关的 HTTP 请求
type ChatHandler struct {
	chat *service.ChatService
	log  *zap.Logger
}

// NewChatHandler 创建对话处理器
func NewChatHandler(chat *service.ChatService, log *zap.Logger) *ChatHandler {
	return &ChatHandler{chat: chat, log: log}
}

type chatRequest struct {
	Message string `json:"message" binding:"required"`
}

type chatResponse struct {
	Response string `json:"response"`
}

// Send 发送一条对话消息并返回助手回复。
// 失败的回合不会写入对话记录，客户端可以原样重试。
func (h *ChatHandler) Send(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Detail(c, http.StatusBadRequest, MsgInvalidRequest)
		return
	}

	reply, err := h.chat.Send(c.Request.Context(), user.ID, req.Message)
	if err != nil {
		h.log.Error("chat turn failed",
			zap.String("user_id", user.ID),
			zap.Error(err),
		)
		Detail(c, http.StatusInternalServerError, "Chat failed: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, chatResponse{Response: reply})
}

// History 返回当前用户的完整对话记录
func (h *ChatHandler) History(c *gin.Context) {
	user := middleware.CurrentUser(c)
	c.JSON(http.StatusOK, h.chat.History(user.ID))
}
