package httptransport

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kpuday2004/Email-Productivity-Agent/internal/middleware"
	"github.com/kpuday2004/Email-Productivity-Agent/internal/service"
)

// PromptHandler 处理提示词模板相关的 HTTP 请求
type PromptHandler struct {
	prompts *service.PromptService
	log     *zap.Logger
}

// NewPromptHandler 创建提示词处理器
func NewPromptHandler(prompts *service.PromptService, log *zap.Logger) *PromptHandler {
	return &PromptHandler{prompts: prompts, log: log}
}

type updatePromptRequest struct {
	Name    *string `json:"name"`
	Content *string `json:"content"`
}

// List 返回当前用户的全部提示词模板
func (h *PromptHandler) List(c *gin.Context) {
	user := middleware.CurrentUser(c)
	c.JSON(http.StatusOK, h.prompts.List(user.ID))
}

// Update 部分更新提示词模板，缺省的字段保持不变
func (h *PromptHandler) Update(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req updatePromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Detail(c, http.StatusBadRequest, MsgInvalidRequest)
		return
	}

	err := h.prompts.Update(c.Param("id"), user.ID, service.UpdateInput{
		Name:    req.Name,
		Content: req.Content,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}

	Message(c, http.StatusOK, "Prompt updated")
}
