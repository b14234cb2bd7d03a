package httptransport

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kpuday2004/Email-Productivity-Agent/internal/middleware"
	"github.com/kpuday2004/Email-Productivity-Agent/internal/service"
	"github.com/kpuday2004/Email-Productivity-Agent/internal/storage"
)

// EmailHandler 处理邮件相关的 HTTP 请求
type EmailHandler struct {
	emails     *service.EmailService
	enrichment *service.EnrichmentService
	log        *zap.Logger
}

// NewEmailHandler 创建邮件处理器
func NewEmailHandler(emails *service.EmailService, enrichment *service.EnrichmentService, log *zap.Logger) *EmailHandler {
	return &EmailHandler{emails: emails, enrichment: enrichment, log: log}
}

// List 返回当前用户的邮件列表（合并视图，按接收时间倒序）。
// 可选的 category 查询参数按合并后的分类过滤，"all" 等价于不过滤。
func (h *EmailHandler) List(c *gin.Context) {
	user := middleware.CurrentUser(c)
	emails := h.emails.List(user.ID, c.Query("category"))
	c.JSON(http.StatusOK, emails)
}

// Get 返回单封邮件的合并视图
func (h *EmailHandler) Get(c *gin.Context) {
	user := middleware.CurrentUser(c)

	email, err := h.emails.Get(user.ID, c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, email)
}

// MarkRead 将邮件标记为已读，重复调用无额外效果
func (h *EmailHandler) MarkRead(c *gin.Context) {
	user := middleware.CurrentUser(c)

	if err := h.emails.MarkRead(user.ID, c.Param("id")); err != nil {
		writeServiceError(c, err)
		return
	}

	Message(c, http.StatusOK, "Email marked as read")
}

// Process 对单封邮件运行三阶段标注流水线，成功时返回完整标注。
// 流水线是全有或全无的：任一阶段失败时不写入任何标注字段。
func (h *EmailHandler) Process(c *gin.Context) {
	user := middleware.CurrentUser(c)
	emailID := c.Param("id")

	annotation, err := h.enrichment.Process(c.Request.Context(), user.ID, emailID)
	if err != nil {
		if errors.Is(err, storage.ErrEmailNotFound) {
			Detail(c, http.StatusNotFound, MsgEmailNotFound)
			return
		}
		h.log.Error("enrichment pipeline failed",
			zap.String("email_id", emailID),
			zap.Error(err),
		)
		Detail(c, http.StatusInternalServerError, "Processing failed: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, annotation)
}
