package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kpuday2004/Email-Productivity-Agent/internal/domain"
	"github.com/kpuday2004/Email-Productivity-Agent/internal/llm"
	"github.com/kpuday2004/Email-Productivity-Agent/internal/monitoring"
	"github.com/kpuday2004/Email-Productivity-Agent/internal/storage"
)

// 各阶段的内置兜底指令，用户未配置对应模板（或模板为空）时使用。
const (
	fallbackCategorization   = "Categorize this email"
	fallbackActionExtraction = "Extract action items"
	fallbackAutoReply        = "Draft a reply"
)

// EnrichmentStore 是标注流水线依赖的存储能力。
type EnrichmentStore interface {
	storage.EmailRepository
	storage.OverlayRepository
	storage.PromptRepository
}

// EnrichmentService 执行三阶段标注流水线：分类、行动项提取、草拟回复。
//
// 三次模型调用严格顺序执行；任何一次失败都整体中止，不写入覆盖层。
// 同一封邮件的并发处理按邮件 ID 串行化，不同邮件互不阻塞。
type EnrichmentService struct {
	store     EnrichmentStore
	generator llm.Generator
	metrics   *monitoring.Metrics // 可为 nil（测试场景）
	log       *zap.Logger
}

// NewEnrichmentService 创建标注流水线服务。
func NewEnrichmentService(store EnrichmentStore, generator llm.Generator, metrics *monitoring.Metrics, log *zap.Logger) *EnrichmentService {
	return &EnrichmentService{store: store, generator: generator, metrics: metrics, log: log}
}

// Process 对一封邮件执行完整流水线并原子写入覆盖层。
//
// 重复调用会完整重算并覆盖三个标注字段；只要模型响应相同，结果也相同。
// 邮件不存在或不属于该用户时返回 ErrEmailNotFound；
// 模型调用失败时返回 llm.ErrModelFailure，覆盖层保持调用前的状态。
func (s *EnrichmentService) Process(ctx context.Context, userID, emailID string) (*domain.Annotation, error) {
	email, err := s.store.GetEmail(emailID)
	if err != nil {
		return nil, err
	}
	if email.UserID != userID {
		return nil, storage.ErrEmailNotFound
	}

	// 同一封邮件串行处理，避免交错的三段写入互相覆盖
	unlock := s.store.LockEmail(emailID)
	defer unlock()

	started := time.Now()
	templates := s.store.ResolvePrompts(userID)
	rendered := renderEmail(email)

	// 阶段一：分类。模型原样输出即为分类标签，不做枚举校验。
	category, err := s.generate(ctx, templates, domain.PurposeCategorization, fallbackCategorization, rendered)
	if err != nil {
		return nil, s.stageFailed(emailID, "categorize", err)
	}

	// 阶段二：行动项提取。输出格式不可靠，解析失败退化为空列表。
	actionText, err := s.generate(ctx, templates, domain.PurposeActionExtraction, fallbackActionExtraction, rendered)
	if err != nil {
		return nil, s.stageFailed(emailID, "extract_actions", err)
	}
	items, parseErr := ParseActionItems(actionText)
	if parseErr != nil {
		s.log.Warn("action items degraded to empty list",
			zap.String("email_id", emailID),
			zap.Error(parseErr),
		)
		if s.metrics != nil {
			s.metrics.ActionParseFailures.Inc()
		}
	}

	// 阶段三：草拟回复。
	draftReply, err := s.generate(ctx, templates, domain.PurposeAutoReply, fallbackAutoReply, rendered)
	if err != nil {
		return nil, s.stageFailed(emailID, "draft_reply", err)
	}

	annotation := domain.Annotation{
		Category:    category,
		ActionItems: items,
		DraftReply:  draftReply,
	}
	s.store.ApplyAnnotation(emailID, annotation)

	s.log.Info("email processed",
		zap.String("email_id", emailID),
		zap.String("category", annotation.Category),
		zap.Int("action_items", len(annotation.ActionItems)),
		zap.Duration("elapsed", time.Since(started)),
	)
	if s.metrics != nil {
		s.metrics.PipelineRuns.WithLabelValues("success").Inc()
		s.metrics.PipelineDuration.Observe(time.Since(started).Seconds())
	}
	return &annotation, nil
}

// generate 执行单个流水线阶段：解析该用途的指令并调用模型，结果去除首尾空白。
func (s *EnrichmentService) generate(ctx context.Context, templates map[domain.PromptPurpose]string, purpose domain.PromptPurpose, fallback, rendered string) (string, error) {
	instruction := templates[purpose]
	if strings.TrimSpace(instruction) == "" {
		instruction = fallback
	}

	output, err := s.generator.Generate(ctx, instruction+"\n\n"+rendered)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(output), nil
}

func (s *EnrichmentService) stageFailed(emailID, stage string, err error) error {
	s.log.Error("pipeline stage failed",
		zap.String("email_id", emailID),
		zap.String("stage", stage),
		zap.Error(err),
	)
	if s.metrics != nil {
		s.metrics.PipelineRuns.WithLabelValues("failure").Inc()
	}
	return fmt.Errorf("stage %s: %w", stage, err)
}

// renderEmail 将邮件渲染成各阶段共用的标准化文本。
func renderEmail(e *domain.Email) string {
	return fmt.Sprintf("From: %s <%s>\nSubject: %s\n\n%s", e.Sender, e.SenderEmail, e.Subject, e.Body)
}
