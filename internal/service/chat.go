package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kpuday2004/Email-Productivity-Agent/internal/domain"
	"github.com/kpuday2004/Email-Productivity-Agent/internal/llm"
	"github.com/kpuday2004/Email-Productivity-Agent/internal/monitoring"
	"github.com/kpuday2004/Email-Productivity-Agent/internal/storage"
)

// uncategorizedLabel 是未标注邮件在分类直方图中的桶名。
const uncategorizedLabel = "Uncategorized"

// BuildMailboxSummary 根据合并视图计算邮箱的单句文字摘要：
// 邮件总数、未读数与分类直方图。纯函数，每个对话回合重新计算，不做缓存。
func BuildMailboxSummary(emails []domain.MergedEmail) string {
	unread := 0
	categories := make(map[string]int)
	for _, e := range emails {
		if !e.IsRead {
			unread++
		}
		label := e.Category
		if label == "" {
			label = uncategorizedLabel
		}
		categories[label]++
	}

	// map 经 JSON 编码后键按字典序排列，摘要因此是确定性的
	histogram, _ := json.Marshal(categories)
	return fmt.Sprintf("User has %d emails. %d unread. Categories: %s", len(emails), unread, histogram)
}

// ChatStore 是对话服务依赖的存储能力。
type ChatStore interface {
	storage.ConversationRepository
}

// ChatService 实现邮箱感知的对话助手。
//
// 每个回合：重算邮箱摘要作为系统指令，按存储顺序重放既往对话，
// 发起一次模型调用；成功后先追加用户消息再追加助手回复，
// 失败则什么都不追加，保证记录中只有完整的成功问答对。
type ChatService struct {
	store     ChatStore
	emails    *EmailService
	generator llm.Generator
	metrics   *monitoring.Metrics // 可为 nil（测试场景）
	log       *zap.Logger
}

// NewChatService 创建对话业务服务。
func NewChatService(store ChatStore, emails *EmailService, generator llm.Generator, metrics *monitoring.Metrics, log *zap.Logger) *ChatService {
	return &ChatService{store: store, emails: emails, generator: generator, metrics: metrics, log: log}
}

// Send 处理一个对话回合并返回助手回复。
// 同一用户的回合串行执行，保证记录的每用户 FIFO 顺序。
func (s *ChatService) Send(ctx context.Context, userID, message string) (string, error) {
	unlock := s.store.LockConversation(userID)
	defer unlock()

	summary := BuildMailboxSummary(s.emails.List(userID, ""))
	system := fmt.Sprintf(
		"You are an intelligent email assistant. %s. Help the user manage their inbox, answer questions about emails, and provide insights.",
		summary,
	)

	history := s.store.History(userID)
	turns := make([]llm.Turn, 0, len(history))
	for _, msg := range history {
		role := llm.RoleUser
		if msg.Role == domain.RoleAssistant {
			role = llm.RoleModel
		}
		turns = append(turns, llm.Turn{Role: role, Text: msg.Content})
	}

	started := time.Now()
	reply, err := s.generator.Converse(ctx, turns, system+"\n\nUser: "+message)
	if err != nil {
		s.log.Error("chat turn failed",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		if s.metrics != nil {
			s.metrics.ChatTurns.WithLabelValues("failure").Inc()
		}
		return "", err
	}

	s.store.AppendExchange(userID,
		domain.ChatMessage{Role: domain.RoleUser, Content: message},
		domain.ChatMessage{Role: domain.RoleAssistant, Content: reply},
	)

	s.log.Info("chat turn completed",
		zap.String("user_id", userID),
		zap.Int("history_len", len(history)),
		zap.Duration("elapsed", time.Since(started)),
	)
	if s.metrics != nil {
		s.metrics.ChatTurns.WithLabelValues("success").Inc()
	}
	return reply, nil
}

// History 返回用户的对话记录，从未对话时为空序列。
func (s *ChatService) History(userID string) []domain.ChatMessage {
	return s.store.History(userID)
}
