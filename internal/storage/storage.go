package storage

import (
	"errors"

	"github.com/kpuday2004/Email-Productivity-Agent/internal/domain"
)

var (
	// ErrUserNotFound 用户未找到错误
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailNotFound 邮件未找到错误
	ErrEmailNotFound = errors.New("email not found")
	// ErrPromptNotFound 提示词模板未找到错误
	ErrPromptNotFound = errors.New("prompt not found")
	// ErrSessionNotFound 会话令牌无效或已注销
	ErrSessionNotFound = errors.New("session not found")
)

// UserRepository 定义只读的用户数据存取操作。
type UserRepository interface {
	GetUserByID(id string) (*domain.User, error)
	GetUserByEmail(email string) (*domain.User, error)
}

// EmailRepository 定义只读的基础邮件记录存取操作。
type EmailRepository interface {
	GetEmail(id string) (*domain.Email, error)
	ListEmailsByUserID(userID string) []domain.Email
}

// OverlayRepository 定义邮件派生状态（覆盖层）的存取操作。
// 覆盖层不存在是合法状态，因此读取不会报错；写入在首次变更时惰性创建。
type OverlayRepository interface {
	// GetOverlay 返回覆盖层快照，不存在时返回 nil。
	GetOverlay(emailID string) *domain.EmailOverlay
	// GetMerged 返回基础记录与覆盖层的合并视图。
	GetMerged(base domain.Email) domain.MergedEmail
	// MarkRead 将邮件置为已读，对已读邮件重复调用无可观察效果。
	MarkRead(emailID string)
	// ApplyAnnotation 整体替换三个标注字段，保留 is_read。
	ApplyAnnotation(emailID string, annotation domain.Annotation)
	// LockEmail 获取单封邮件的写入排他锁，返回解锁函数。
	// 不同邮件之间互不阻塞。
	LockEmail(emailID string) (unlock func())
}

// SessionRepository 定义会话令牌的存取操作。
// 令牌是不透明的能力凭证，在显式注销前一直有效。
type SessionRepository interface {
	// CreateSession 为用户签发新令牌，令牌全局唯一。
	CreateSession(userID string) (token string)
	// ResolveSession 根据令牌解析用户 ID。
	ResolveSession(token string) (userID string, err error)
	// DeleteSession 注销令牌，对未知令牌调用无效果。
	DeleteSession(token string)
}

// ConversationRepository 定义按用户追加的对话记录存取操作。
// 记录中只会出现完整的问答对，追加后不再编辑或删除。
type ConversationRepository interface {
	// History 返回用户对话记录的快照，从未对话时返回空序列。
	History(userID string) []domain.ChatMessage
	// AppendExchange 原子地追加一个问答对（先用户消息后助手消息）。
	AppendExchange(userID string, question, answer domain.ChatMessage)
	// LockConversation 获取单个用户对话的排他锁，返回解锁函数。
	// 用于在整个对话回合内保持每用户 FIFO 顺序。
	LockConversation(userID string) (unlock func())
}

// PromptRepository 定义提示词模板的存取操作。
type PromptRepository interface {
	ListPromptsByUserID(userID string) []domain.PromptTemplate
	// UpdatePrompt 部分更新模板，nil 字段保持不变；
	// 模板不存在或不属于该用户时返回 ErrPromptNotFound。
	UpdatePrompt(id, userID string, name, content *string) error
	// ResolvePrompts 返回用户各用途到模板内容的映射，缺失的用途不在映射中。
	ResolvePrompts(userID string) map[domain.PromptPurpose]string
}

// Store 聚合全部存取接口，生命周期为进程启动到退出。
type Store interface {
	UserRepository
	EmailRepository
	OverlayRepository
	SessionRepository
	ConversationRepository
	PromptRepository

	// Reset 清空全部可变状态并恢复初始模板，测试专用。
	Reset()
	Health() error
	Close() error
}
