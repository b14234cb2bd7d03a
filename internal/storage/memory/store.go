package memory

import (
	"sync"

	"github.com/kpuday2004/Email-Productivity-Agent/internal/dataset"
	"github.com/kpuday2004/Email-Productivity-Agent/internal/domain"
	"github.com/kpuday2004/Email-Productivity-Agent/internal/storage"
)

// Store 使用内存保存全部进程生命周期状态。
//
// 不可变部分（用户、基础邮件记录、初始提示词模板）在构造时由数据集注入，
// 此后只读；可变部分（覆盖层、会话、对话记录、模板副本）由各自的互斥锁保护。
type Store struct {
	// 不可变集合，构造后只读，无需加锁
	users        map[string]*domain.User
	usersByEmail map[string]string
	emails       map[string]*domain.Email
	emailsByUser map[string][]string // userID -> emailID，保持数据集顺序
	seedPrompts  []domain.PromptTemplate

	overlayMu sync.RWMutex
	overlays  map[string]*domain.EmailOverlay

	sessionMu sync.RWMutex
	sessions  map[string]string // token -> userID

	convMu        sync.RWMutex
	conversations map[string][]domain.ChatMessage

	promptMu      sync.RWMutex
	prompts       map[string]*domain.PromptTemplate
	promptsByUser map[string][]string // userID -> promptID，保持数据集顺序

	emailLocks keyedMutex // process 写入的按邮件排他
	convLocks  keyedMutex // 对话回合的按用户排他
}

var _ storage.Store = (*Store)(nil)

// NewStore 基于不可变数据集创建内存存储实例。
func NewStore(data *dataset.Data) *Store {
	s := &Store{
		users:        make(map[string]*domain.User, len(data.Users)),
		usersByEmail: make(map[string]string, len(data.Users)),
		emails:       make(map[string]*domain.Email, len(data.Emails)),
		emailsByUser: make(map[string][]string),
		seedPrompts:  make([]domain.PromptTemplate, len(data.Prompts)),
	}

	for i := range data.Users {
		u := data.Users[i]
		s.users[u.ID] = &u
		s.usersByEmail[u.Email] = u.ID
	}
	for i := range data.Emails {
		e := data.Emails[i]
		s.emails[e.ID] = &e
		s.emailsByUser[e.UserID] = append(s.emailsByUser[e.UserID], e.ID)
	}
	copy(s.seedPrompts, data.Prompts)

	s.resetMutable()
	return s
}

// resetMutable 重建全部可变状态。
func (s *Store) resetMutable() {
	s.overlayMu.Lock()
	s.overlays = make(map[string]*domain.EmailOverlay)
	s.overlayMu.Unlock()

	s.sessionMu.Lock()
	s.sessions = make(map[string]string)
	s.sessionMu.Unlock()

	s.convMu.Lock()
	s.conversations = make(map[string][]domain.ChatMessage)
	s.convMu.Unlock()

	s.promptMu.Lock()
	s.prompts = make(map[string]*domain.PromptTemplate, len(s.seedPrompts))
	s.promptsByUser = make(map[string][]string)
	for i := range s.seedPrompts {
		p := s.seedPrompts[i]
		s.prompts[p.ID] = &p
		s.promptsByUser[p.UserID] = append(s.promptsByUser[p.UserID], p.ID)
	}
	s.promptMu.Unlock()
}

// GetUserByID 根据 ID 获取用户。
func (s *Store) GetUserByID(id string) (*domain.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	u := *user
	return &u, nil
}

// GetUserByEmail 根据邮箱地址获取用户。
func (s *Store) GetUserByEmail(email string) (*domain.User, error) {
	id, ok := s.usersByEmail[email]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return s.GetUserByID(id)
}

// GetEmail 获取单封基础邮件记录。
func (s *Store) GetEmail(id string) (*domain.Email, error) {
	email, ok := s.emails[id]
	if !ok {
		return nil, storage.ErrEmailNotFound
	}
	e := *email
	return &e, nil
}

// ListEmailsByUserID 返回指定用户全部基础邮件记录的快照。
func (s *Store) ListEmailsByUserID(userID string) []domain.Email {
	ids := s.emailsByUser[userID]
	result := make([]domain.Email, 0, len(ids))
	for _, id := range ids {
		result = append(result, *s.emails[id])
	}
	return result
}

// Reset 清空全部可变状态并恢复初始模板，测试专用。
func (s *Store) Reset() {
	s.resetMutable()
}

// Health 健康检查，内存存储总是健康的。
func (s *Store) Health() error {
	return nil
}

// Close 关闭存储，内存存储无需释放资源。
func (s *Store) Close() error {
	return nil
}
