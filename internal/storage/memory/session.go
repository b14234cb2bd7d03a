package memory

import (
	"github.com/google/uuid"

	"github.com/kpuday2004/Email-Productivity-Agent/internal/storage"
)

// CreateSession 为用户签发新的会话令牌。
// 令牌是不透明的随机 UUID，在显式注销前一直有效。
func (s *Store) CreateSession(userID string) string {
	token := uuid.NewString()

	s.sessionMu.Lock()
	s.sessions[token] = userID
	s.sessionMu.Unlock()

	return token
}

// ResolveSession 根据令牌解析用户 ID。
func (s *Store) ResolveSession(token string) (string, error) {
	s.sessionMu.RLock()
	userID, ok := s.sessions[token]
	s.sessionMu.RUnlock()

	if !ok {
		return "", storage.ErrSessionNotFound
	}
	return userID, nil
}

// DeleteSession 注销令牌，对未知令牌调用无效果。
func (s *Store) DeleteSession(token string) {
	s.sessionMu.Lock()
	delete(s.sessions, token)
	s.sessionMu.Unlock()
}
