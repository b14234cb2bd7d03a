package memory

import "github.com/kpuday2004/Email-Productivity-Agent/internal/domain"

// History 返回用户对话记录的快照，从未对话时返回空序列。
func (s *Store) History(userID string) []domain.ChatMessage {
	s.convMu.RLock()
	defer s.convMu.RUnlock()

	messages := s.conversations[userID]
	result := make([]domain.ChatMessage, len(messages))
	copy(result, messages)
	return result
}

// AppendExchange 原子地追加一个完整问答对，先用户消息后助手消息。
// 失败的对话回合不会到达这里，因此记录中只存在成功交换的整对消息。
func (s *Store) AppendExchange(userID string, question, answer domain.ChatMessage) {
	s.convMu.Lock()
	s.conversations[userID] = append(s.conversations[userID], question, answer)
	s.convMu.Unlock()
}

// LockConversation 获取单个用户对话的排他锁，返回解锁函数。
func (s *Store) LockConversation(userID string) func() {
	return s.convLocks.lock(userID)
}
