package memory

import (
	"github.com/kpuday2004/Email-Productivity-Agent/internal/domain"
	"github.com/kpuday2004/Email-Productivity-Agent/internal/storage"
)

// ListPromptsByUserID 返回指定用户全部提示词模板的快照，保持数据集顺序。
func (s *Store) ListPromptsByUserID(userID string) []domain.PromptTemplate {
	s.promptMu.RLock()
	defer s.promptMu.RUnlock()

	ids := s.promptsByUser[userID]
	result := make([]domain.PromptTemplate, 0, len(ids))
	for _, id := range ids {
		result = append(result, *s.prompts[id])
	}
	return result
}

// UpdatePrompt 部分更新模板，nil 字段保持不变。
// 模板不存在或不属于该用户时返回 ErrPromptNotFound。
func (s *Store) UpdatePrompt(id, userID string, name, content *string) error {
	s.promptMu.Lock()
	defer s.promptMu.Unlock()

	prompt, ok := s.prompts[id]
	if !ok || prompt.UserID != userID {
		return storage.ErrPromptNotFound
	}

	if name != nil {
		prompt.Name = *name
	}
	if content != nil {
		prompt.Content = *content
	}
	return nil
}

// ResolvePrompts 返回用户各用途到模板内容的映射。
// 缺失的用途不在映射中，由流水线用内置指令兜底；
// (用户, 用途) 的唯一性在数据集加载时已经保证。
func (s *Store) ResolvePrompts(userID string) map[domain.PromptPurpose]string {
	s.promptMu.RLock()
	defer s.promptMu.RUnlock()

	resolved := make(map[domain.PromptPurpose]string)
	for _, id := range s.promptsByUser[userID] {
		prompt := s.prompts[id]
		resolved[prompt.Purpose] = prompt.Content
	}
	return resolved
}
