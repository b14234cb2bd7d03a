package service

import (
	"github.com/kpuday2004/Email-Productivity-Agent/internal/domain"
	"github.com/kpuday2004/Email-Productivity-Agent/internal/storage"
)

// PromptService 提供提示词模板的查询与编辑。
type PromptService struct {
	store storage.PromptRepository
}

// NewPromptService 创建提示词业务服务。
func NewPromptService(store storage.PromptRepository) *PromptService {
	return &PromptService{store: store}
}

// List 返回用户的全部提示词模板。
func (s *PromptService) List(userID string) []domain.PromptTemplate {
	return s.store.ListPromptsByUserID(userID)
}

// UpdateInput 定义模板部分更新的输入，nil 字段保持不变。
type UpdateInput struct {
	Name    *string
	Content *string
}

// Update 部分更新模板，不存在或不属于该用户时返回 ErrPromptNotFound。
func (s *PromptService) Update(promptID, userID string, input UpdateInput) error {
	return s.store.UpdatePrompt(promptID, userID, input.Name, input.Content)
}
