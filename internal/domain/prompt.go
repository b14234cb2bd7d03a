package domain

// PromptPurpose 表示提示词模板的用途标签。
type PromptPurpose string

const (
	PurposeCategorization   PromptPurpose = "categorization"
	PurposeActionExtraction PromptPurpose = "action_extraction"
	PurposeAutoReply        PromptPurpose = "auto_reply"
)

// Valid 判断用途标签是否为已知值。
func (p PromptPurpose) Valid() bool {
	switch p {
	case PurposeCategorization, PurposeActionExtraction, PurposeAutoReply:
		return true
	}
	return false
}

// PromptTemplate 表示用户可编辑的提示词模板。
// 每个 (用户, 用途) 组合最多允许一个模板，重复在数据集加载时即被拒绝。
type PromptTemplate struct {
	ID      string        `json:"id"`
	UserID  string        `json:"user_id"`
	Purpose PromptPurpose `json:"prompt_type"`
	Name    string        `json:"name"`
	Content string        `json:"content"`
}
