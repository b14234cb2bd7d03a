package domain

// ChatRole 表示对话消息的角色。
type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// ChatMessage 表示对话记录中的一条消息。
// 按创建顺序追加保存，顺序即重放顺序，无需时间戳。
type ChatMessage struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`
}
