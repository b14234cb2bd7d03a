package domain

// ActionItem 表示从邮件正文中提取出的一个行动项。
type ActionItem struct {
	Task     string `json:"task"`
	Deadline string `json:"deadline,omitempty"`
}

// Annotation 是三阶段处理流水线的完整产出。
type Annotation struct {
	Category    string       `json:"category"`
	ActionItems []ActionItem `json:"action_items"`
	DraftReply  string       `json:"draft_reply"`
}

// EmailOverlay 保存单封邮件的可变派生状态，按邮件 ID 建立。
// 覆盖层不存在是合法状态，等价于"尚未处理、未读（除非基础记录已读）"。
type EmailOverlay struct {
	IsRead      bool
	Annotated   bool // 三个标注字段是否已写入过
	Category    string
	ActionItems []ActionItem
	DraftReply  string
}

// MergedEmail 是对外暴露的唯一邮件视图：基础记录叠加覆盖层字段。
type MergedEmail struct {
	Email
	Category    string       `json:"category,omitempty"`
	ActionItems []ActionItem `json:"action_items,omitempty"`
	DraftReply  string       `json:"draft_reply,omitempty"`
}

// Merge 将覆盖层叠加到基础记录上，overlay 为 nil 时原样返回基础记录。
func Merge(base Email, overlay *EmailOverlay) MergedEmail {
	merged := MergedEmail{Email: base}
	if overlay == nil {
		return merged
	}
	if overlay.IsRead {
		merged.IsRead = true
	}
	if overlay.Annotated {
		merged.Category = overlay.Category
		merged.ActionItems = overlay.ActionItems
		merged.DraftReply = overlay.DraftReply
	}
	return merged
}
