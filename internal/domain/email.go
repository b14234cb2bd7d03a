package domain

import "time"

// Email 表示一封不可变的基础邮件记录。
// 该记录由数据集提供，本核心只读取，所有派生状态保存在 EmailOverlay 中。
type Email struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Sender      string    `json:"sender"`
	SenderEmail string    `json:"sender_email"`
	Subject     string    `json:"subject"`
	Body        string    `json:"body"`
	ReceivedAt  time.Time `json:"received_at"`
	IsRead      bool      `json:"is_read"`
}
