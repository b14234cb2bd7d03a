package domain

// User 表示系统中的一个用户账户。
// 用户数据由数据集在进程启动时提供，本核心不会修改它。
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"-"` // 仅用于登录比对的不透明凭证，不参与序列化
}
