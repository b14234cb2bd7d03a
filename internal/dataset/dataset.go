package dataset

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/kpuday2004/Email-Productivity-Agent/internal/domain"
)

// Data 是进程启动时加载的不可变数据集。
// 用户、邮件为只读集合；提示词作为初始模板交给存储层持有可变副本。
type Data struct {
	Users   []domain.User
	Emails  []domain.Email
	Prompts []domain.PromptTemplate
}

// userRecord 数据集中的用户记录，凭证仅在加载时读取。
type userRecord struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type fileLayout struct {
	Users   []userRecord            `json:"users"`
	Emails  []domain.Email          `json:"emails"`
	Prompts []domain.PromptTemplate `json:"prompts"`
}

// Load 从 JSON 文件加载数据集并做结构校验。
//
// 校验规则：
//   - 用户 ID 与邮箱地址不得重复
//   - 邮件必须归属已知用户
//   - 提示词用途标签必须合法，且每个 (用户, 用途) 组合至多一个模板；
//     重复直接拒绝而不是静默取最后一个
func Load(path string) (*Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}

	var layout fileLayout
	if err := json.Unmarshal(raw, &layout); err != nil {
		return nil, fmt.Errorf("parse dataset: %w", err)
	}

	data := &Data{
		Users:   make([]domain.User, 0, len(layout.Users)),
		Emails:  layout.Emails,
		Prompts: layout.Prompts,
	}

	userIDs := make(map[string]struct{}, len(layout.Users))
	userEmails := make(map[string]struct{}, len(layout.Users))
	for _, u := range layout.Users {
		if u.ID == "" {
			return nil, fmt.Errorf("dataset: user with empty id")
		}
		if _, ok := userIDs[u.ID]; ok {
			return nil, fmt.Errorf("dataset: duplicate user id %q", u.ID)
		}
		if _, ok := userEmails[u.Email]; ok {
			return nil, fmt.Errorf("dataset: duplicate user email %q", u.Email)
		}
		userIDs[u.ID] = struct{}{}
		userEmails[u.Email] = struct{}{}
		data.Users = append(data.Users, domain.User{
			ID:       u.ID,
			Email:    u.Email,
			Name:     u.Name,
			Password: u.Password,
		})
	}

	emailIDs := make(map[string]struct{}, len(layout.Emails))
	for _, e := range layout.Emails {
		if e.ID == "" {
			return nil, fmt.Errorf("dataset: email with empty id")
		}
		if _, ok := emailIDs[e.ID]; ok {
			return nil, fmt.Errorf("dataset: duplicate email id %q", e.ID)
		}
		if _, ok := userIDs[e.UserID]; !ok {
			return nil, fmt.Errorf("dataset: email %q references unknown user %q", e.ID, e.UserID)
		}
		emailIDs[e.ID] = struct{}{}
	}

	seenPurpose := make(map[string]struct{}, len(layout.Prompts))
	for _, p := range layout.Prompts {
		if p.ID == "" {
			return nil, fmt.Errorf("dataset: prompt with empty id")
		}
		if !p.Purpose.Valid() {
			return nil, fmt.Errorf("dataset: prompt %q has unknown purpose %q", p.ID, p.Purpose)
		}
		if _, ok := userIDs[p.UserID]; !ok {
			return nil, fmt.Errorf("dataset: prompt %q references unknown user %q", p.ID, p.UserID)
		}
		key := p.UserID + "/" + string(p.Purpose)
		if _, ok := seenPurpose[key]; ok {
			return nil, fmt.Errorf("dataset: duplicate prompt purpose %q for user %q", p.Purpose, p.UserID)
		}
		seenPurpose[key] = struct{}{}
	}

	return data, nil
}
