package service

import (
	"sort"

	"github.com/kpuday2004/Email-Productivity-Agent/internal/domain"
	"github.com/kpuday2004/Email-Productivity-Agent/internal/storage"
)

// EmailStore 是邮件服务依赖的存储能力。
type EmailStore interface {
	storage.EmailRepository
	storage.OverlayRepository
}

// EmailService 提供合并视图上的邮件查询与已读标记。
type EmailService struct {
	store EmailStore
}

// NewEmailService 创建邮件业务服务。
func NewEmailService(store EmailStore) *EmailService {
	return &EmailService{store: store}
}

// List 返回用户的全部邮件合并视图，按接收时间倒序。
// category 非空且不为 "all" 时按合并后的分类过滤。
func (s *EmailService) List(userID, category string) []domain.MergedEmail {
	bases := s.store.ListEmailsByUserID(userID)

	merged := make([]domain.MergedEmail, 0, len(bases))
	for _, base := range bases {
		view := s.store.GetMerged(base)
		if category != "" && category != "all" && view.Category != category {
			continue
		}
		merged = append(merged, view)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].ReceivedAt.After(merged[j].ReceivedAt)
	})
	return merged
}

// Get 返回单封邮件的合并视图。
// 邮件不存在或不属于该用户时返回 ErrEmailNotFound。
func (s *EmailService) Get(userID, emailID string) (*domain.MergedEmail, error) {
	base, err := s.ownedEmail(userID, emailID)
	if err != nil {
		return nil, err
	}

	merged := s.store.GetMerged(*base)
	return &merged, nil
}

// MarkRead 将邮件标记为已读，幂等。
func (s *EmailService) MarkRead(userID, emailID string) error {
	if _, err := s.ownedEmail(userID, emailID); err != nil {
		return err
	}

	s.store.MarkRead(emailID)
	return nil
}

// ownedEmail 获取基础记录并校验归属。
// 归属错误与不存在同样返回 ErrEmailNotFound，不向调用方泄露他人邮件的存在。
func (s *EmailService) ownedEmail(userID, emailID string) (*domain.Email, error) {
	base, err := s.store.GetEmail(emailID)
	if err != nil {
		return nil, err
	}
	if base.UserID != userID {
		return nil, storage.ErrEmailNotFound
	}
	return base, nil
}
