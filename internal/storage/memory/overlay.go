package memory

import "github.com/kpuday2004/Email-Productivity-Agent/internal/domain"

// GetOverlay 返回覆盖层快照，不存在时返回 nil。
func (s *Store) GetOverlay(emailID string) *domain.EmailOverlay {
	s.overlayMu.RLock()
	defer s.overlayMu.RUnlock()

	overlay, ok := s.overlays[emailID]
	if !ok {
		return nil
	}
	snapshot := *overlay
	if overlay.ActionItems != nil {
		snapshot.ActionItems = make([]domain.ActionItem, len(overlay.ActionItems))
		copy(snapshot.ActionItems, overlay.ActionItems)
	}
	return &snapshot
}

// GetMerged 返回基础记录与覆盖层的合并视图。
func (s *Store) GetMerged(base domain.Email) domain.MergedEmail {
	return domain.Merge(base, s.GetOverlay(base.ID))
}

// MarkRead 将邮件置为已读。对已读邮件重复调用无可观察效果，
// 覆盖层在首次变更时惰性创建。
func (s *Store) MarkRead(emailID string) {
	s.overlayMu.Lock()
	defer s.overlayMu.Unlock()

	overlay, ok := s.overlays[emailID]
	if !ok {
		overlay = &domain.EmailOverlay{}
		s.overlays[emailID] = overlay
	}
	overlay.IsRead = true
}

// ApplyAnnotation 整体替换 category、action_items、draft_reply 三个字段，
// 不做部分合并，且不触碰 is_read。
func (s *Store) ApplyAnnotation(emailID string, annotation domain.Annotation) {
	items := make([]domain.ActionItem, len(annotation.ActionItems))
	copy(items, annotation.ActionItems)

	s.overlayMu.Lock()
	defer s.overlayMu.Unlock()

	overlay, ok := s.overlays[emailID]
	if !ok {
		overlay = &domain.EmailOverlay{}
		s.overlays[emailID] = overlay
	}
	overlay.Annotated = true
	overlay.Category = annotation.Category
	overlay.ActionItems = items
	overlay.DraftReply = annotation.DraftReply
}

// LockEmail 获取单封邮件的写入排他锁，返回解锁函数。
func (s *Store) LockEmail(emailID string) func() {
	return s.emailLocks.lock(emailID)
}
