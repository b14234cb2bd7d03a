package service

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kpuday2004/Email-Productivity-Agent/internal/domain"
)

// ParseActionItems 从任意模型输出文本中提取行动项。
//
// 约定：取首个 '{' 到末个 '}' 之间的片段按 JSON 解析，读取其中的 tasks 数组。
// 任何失败（找不到 JSON 对象、解析失败、tasks 缺失）都退化为空列表，
// 返回的 error 仅供调用方记日志，绝不应导致整体操作失败。
func ParseActionItems(text string) ([]domain.ActionItem, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return []domain.ActionItem{}, fmt.Errorf("no JSON object in model output")
	}

	var payload struct {
		Tasks []domain.ActionItem `json:"tasks"`
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), &payload); err != nil {
		return []domain.ActionItem{}, fmt.Errorf("parse action items: %w", err)
	}

	if payload.Tasks == nil {
		return []domain.ActionItem{}, fmt.Errorf("model output has no tasks field")
	}
	return payload.Tasks, nil
}
