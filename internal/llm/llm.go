// Package llm 封装对外部文本生成服务的调用。
// 对上层而言它是一个不透明能力：给定提示词返回文本，或者失败。
package llm

import (
	"context"
	"errors"
)

// ErrModelFailure 表示外部文本生成服务出错或超时。
// 调用方据此整体中止当前流水线或对话操作，不提交任何部分状态。
var ErrModelFailure = errors.New("model failure")

// 模型侧对话角色。存储层的 assistant 角色在重放时映射为 model。
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Turn 表示一轮既往对话消息。
type Turn struct {
	Role string
	Text string
}

// Generator 是文本生成能力的抽象。
// 两个方法都不做重试、批处理或限流之外的任何恢复，失败立即向上传播。
type Generator interface {
	// Generate 以单条提示词换取一段文本。
	Generate(ctx context.Context, prompt string) (string, error)
	// Converse 重放既往对话并追加一条新的用户消息，返回模型回复。
	Converse(ctx context.Context, history []Turn, message string) (string, error)
}
