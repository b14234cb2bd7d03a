package service

import (
	"context"
	"fmt"
	"time"

	"github.com/kpuday2004/Email-Productivity-Agent/internal/dataset"
	"github.com/kpuday2004/Email-Productivity-Agent/internal/domain"
	"github.com/kpuday2004/Email-Productivity-Agent/internal/llm"
	"github.com/kpuday2004/Email-Productivity-Agent/internal/storage/memory"
)

// newFixtureStore 构造测试共用的内存存储。
func newFixtureStore() *memory.Store {
	return memory.NewStore(&dataset.Data{
		Users: []domain.User{
			{ID: "user-1", Email: "alice@example.com", Name: "Alice", Password: "secret"},
			{ID: "user-2", Email: "bob@example.com", Name: "Bob", Password: "hunter2"},
		},
		Emails: []domain.Email{
			{
				ID: "email-1", UserID: "user-1", Sender: "GitHub",
				SenderEmail: "noreply@github.com", Subject: "Security alert",
				Body:       "A new SSH key was added to your account.",
				ReceivedAt: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
			},
			{
				ID: "email-2", UserID: "user-1", Sender: "Carol",
				SenderEmail: "carol@corp.example.com", Subject: "Q3 planning",
				Body:       "Please review the deck before Friday.",
				ReceivedAt: time.Date(2025, 6, 2, 14, 0, 0, 0, time.UTC),
				IsRead:     true,
			},
			{
				ID: "email-3", UserID: "user-2", Sender: "Digest",
				SenderEmail: "digest@news.example.com", Subject: "Weekly digest",
				Body:       "Top stories this week.",
				ReceivedAt: time.Date(2025, 6, 3, 8, 0, 0, 0, time.UTC),
			},
		},
		Prompts: []domain.PromptTemplate{
			{ID: "prompt-1", UserID: "user-1", Purpose: domain.PurposeCategorization, Name: "Cat", Content: "Pick one of: Important, Newsletter, Spam."},
			{ID: "prompt-2", UserID: "user-1", Purpose: domain.PurposeActionExtraction, Name: "Actions", Content: "Return JSON with a tasks array."},
		},
	})
}

// fakeGenerator 是 llm.Generator 的测试替身，按调用顺序返回预置响应。
type fakeGenerator struct {
	responses []string
	failAt    int // 第 N 次 Generate 调用（从 0 起）返回模型失败，-1 表示不失败
	prompts   []string

	converseReply   string
	converseErr     error
	converseHistory []llm.Turn
	converseMessage string
}

func newFakeGenerator(responses ...string) *fakeGenerator {
	return &fakeGenerator{responses: responses, failAt: -1}
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	call := len(f.prompts)
	f.prompts = append(f.prompts, prompt)
	if call == f.failAt {
		return "", fmt.Errorf("%w: injected", llm.ErrModelFailure)
	}
	if call >= len(f.responses) {
		return "", fmt.Errorf("%w: unexpected call %d", llm.ErrModelFailure, call)
	}
	return f.responses[call], nil
}

func (f *fakeGenerator) Converse(_ context.Context, history []llm.Turn, message string) (string, error) {
	f.converseHistory = history
	f.converseMessage = message
	if f.converseErr != nil {
		return "", f.converseErr
	}
	return f.converseReply, nil
}
