package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kpuday2004/Email-Productivity-Agent/internal/config"
)

// 聊天回复的输出长度上限，与原有前端的展示预期保持一致。
const chatMaxOutputTokens = 1000

// GeminiClient 通过 REST 接口调用 Gemini generateContent。
// 每次调用带独立超时与客户端限速，超时与任何传输/接口错误都归类为模型失败。
type GeminiClient struct {
	cfg        config.GeminiConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *zap.Logger
}

// NewGeminiClient 创建 Gemini 客户端。
func NewGeminiClient(cfg config.GeminiConfig, log *zap.Logger) *GeminiClient {
	perSecond := rate.Limit(float64(cfg.RequestsPerMinute) / 60.0)
	return &GeminiClient{
		cfg: cfg,
		// 超时由每次调用的 context 控制，而不是挂在 http.Client 上，
		// 这样限速等待不会占用调用预算
		httpClient: &http.Client{},
		limiter:    rate.NewLimiter(perSecond, cfg.RequestsPerMinute),
		log:        log,
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type generationConfig struct {
	MaxOutputTokens int `json:"maxOutputTokens,omitempty"`
}

type generateRequest struct {
	Contents         []geminiContent   `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Generate 以单条提示词换取一段文本。
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	req := generateRequest{
		Contents: []geminiContent{
			{Role: RoleUser, Parts: []geminiPart{{Text: prompt}}},
		},
	}
	return c.call(ctx, req)
}

// Converse 重放既往对话并追加一条新的用户消息，返回模型回复。
func (c *GeminiClient) Converse(ctx context.Context, history []Turn, message string) (string, error) {
	contents := make([]geminiContent, 0, len(history)+1)
	for _, turn := range history {
		contents = append(contents, geminiContent{
			Role:  turn.Role,
			Parts: []geminiPart{{Text: turn.Text}},
		})
	}
	contents = append(contents, geminiContent{
		Role:  RoleUser,
		Parts: []geminiPart{{Text: message}},
	})

	req := generateRequest{
		Contents:         contents,
		GenerationConfig: &generationConfig{MaxOutputTokens: chatMaxOutputTokens},
	}
	return c.call(ctx, req)
}

// call 执行一次 generateContent 调用。
func (c *GeminiClient) call(ctx context.Context, payload generateRequest) (string, error) {
	// 限速等待使用调用方 context，不计入单次调用超时
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: rate limit wait: %v", ErrModelFailure, err)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%w: encode request: %v", ErrModelFailure, err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.cfg.BaseURL, c.cfg.Model)
	httpReq, err := http.NewRequestWithContext(callCtx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", ErrModelFailure, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.cfg.APIKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.log.Error("gemini request failed", zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrModelFailure, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", ErrModelFailure, err)
	}

	var decoded generateResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrModelFailure, err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := resp.Status
		if decoded.Error != nil && decoded.Error.Message != "" {
			msg = decoded.Error.Message
		}
		c.log.Error("gemini api error",
			zap.Int("status", resp.StatusCode),
			zap.String("message", msg),
		)
		return "", fmt.Errorf("%w: %s", ErrModelFailure, msg)
	}

	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: empty response", ErrModelFailure)
	}

	var text string
	for _, part := range decoded.Candidates[0].Content.Parts {
		text += part.Text
	}
	return text, nil
}
