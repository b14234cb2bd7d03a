package httptransport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kpuday2004/Email-Productivity-Agent/internal/config"
	"github.com/kpuday2004/Email-Productivity-Agent/internal/dataset"
	"github.com/kpuday2004/Email-Productivity-Agent/internal/domain"
	"github.com/kpuday2004/Email-Productivity-Agent/internal/llm"
	"github.com/kpuday2004/Email-Productivity-Agent/internal/middleware"
	"github.com/kpuday2004/Email-Productivity-Agent/internal/service"
	"github.com/kpuday2004/Email-Productivity-Agent/internal/storage/memory"
)

// stubGenerator 按调用顺序返回预置文本，Converse 固定返回 reply。
type stubGenerator struct {
	responses []string
	calls     int
	err       error
	reply     string
}

func (s *stubGenerator) Generate(_ context.Context, _ string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if s.calls >= len(s.responses) {
		return "", fmt.Errorf("%w: unexpected call %d", llm.ErrModelFailure, s.calls)
	}
	response := s.responses[s.calls]
	s.calls++
	return response, nil
}

func (s *stubGenerator) Converse(_ context.Context, _ []llm.Turn, _ string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func newTestRouter(t *testing.T, gen llm.Generator) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore(&dataset.Data{
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
		},
	})

	log := zap.NewNop()
	authService := service.NewAuthService(store, store, log)
	emailService := service.NewEmailService(store)
	promptService := service.NewPromptService(store)
	enrichmentService := service.NewEnrichmentService(store, gen, nil, log)
	chatService := service.NewChatService(store, emailService, gen, nil, log)

	return NewRouter(RouterDependencies{
		Config: &config.Config{
			CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		},
		AuthService:       authService,
		EmailService:      emailService,
		EnrichmentService: enrichmentService,
		PromptService:     promptService,
		ChatService:       chatService,
		Logger:            log,
	})
}

func doJSON(router *gin.Engine, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// login 执行登录并返回会话 Cookie
func login(t *testing.T, router *gin.Engine, email, password string) *http.Cookie {
	t.Helper()
	w := doJSON(router, http.MethodPost, "/api/auth/login",
		fmt.Sprintf(`{"email":%q,"password":%q}`, email, password))
	require.Equal(t, http.StatusOK, w.Code)

	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == middleware.SessionCookieName {
			return cookie
		}
	}
	t.Fatal("login response did not set a session cookie")
	return nil
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestAuthRoutes(t *testing.T) {
	t.Run("登录签发httpOnly会话Cookie", func(t *testing.T) {
		router := newTestRouter(t, &stubGenerator{})
		w := doJSON(router, http.MethodPost, "/api/auth/login",
			`{"email":"alice@example.com","password":"secret"}`)

		require.Equal(t, http.StatusOK, w.Code)

		body := decodeBody(t, w)
		user := body["user"].(map[string]any)
		assert.Equal(t, "user-1", user["id"])
		assert.Equal(t, "alice@example.com", user["email"])
		assert.Equal(t, "Alice", user["name"])
		assert.NotEmpty(t, body["session_token"])

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		cookie := cookies[0]
		assert.Equal(t, middleware.SessionCookieName, cookie.Name)
		assert.Equal(t, body["session_token"], cookie.Value)
		assert.True(t, cookie.HttpOnly)
		assert.Equal(t, "/", cookie.Path)
		assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
		assert.Equal(t, sessionCookieMaxAge, cookie.MaxAge)
	})

	t.Run("凭证错误返回401", func(t *testing.T) {
		router := newTestRouter(t, &stubGenerator{})
		w := doJSON(router, http.MethodPost, "/api/auth/login",
			`{"email":"alice@example.com","password":"wrong"}`)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"detail":"Invalid credentials"}`, w.Body.String())
	})

	t.Run("Cookie与Bearer头均可认证", func(t *testing.T) {
		router := newTestRouter(t, &stubGenerator{})
		cookie := login(t, router, "alice@example.com", "secret")

		w := doJSON(router, http.MethodGet, "/api/auth/me", "", cookie)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"id":"user-1","email":"alice@example.com","name":"Alice"}`, w.Body.String())

		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		req.Header.Set("Authorization", "Bearer "+cookie.Value)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)
		assert.Equal(t, http.StatusOK, recorder.Code)
	})

	t.Run("无令牌访问受保护路由返回401", func(t *testing.T) {
		router := newTestRouter(t, &stubGenerator{})
		w := doJSON(router, http.MethodGet, "/api/emails", "")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"detail":"Not authenticated"}`, w.Body.String())
	})

	t.Run("注销后令牌失效且Cookie被清除", func(t *testing.T) {
		router := newTestRouter(t, &stubGenerator{})
		cookie := login(t, router, "alice@example.com", "secret")

		w := doJSON(router, http.MethodPost, "/api/auth/logout", "", cookie)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"message":"Logged out"}`, w.Body.String())

		cleared := w.Result().Cookies()
		require.Len(t, cleared, 1)
		assert.Less(t, cleared[0].MaxAge, 0)

		w = doJSON(router, http.MethodGet, "/api/auth/me", "", cookie)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestEmailRoutes(t *testing.T) {
	t.Run("列表按接收时间倒序且仅含本人邮件", func(t *testing.T) {
		router := newTestRouter(t, &stubGenerator{})
		cookie := login(t, router, "alice@example.com", "secret")

		w := doJSON(router, http.MethodGet, "/api/emails", "", cookie)
		require.Equal(t, http.StatusOK, w.Code)

		var emails []map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &emails))
		require.Len(t, emails, 2)
		assert.Equal(t, "email-2", emails[0]["id"])
		assert.Equal(t, "email-1", emails[1]["id"])
	})

	t.Run("标记已读返回确认消息", func(t *testing.T) {
		router := newTestRouter(t, &stubGenerator{})
		cookie := login(t, router, "alice@example.com", "secret")

		w := doJSON(router, http.MethodPatch, "/api/emails/email-1/read", "", cookie)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"message":"Email marked as read"}`, w.Body.String())

		w = doJSON(router, http.MethodGet, "/api/emails/email-1", "", cookie)
		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, decodeBody(t, w)["is_read"].(bool))
	})

	t.Run("他人邮件返回404", func(t *testing.T) {
		router := newTestRouter(t, &stubGenerator{})
		cookie := login(t, router, "bob@example.com", "hunter2")

		w := doJSON(router, http.MethodGet, "/api/emails/email-1", "", cookie)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"detail":"Email not found"}`, w.Body.String())
	})

	t.Run("处理成功返回完整标注并写入合并视图", func(t *testing.T) {
		gen := &stubGenerator{responses: []string{
			"Important",
			`{"tasks":[{"task":"review security settings"}]}`,
			"Thanks, I will take a look.",
		}}
		router := newTestRouter(t, gen)
		cookie := login(t, router, "alice@example.com", "secret")

		w := doJSON(router, http.MethodPost, "/api/emails/email-1/process", "", cookie)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{
			"category": "Important",
			"action_items": [{"task": "review security settings"}],
			"draft_reply": "Thanks, I will take a look."
		}`, w.Body.String())

		w = doJSON(router, http.MethodGet, "/api/emails/email-1", "", cookie)
		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "Important", body["category"])
		assert.Equal(t, "Thanks, I will take a look.", body["draft_reply"])

		// 分类过滤走合并后的视图
		w = doJSON(router, http.MethodGet, "/api/emails?category=Important", "", cookie)
		var filtered []map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &filtered))
		require.Len(t, filtered, 1)
		assert.Equal(t, "email-1", filtered[0]["id"])
	})

	t.Run("模型失败返回500且不写入标注", func(t *testing.T) {
		gen := &stubGenerator{err: fmt.Errorf("%w: quota exceeded", llm.ErrModelFailure)}
		router := newTestRouter(t, gen)
		cookie := login(t, router, "alice@example.com", "secret")

		w := doJSON(router, http.MethodPost, "/api/emails/email-1/process", "", cookie)
		require.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, decodeBody(t, w)["detail"], "Processing failed:")

		w = doJSON(router, http.MethodGet, "/api/emails/email-1", "", cookie)
		assert.Nil(t, decodeBody(t, w)["category"])
	})
}

func TestPromptRoutes(t *testing.T) {
	router := newTestRouter(t, &stubGenerator{})
	cookie := login(t, router, "alice@example.com", "secret")

	t.Run("列出本人模板", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, "/api/prompts", "", cookie)
		require.Equal(t, http.StatusOK, w.Code)

		var prompts []map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &prompts))
		require.Len(t, prompts, 1)
		assert.Equal(t, "prompt-1", prompts[0]["id"])
		assert.Equal(t, "categorization", prompts[0]["prompt_type"])
	})

	t.Run("部分更新后列表可见新内容", func(t *testing.T) {
		w := doJSON(router, http.MethodPut, "/api/prompts/prompt-1",
			`{"content":"Use only: Urgent, Normal."}`, cookie)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"message":"Prompt updated"}`, w.Body.String())

		w = doJSON(router, http.MethodGet, "/api/prompts", "", cookie)
		var prompts []map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &prompts))
		assert.Equal(t, "Use only: Urgent, Normal.", prompts[0]["content"])
		assert.Equal(t, "Cat", prompts[0]["name"], "未提供的字段保持不变")
	})

	t.Run("未知模板返回404", func(t *testing.T) {
		w := doJSON(router, http.MethodPut, "/api/prompts/ghost", `{"name":"x"}`, cookie)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"detail":"Prompt not found"}`, w.Body.String())
	})
}

func TestChatRoutes(t *testing.T) {
	t.Run("成功回合返回回复并写入历史", func(t *testing.T) {
		gen := &stubGenerator{reply: "You have one unread email."}
		router := newTestRouter(t, gen)
		cookie := login(t, router, "alice@example.com", "secret")

		w := doJSON(router, http.MethodPost, "/api/chat",
			`{"message":"How many unread?"}`, cookie)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"response":"You have one unread email."}`, w.Body.String())

		w = doJSON(router, http.MethodGet, "/api/chat/history", "", cookie)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[
			{"role":"user","content":"How many unread?"},
			{"role":"assistant","content":"You have one unread email."}
		]`, w.Body.String())
	})

	t.Run("模型失败返回500且历史为空", func(t *testing.T) {
		gen := &stubGenerator{err: fmt.Errorf("%w: timeout", llm.ErrModelFailure)}
		router := newTestRouter(t, gen)
		cookie := login(t, router, "alice@example.com", "secret")

		w := doJSON(router, http.MethodPost, "/api/chat", `{"message":"hi"}`, cookie)
		require.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, decodeBody(t, w)["detail"], "Chat failed:")

		w = doJSON(router, http.MethodGet, "/api/chat/history", "", cookie)
		assert.JSONEq(t, `[]`, w.Body.String())
	})

	t.Run("缺少message字段返回400", func(t *testing.T) {
		router := newTestRouter(t, &stubGenerator{})
		cookie := login(t, router, "alice@example.com", "secret")

		w := doJSON(router, http.MethodPost, "/api/chat", `{}`, cookie)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestBannerRoute(t *testing.T) {
	router := newTestRouter(t, &stubGenerator{})
	w := doJSON(router, http.MethodGet, "/api/", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Email Productivity Agent API"}`, w.Body.String())
}
