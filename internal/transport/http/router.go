package httptransport

import (
	"net/http"
	"time"

	gincors "github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kpuday2004/Email-Productivity-Agent/internal/config"
	"github.com/kpuday2004/Email-Productivity-Agent/internal/middleware"
	"github.com/kpuday2004/Email-Productivity-Agent/internal/monitoring"
	"github.com/kpuday2004/Email-Productivity-Agent/internal/service"
)

// 请求体上限。接口只接收小体积 JSON，1MB 已远超正常请求。
const maxRequestBodyBytes = 1 << 20

// RouterDependencies 路由器依赖项
type RouterDependencies struct {
	Config            *config.Config
	AuthService       *service.AuthService
	EmailService      *service.EmailService
	EnrichmentService *service.EnrichmentService
	PromptService     *service.PromptService
	ChatService       *service.ChatService
	Metrics           *monitoring.Metrics
	Logger            *zap.Logger
}

// NewRouter 创建并返回 Gin 路由实例。
func NewRouter(deps RouterDependencies) *gin.Engine {
	router := gin.New()

	// 使用自定义中间件替代默认中间件
	router.Use(middleware.RecoveryHandler(deps.Logger))
	router.Use(middleware.RequestLogger(deps.Logger))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.BodySizeLimit(maxRequestBodyBytes))

	if deps.Metrics != nil {
		router.Use(middleware.HTTPMetrics(deps.Metrics))
	}

	// CORS 配置：会话依赖 Cookie，必须允许凭证
	corsConfig := gincors.Config{
		AllowOrigins:     deps.Config.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	// 如果允许所有来源，则需清空凭证支持。
	for _, origin := range corsConfig.AllowOrigins {
		if origin == "*" {
			corsConfig.AllowCredentials = false
			break
		}
	}
	router.Use(gincors.New(corsConfig))

	// 创建处理器
	authHandler := NewAuthHandler(deps.AuthService, deps.Logger)
	emailHandler := NewEmailHandler(deps.EmailService, deps.EnrichmentService, deps.Logger)
	promptHandler := NewPromptHandler(deps.PromptService, deps.Logger)
	chatHandler := NewChatHandler(deps.ChatService, deps.Logger)

	// 创建中间件
	sessionAuth := middleware.NewSessionAuth(deps.AuthService, deps.Logger)

	api := router.Group("/api")
	{
		api.GET("/", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "Email Productivity Agent API"})
		})

		// ========== Auth Routes ==========
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.GET("/me", sessionAuth.RequireAuth(), authHandler.Me)
			authRoutes.POST("/logout", authHandler.Logout)
		}

		// ========== Email Routes ==========
		emailRoutes := api.Group("/emails", sessionAuth.RequireAuth())
		{
			emailRoutes.GET("", emailHandler.List)
			emailRoutes.GET("/:id", emailHandler.Get)
			emailRoutes.PATCH("/:id/read", emailHandler.MarkRead)
			emailRoutes.POST("/:id/process", emailHandler.Process)
		}

		// ========== Prompt Routes ==========
		promptRoutes := api.Group("/prompts", sessionAuth.RequireAuth())
		{
			promptRoutes.GET("", promptHandler.List)
			promptRoutes.PUT("/:id", promptHandler.Update)
		}

		// ========== Chat Routes ==========
		chatRoutes := api.Group("/chat", sessionAuth.RequireAuth())
		{
			chatRoutes.POST("", chatHandler.Send)
			chatRoutes.GET("/history", chatHandler.History)
		}
	}

	return router
}
