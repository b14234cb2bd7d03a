package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kpuday2004/Email-Productivity-Agent/internal/config"
	"github.com/kpuday2004/Email-Productivity-Agent/internal/dataset"
	"github.com/kpuday2004/Email-Productivity-Agent/internal/health"
	"github.com/kpuday2004/Email-Productivity-Agent/internal/llm"
	"github.com/kpuday2004/Email-Productivity-Agent/internal/logger"
	"github.com/kpuday2004/Email-Productivity-Agent/internal/monitoring"
	"github.com/kpuday2004/Email-Productivity-Agent/internal/service"
	"github.com/kpuday2004/Email-Productivity-Agent/internal/storage/memory"
	httptransport "github.com/kpuday2004/Email-Productivity-Agent/internal/transport/http"
)

// main 启动邮件生产力后端的 HTTP 服务。
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	// 设置 Gin 模式（基于开发环境标志）
	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// 初始化日志系统
	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
		LogFile:     cfg.Log.File,
		MaxSize:     100,
		MaxBackups:  3,
		MaxAge:      28,
	})
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting email agent server",
		zap.String("log_level", cfg.Log.Level),
		zap.Bool("development", cfg.Log.Development),
	)

	// 加载不可变数据集
	data, err := dataset.Load(cfg.Dataset.Path)
	if err != nil {
		log.Fatal("failed to load dataset", zap.Error(err))
	}
	log.Info("dataset loaded",
		zap.String("path", cfg.Dataset.Path),
		zap.Int("users", len(data.Users)),
		zap.Int("emails", len(data.Emails)),
		zap.Int("prompts", len(data.Prompts)),
	)

	// 初始化存储层（进程生命周期内的内存存储）
	store := memory.NewStore(data)

	// 初始化监控与健康检查
	metrics := monitoring.NewMetrics()
	checker := health.NewChecker(store, log)

	// 初始化模型客户端
	if cfg.Gemini.APIKey == "" {
		log.Warn("gemini api key is empty, model calls will fail")
	}
	generator := llm.NewGeminiClient(cfg.Gemini, log)

	// 初始化服务层
	authService := service.NewAuthService(store, store, log)
	emailService := service.NewEmailService(store)
	promptService := service.NewPromptService(store)
	enrichmentService := service.NewEnrichmentService(store, generator, metrics, log)
	chatService := service.NewChatService(store, emailService, generator, metrics, log)

	// 创建 HTTP 路由
	router := httptransport.NewRouter(httptransport.RouterDependencies{
		Config:            cfg,
		AuthService:       authService,
		EmailService:      emailService,
		EnrichmentService: enrichmentService,
		PromptService:     promptService,
		ChatService:       chatService,
		Metrics:           metrics,
		Logger:            log,
	})

	// 健康检查与指标端点
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, checker.Status())
	})
	router.GET("/health/live", gin.WrapH(checker.Handler()))
	router.GET("/health/ready", gin.WrapH(checker.Handler()))
	router.GET("/metrics", gin.WrapH(metrics.HTTPHandler()))

	httpAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:              httpAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		// 标注流水线串行调用三次模型，写超时要容纳整个流水线
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	// 信号处理
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.Info("starting HTTP server", zap.String("address", httpAddr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", zap.Error(err))
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		log.Info("shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP server shutdown error", zap.Error(err))
			return err
		}
		return nil
	})

	if err := group.Wait(); err != nil {
		log.Error("server exited with error", zap.Error(err))
	}

	if err := store.Close(); err != nil {
		log.Error("store close error", zap.Error(err))
	}

	log.Info("server stopped")
}
