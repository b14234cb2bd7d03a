package health

import (
	"net/http"

	"github.com/heptiolabs/healthcheck"
	"go.uber.org/zap"

	"github.com/kpuday2004/Email-Productivity-Agent/internal/storage"
)

// Checker 健康检查器
type Checker struct {
	handler healthcheck.Handler
	store   storage.Store
	log     *zap.Logger
}

// NewChecker 创建健康检查器
func NewChecker(store storage.Store, log *zap.Logger) *Checker {
	c := &Checker{
		handler: healthcheck.NewHandler(),
		store:   store,
		log:     log,
	}

	// 存储层检查
	c.handler.AddReadinessCheck("store", c.store.Health)

	// goroutine 泄漏检查
	c.handler.AddLivenessCheck("goroutine-threshold", healthcheck.GoroutineCountCheck(500))

	return c
}

// Handler 返回 /health/live 与 /health/ready 使用的处理器
func (c *Checker) Handler() http.Handler {
	return c.handler
}

// Status 执行一次健康检查并返回各组件状态
func (c *Checker) Status() map[string]string {
	results := map[string]string{"status": "ok"}

	if err := c.store.Health(); err != nil {
		c.log.Warn("store health check failed", zap.Error(err))
		results["status"] = "degraded"
		results["store"] = err.Error()
	} else {
		results["store"] = "ok"
	}

	return results
}
