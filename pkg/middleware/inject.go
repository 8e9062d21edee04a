package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/docchat/pkg/context"
	"github.com/yeisme/docchat/pkg/internal/qa"
	"github.com/yeisme/docchat/pkg/internal/storage"
	"github.com/yeisme/docchat/pkg/scheduler"
)

// StorageMiddleware 把存储管理器注入请求 context.
func StorageMiddleware(manager *storage.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(context.WithStorageManager(c.Request.Context(), manager))
		c.Next()
	}
}

// QAMiddleware 把问答客户端注入请求 context，asker 为 nil 时不注入.
func QAMiddleware(asker qa.Asker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if asker != nil {
			c.Request = c.Request.WithContext(context.WithQAClient(c.Request.Context(), asker))
		}

		c.Next()
	}
}

// SchedulerMiddleware 把调度器注入请求 context.
func SchedulerMiddleware(sched *scheduler.Scheduler) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(context.WithScheduler(c.Request.Context(), sched))
		c.Next()
	}
}
