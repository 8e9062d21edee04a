package handle

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/docchat/pkg/configs"
	ctxPkg "github.com/yeisme/docchat/pkg/context"
	"github.com/yeisme/docchat/pkg/internal/types"
)

const timeout = 2 * time.Second

type healthCheck func(ctx context.Context) (backend string, err error)

func respondHealth(c *gin.Context, component string, check healthCheck) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
	defer cancel()

	backend, err := check(ctx)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, types.HealthResponse{
			Component: component, Status: "unhealthy", Backend: backend, Error: err.Error(),
		})

		return
	}

	c.JSON(http.StatusOK, types.HealthResponse{Component: component, Status: "ok", Backend: backend})
}

func errNotInitialized(component string) error {
	return fmt.Errorf("%s not initialized", component)
}

func checkStore(ctx context.Context) (string, error) {
	st := ctxPkg.GetStore(ctx)
	if st == nil {
		return "", errNotInitialized("store")
	}

	return st.Name(), st.Ping(ctx)
}

func checkBlob(ctx context.Context) (string, error) {
	b := ctxPkg.GetBlobStore(ctx)
	if b == nil {
		return "", errNotInitialized("blob store")
	}

	return b.Name(), b.HealthCheck(ctx)
}

func checkMQ(ctx context.Context) (string, error) {
	mqc := ctxPkg.GetMQClient(ctx)
	if mqc == nil {
		return "", errNotInitialized("mq client")
	}

	return string(mqc.Type()), mqc.HealthCheck(ctx)
}

// Health 汇总存储与文件存储的健康状态.
//
//	@Summary	健康检查
//	@Tags		健康检查
//	@Produce	json
//	@Success	200	{object}	map[string]any	"服务可用"
//	@Failure	503	{object}	map[string]any	"依赖不可用"
//	@Router		/health [get]
func Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
	defer cancel()

	status := http.StatusOK
	components := gin.H{}

	for name, check := range map[string]healthCheck{"store": checkStore, "blob": checkBlob} {
		if _, err := check(ctx); err != nil {
			status = http.StatusServiceUnavailable
			components[name] = err.Error()

			continue
		}

		components[name] = "ok"
	}

	state := "ok"
	if status != http.StatusOK {
		state = "unhealthy"
	}

	c.JSON(status, gin.H{"status": state, "version": configs.AppVersion, "components": components})
}

// HealthStore 文档存储健康检查.
func HealthStore(c *gin.Context) {
	respondHealth(c, "store", checkStore)
}

// HealthBlob 文件存储健康检查.
func HealthBlob(c *gin.Context) {
	respondHealth(c, "blob", checkBlob)
}

// HealthMQ 消息队列健康检查.
func HealthMQ(c *gin.Context) {
	respondHealth(c, "mq", checkMQ)
}
