// Package api 组装对外 HTTP 接口：业务路由同时挂载在根路径与 /api 下.
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/docchat/pkg/internal/router"
)

// APIPrefix 前端界面使用的路由前缀.
const APIPrefix = "/api"

// RegisterGroup 注册业务路由到传入的 gin 引擎.
func RegisterGroup(e *gin.Engine) *gin.Engine {
	router.Register(&e.RouterGroup)
	router.Register(e.Group(APIPrefix))

	return e
}
