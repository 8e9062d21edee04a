// Package middleware 提供 gin 中间件：请求 id、日志、指标、追踪、CORS、压缩、限流与依赖注入.
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HeaderRequestID 请求 id 头.
const HeaderRequestID = "X-Request-ID"

const requestIDKey = "request_id"

// RequestIDMiddleware 沿用客户端传入的 X-Request-ID，缺省时生成 UUID，并写回响应头.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}

		c.Set(requestIDKey, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// GetRequestID 返回当前请求 id.
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
