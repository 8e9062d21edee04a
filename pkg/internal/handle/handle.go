// Package handle 提供请求处理器的实现，用于处理 HTTP 请求.
package handle

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	ctxPkg "github.com/yeisme/docchat/pkg/context"
	"github.com/yeisme/docchat/pkg/internal/qa"
	"github.com/yeisme/docchat/pkg/internal/service"
	"github.com/yeisme/docchat/pkg/internal/types"
	"github.com/yeisme/docchat/pkg/log"
)

const (
	msgDocumentExists   = "Document already exists"
	msgDocumentNotFound = "Document not found"
	msgMissingFields    = "Missing required fields"
	msgInvalidBody      = "Invalid request body"
	msgInvalidID        = "Invalid document id"
	msgQADisabled       = "Question answering is disabled"
	msgQABusy           = "Question answering service is temporarily unavailable"
	msgQAUnavailable    = "Question answering service unavailable"
)

// writeError 将业务错误映射为 HTTP 响应，fallback 为 500 时返回给客户端的文案.
// 内部错误细节只写日志.
func writeError(c *gin.Context, err error, fallback string) {
	l := ctxPkg.WithTraceContext(c.Request.Context(), *log.Logger())

	var (
		verr     *service.ValidationError
		conflict *service.ConflictError
	)

	switch {
	case errors.As(err, &verr):
		l.Warn().Str("path", c.FullPath()).Msg(verr.Msg)
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: verr.Msg})
	case errors.As(err, &conflict):
		l.Info().Uint("document_id", conflict.DocumentID).Msg("duplicate document rejected")
		c.JSON(http.StatusConflict, types.ConflictResponse{Error: msgDocumentExists, DocumentID: conflict.DocumentID})
	case errors.Is(err, service.ErrDocumentNotFound):
		c.JSON(http.StatusNotFound, types.ErrorResponse{Error: msgDocumentNotFound})
	case errors.Is(err, qa.ErrDisabled):
		c.JSON(http.StatusServiceUnavailable, types.ErrorResponse{Error: msgQADisabled})
	case errors.Is(err, qa.ErrCircuitOpen):
		l.Warn().Err(err).Msg("qa circuit open")
		c.JSON(http.StatusServiceUnavailable, types.ErrorResponse{Error: msgQABusy})
	case errors.Is(err, qa.ErrUnavailable):
		l.Error().Err(err).Msg("qa request failed")
		c.JSON(http.StatusBadGateway, types.ErrorResponse{Error: msgQAUnavailable})
	default:
		l.Error().Err(err).Str("path", c.FullPath()).Msg(fallback)
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: fallback})
	}
}

// parseID 解析路径参数 :id，必须为正整数.
func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: msgInvalidID})
		return 0, false
	}

	return uint(id), true
}
