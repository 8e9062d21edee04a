package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/docchat/pkg/internal/service"
	"github.com/yeisme/docchat/pkg/internal/types"
)

const (
	msgLogQueryFailed     = "Failed to log query"
	msgFetchQueriesFailed = "Failed to fetch queries"
)

// LogQuery 记录一次针对文档的提问.
//
//	@Summary		记录查询
//	@Tags			查询
//	@Accept			json
//	@Produce		json
//	@Param			query	body		types.LogQueryRequest	true	"查询记录"
//	@Success		201		{object}	types.LogQueryResponse	"已记录"
//	@Failure		400		{object}	types.ErrorResponse		"缺少字段或文档不存在"
//	@Failure		500		{object}	types.ErrorResponse		"服务器内部错误"
//	@Router			/query/log [post]
func LogQuery(c *gin.Context) {
	var req types.LogQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: msgMissingFields})
		return
	}

	q, err := service.NewQueryService(c.Request.Context()).Log(c.Request.Context(), service.LogQueryInput{
		DocumentID:     req.DocumentID,
		QueryText:      req.QueryText,
		RelevanceScore: req.RelevanceScore,
	})
	if err != nil {
		writeError(c, err, msgLogQueryFailed)
		return
	}

	c.JSON(http.StatusCreated, types.LogQueryResponse{QueryID: q.ID})
}

// ListQueries 列出文档的查询记录.
//
//	@Summary		文档查询记录
//	@Description	按查询时间倒序返回，文档不存在时返回空数组
//	@Tags			查询
//	@Produce		json
//	@Param			id	path		int					true	"文档 id"
//	@Success		200	{array}		model.Query			"查询记录"
//	@Failure		400	{object}	types.ErrorResponse	"id 不合法"
//	@Failure		500	{object}	types.ErrorResponse	"服务器内部错误"
//	@Router			/document/{id}/queries [get]
func ListQueries(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	queries, err := service.NewQueryService(c.Request.Context()).List(c.Request.Context(), id)
	if err != nil {
		writeError(c, err, msgFetchQueriesFailed)
		return
	}

	c.JSON(http.StatusOK, queries)
}
