package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/docchat/pkg/internal/service"
	"github.com/yeisme/docchat/pkg/internal/types"
)

// Ask 转发问题到问答服务，带 documentId 时同时记录查询.
//
//	@Summary		提问
//	@Tags			问答
//	@Accept			json
//	@Produce		json
//	@Param			question	body		types.AskRequest	true	"问题"
//	@Success		200			{object}	service.AskResult	"答案"
//	@Failure		400			{object}	types.ErrorResponse	"问题为空"
//	@Failure		502			{object}	types.ErrorResponse	"问答服务不可用"
//	@Failure		503			{object}	types.ErrorResponse	"问答服务熔断或未启用"
//	@Router			/ask [post]
func Ask(c *gin.Context) {
	var req types.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: msgInvalidBody})
		return
	}

	res, err := service.NewAskService(c.Request.Context()).Ask(c.Request.Context(), service.AskInput{
		Question:   req.Question,
		DocumentID: req.DocumentID,
	})
	if err != nil {
		writeError(c, err, msgQAUnavailable)
		return
	}

	c.JSON(http.StatusOK, res)
}
