package handle

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/docchat/pkg/configs"
	"github.com/yeisme/docchat/pkg/internal/service"
	"github.com/yeisme/docchat/pkg/internal/types"
)

const (
	msgUploaded        = "Document uploaded successfully"
	msgUploadFailed    = "Failed to upload document"
	msgFetchDocsFailed = "Failed to fetch documents"
	msgDeleteFailed    = "Failed to delete document"
	msgEmbeddingFailed = "Failed to update embedding status"

	// multipartOverhead 表单边界与其他字段预留的字节数
	multipartOverhead = 1 << 20
)

// UploadDocument 上传文档.
//
//	@Summary		上传文档
//	@Description	保存文件并按内容指纹去重，内容已存在时返回 409 与已有文档 id
//	@Tags			文档
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			document	formData	file					true	"文档文件"
//	@Param			metadata	formData	string					false	"JSON 对象形式的元数据"
//	@Success		201			{object}	types.UploadResponse	"上传成功"
//	@Failure		400			{object}	types.ErrorResponse		"缺少文件或文件不合法"
//	@Failure		409			{object}	types.ConflictResponse	"文档已存在"
//	@Failure		500			{object}	types.ErrorResponse		"服务器内部错误"
//	@Router			/upload [post]
func UploadDocument(c *gin.Context) {
	cfg := configs.GetConfig().Upload

	if limit := cfg.MaxBytes(); limit > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+multipartOverhead)
	}

	in := service.UploadInput{Size: -1}

	fh, err := c.FormFile(cfg.FieldName)

	var tooLarge *http.MaxBytesError

	switch {
	case err == nil:
		f, oerr := fh.Open()
		if oerr != nil {
			writeError(c, &service.StorageError{Op: "open multipart file", Err: oerr}, msgUploadFailed)
			return
		}
		defer f.Close()

		in.Body = f
		in.Filename = fh.Filename
		in.ContentType = fh.Header.Get("Content-Type")
		in.Size = fh.Size
	case errors.As(err, &tooLarge):
		writeError(c, &service.ValidationError{Msg: "File exceeds the upload size limit"}, msgUploadFailed)
		return
	case !errors.Is(err, http.ErrMissingFile):
		writeError(c, &service.ValidationError{Msg: "No file uploaded"}, msgUploadFailed)
		return
	}

	in.Metadata = c.PostForm(configs.DefaultMetadataField)

	doc, err := service.NewDocumentService(c.Request.Context()).Upload(c.Request.Context(), in)
	if err != nil {
		writeError(c, err, msgUploadFailed)
		return
	}

	c.JSON(http.StatusCreated, types.UploadResponse{Message: msgUploaded, DocumentID: doc.ID})
}

// ListDocuments 列出全部文档.
//
//	@Summary		文档列表
//	@Description	按上传时间倒序返回全部文档
//	@Tags			文档
//	@Produce		json
//	@Success		200	{array}		model.Document		"文档列表"
//	@Failure		500	{object}	types.ErrorResponse	"服务器内部错误"
//	@Router			/documents [get]
func ListDocuments(c *gin.Context) {
	docs, err := service.NewDocumentService(c.Request.Context()).List(c.Request.Context())
	if err != nil {
		writeError(c, err, msgFetchDocsFailed)
		return
	}

	c.JSON(http.StatusOK, docs)
}

// DeleteDocument 删除文档及其查询记录.
//
//	@Summary		删除文档
//	@Tags			文档
//	@Produce		json
//	@Param			id	path		int						true	"文档 id"
//	@Success		200	{object}	types.MessageResponse	"已删除"
//	@Failure		400	{object}	types.ErrorResponse		"id 不合法"
//	@Failure		404	{object}	types.ErrorResponse		"文档不存在"
//	@Failure		500	{object}	types.ErrorResponse		"服务器内部错误"
//	@Router			/document/{id} [delete]
func DeleteDocument(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := service.NewDocumentService(c.Request.Context()).Delete(c.Request.Context(), id); err != nil {
		writeError(c, err, msgDeleteFailed)
		return
	}

	c.JSON(http.StatusOK, types.MessageResponse{Message: "Document deleted"})
}

// SetEmbedding 设置向量缓存标记，供外部索引服务调用.
//
//	@Summary		设置向量缓存标记
//	@Tags			文档
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int						true	"文档 id"
//	@Param			body	body		types.EmbeddingRequest	true	"缓存状态"
//	@Success		200		{object}	types.MessageResponse	"已更新"
//	@Failure		400		{object}	types.ErrorResponse		"请求不合法"
//	@Failure		404		{object}	types.ErrorResponse		"文档不存在"
//	@Failure		500		{object}	types.ErrorResponse		"服务器内部错误"
//	@Router			/document/{id}/embedding [patch]
func SetEmbedding(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req types.EmbeddingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: msgInvalidBody})
		return
	}

	if req.Cached == nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: msgMissingFields})
		return
	}

	if err := service.NewDocumentService(c.Request.Context()).SetEmbedding(c.Request.Context(), id, *req.Cached); err != nil {
		writeError(c, err, msgEmbeddingFailed)
		return
	}

	c.JSON(http.StatusOK, types.MessageResponse{Message: "Embedding status updated"})
}
