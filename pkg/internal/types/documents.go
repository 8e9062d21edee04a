// Package types 定义 HTTP 请求与响应结构.
package types

// ErrorResponse 错误响应.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse 通用成功响应.
type MessageResponse struct {
	Message string `json:"message"`
}

// UploadResponse 上传成功.
type UploadResponse struct {
	Message    string `json:"message"`
	DocumentID uint   `json:"documentId"`
}

// ConflictResponse 内容重复，DocumentID 为已有文档.
type ConflictResponse struct {
	Error      string `json:"error"`
	DocumentID uint   `json:"documentId"`
}

// LogQueryRequest 记录查询请求.
type LogQueryRequest struct {
	DocumentID     uint     `json:"documentId"`
	QueryText      string   `json:"queryText"`
	RelevanceScore *float64 `json:"relevanceScore"`
}

// LogQueryResponse 记录查询结果.
type LogQueryResponse struct {
	QueryID uint `json:"queryId"`
}

// EmbeddingRequest 设置向量缓存标记.
type EmbeddingRequest struct {
	Cached *bool `json:"cached"`
}

// AskRequest 提问请求，DocumentID 可选.
type AskRequest struct {
	Question   string `json:"question"`
	DocumentID uint   `json:"documentId,omitempty"`
}

// HealthResponse 健康检查结果.
type HealthResponse struct {
	Component string `json:"component"`
	Status    string `json:"status"`
	Backend   string `json:"backend,omitempty"`
	Error     string `json:"error,omitempty"`
}
