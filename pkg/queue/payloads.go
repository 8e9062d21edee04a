package queue

import "time"

// EventHeader 定义所有事件的通用头部元数据.
type EventHeader struct {
	// Topic 冗余记录消息主题，便于离线处理或转储后定位来源主题.
	Topic string `json:"topic"`
	// TraceID 分布式追踪/关联 ID，可来自中间件或业务生成.
	TraceID string `json:"trace_id,omitempty"`
	// Producer 生产者服务名或节点标识.
	Producer string `json:"producer,omitempty"`
	// OccurredAt 事件发生时间（UTC，RFC3339）.
	OccurredAt time.Time `json:"occurred_at"`
	// Version 事件负载版本，便于向后兼容演进.
	Version string `json:"version,omitempty"`
}

// Message 是统一的消息封装，Header + Payload.
// T 即不同主题对应的负载结构体.
type Message[T any] struct {
	Header  EventHeader `json:"header"`
	Payload T           `json:"payload"`
}

// DocumentRef 标识一份已入库的文档.
type DocumentRef struct {
	ID               uint   `json:"id"`
	Hash             string `json:"hash"`
	Filename         string `json:"filename,omitempty"`
	OriginalFilename string `json:"original_filename,omitempty"`
	FilePath         string `json:"file_path,omitempty"`
	FileSize         int64  `json:"file_size,omitempty"`
	MimeType         string `json:"mime_type,omitempty"`
	Backend          string `json:"backend,omitempty"` // local / s3
}

// DocumentStoredPayload 文档上传成功.
type DocumentStoredPayload struct {
	Document   DocumentRef `json:"document"`
	UploadedAt time.Time   `json:"uploaded_at"`
}

// DocumentDeletedPayload 文档被删除.
type DocumentDeletedPayload struct {
	Document       DocumentRef `json:"document"`
	BlobRemoved    bool        `json:"blob_removed"`
	DeletedQueries int         `json:"deleted_queries,omitempty"`
}

// DocumentIndexedPayload 外部索引服务回报的向量缓存状态.
// Cached 为 false 表示向量已失效，需要重新索引.
type DocumentIndexedPayload struct {
	DocumentID uint   `json:"documentId"`
	Cached     bool   `json:"cached"`
	Error      string `json:"error,omitempty"`
}
