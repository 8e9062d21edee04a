// Package model 定义持久化模型.
package model

import (
	"time"

	"gorm.io/datatypes"
)

// Document 已上传的文档记录.
//
// Hash 为文件内容的 SHA-256 十六进制摘要，全表唯一，是去重的依据.
type Document struct {
	ID uint `gorm:"primaryKey" json:"id"`
	// 系统生成的落盘文件名，与用户文件名无关
	Filename string `gorm:"size:255;not null" json:"filename"`
	// 用户上传时的原始文件名，仅作为元数据保存
	OriginalFilename string `gorm:"size:512;not null" json:"originalFilename"`
	// 本地路径或对象键
	FilePath string `gorm:"size:1024;not null" json:"filePath"`
	FileSize int64  `gorm:"not null"           json:"fileSize"`
	MimeType string `gorm:"size:255"           json:"mimeType"`
	// 上传时间，列表按其倒序
	UploadDate   time.Time  `gorm:"not null;index" json:"uploadDate"`
	LastAccessed *time.Time `json:"lastAccessed"`
	Hash         string     `gorm:"size:64;not null;uniqueIndex" json:"hash"`
	// 由外部索引服务维护
	EmbeddingCached bool           `gorm:"not null;default:false" json:"embeddingCached"`
	Metadata        datatypes.JSON `json:"metadata" swaggertype:"object"`
}

// TableName 固定表名.
func (Document) TableName() string {
	return "documents"
}
