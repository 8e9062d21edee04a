package configs

import (
	"mime"
	"strings"

	"github.com/spf13/viper"
)

// BlobBackend 上传文件的落盘位置.
type BlobBackend string

const (
	BlobBackendLocal BlobBackend = "local"
	BlobBackendS3    BlobBackend = "s3"

	DefaultUploadDir       = "uploads"         // 默认上传目录
	DefaultUploadBackend   = BlobBackendLocal  // 默认写入本地磁盘
	DefaultUploadMaxSizeMB = 10                // 单个文件最大尺寸（MB）
	DefaultUploadField     = "document"        // multipart 表单字段名
	DefaultFilenamePrefix  = "document"        // 生成文件名的前缀
	bytesPerMB             = 1024 * 1024       // MB 换算
	DefaultMetadataField   = "metadata"        // 元数据表单字段名
	defaultPDFType         = "application/pdf" // PDF
)

// DefaultAllowedTypes 默认接受的文档类型.
var DefaultAllowedTypes = []string{
	defaultPDFType,
	"text/plain",
	"text/markdown",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// UploadConfig 上传管道配置.
type UploadConfig struct {
	Dir            string      `mapstructure:"dir"             rule:"required"`
	Backend        BlobBackend `mapstructure:"backend"         rule:"oneof=local s3"`
	MaxSizeMB      int64       `mapstructure:"max_size_mb"     rule:"min=1"`
	AllowedTypes   []string    `mapstructure:"allowed_types"`
	FieldName      string      `mapstructure:"field_name"      rule:"required"`
	FilenamePrefix string      `mapstructure:"filename_prefix"`
}

// MaxBytes 返回允许的最大字节数.
func (c *UploadConfig) MaxBytes() int64 {
	return c.MaxSizeMB * bytesPerMB
}

// IsAllowedType 判断声明的内容类型是否被接受，忽略参数与大小写；列表为空时全部接受.
func (c *UploadConfig) IsAllowedType(contentType string) bool {
	if len(c.AllowedTypes) == 0 {
		return true
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	for _, t := range c.AllowedTypes {
		if strings.EqualFold(strings.TrimSpace(t), mediaType) {
			return true
		}
	}

	return false
}

// setDefaults 设置上传配置的默认值.
func (c *UploadConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("upload.dir", DefaultUploadDir)
	v.SetDefault("upload.backend", DefaultUploadBackend)
	v.SetDefault("upload.max_size_mb", DefaultUploadMaxSizeMB)
	v.SetDefault("upload.allowed_types", DefaultAllowedTypes)
	v.SetDefault("upload.field_name", DefaultUploadField)
	v.SetDefault("upload.filename_prefix", DefaultFilenamePrefix)
}
