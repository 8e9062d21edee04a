// Package blob 保存上传文件的原始字节，支持本地目录与 S3 兼容对象存储.
package blob

import (
	"context"
	"fmt"
	"io"

	"github.com/yeisme/docchat/pkg/configs"
)

// Store 文件内容存储.
//
// Save 返回的 path 是之后 Open 与 Remove 使用的定位符，会原样写入 Document.FilePath.
type Store interface {
	Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) (path string, written int64, err error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	// Remove 删除文件，文件不存在时视为成功.
	Remove(ctx context.Context, path string) error
	HealthCheck(ctx context.Context) error
	Name() string
}

// New 根据上传配置创建存储后端.
func New(ctx context.Context, upload *configs.UploadConfig, s3cfg *configs.S3Config) (Store, error) {
	switch upload.Backend {
	case configs.BlobBackendLocal, "":
		return NewLocal(upload.Dir)
	case configs.BlobBackendS3:
		return NewS3(ctx, s3cfg)
	default:
		return nil, fmt.Errorf("unsupported upload backend: %s", upload.Backend)
	}
}
