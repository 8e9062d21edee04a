// Package store 定义文档与查询记录的持久化接口，并提供内存和数据库两种实现.
//
// 指纹唯一性由存储层保证：重复指纹的插入返回 ErrDuplicateFingerprint，
// 不会覆盖已有记录；查询记录引用不存在的文档时返回 ErrInvalidReference.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yeisme/docchat/pkg/configs"
	"github.com/yeisme/docchat/pkg/internal/model"
	"github.com/yeisme/docchat/pkg/internal/storage/db"
)

var (
	// ErrNotFound 记录不存在.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateFingerprint 已存在相同指纹的文档.
	ErrDuplicateFingerprint = errors.New("document fingerprint already exists")
	// ErrInvalidReference 查询记录引用了不存在的文档.
	ErrInvalidReference = errors.New("referenced document does not exist")
)

// DocumentStore 文档元数据存储.
type DocumentStore interface {
	// Create 插入新文档并返回生成的 id，同时回填 doc.ID.
	Create(ctx context.Context, doc *model.Document) (uint, error)
	// FindByFingerprint 按指纹查找，未命中返回 ErrNotFound.
	FindByFingerprint(ctx context.Context, hash string) (*model.Document, error)
	// ListAll 按上传时间倒序返回全部文档.
	ListAll(ctx context.Context) ([]model.Document, error)
	// UpdateEmbeddingStatus 设置向量缓存标记.
	UpdateEmbeddingStatus(ctx context.Context, id uint, cached bool) error
	Get(ctx context.Context, id uint) (*model.Document, error)
	// Delete 删除文档及其全部查询记录.
	Delete(ctx context.Context, id uint) error
	// Touch 更新最近访问时间.
	Touch(ctx context.Context, id uint, at time.Time) error
	Count(ctx context.Context) (int64, error)
}

// QueryLog 查询记录存储.
type QueryLog interface {
	// Create 插入查询记录并返回生成的 id，引用不存在的文档时返回 ErrInvalidReference.
	Create(ctx context.Context, q *model.Query) (uint, error)
	// ListForDocument 按查询时间倒序返回某文档的查询记录.
	ListForDocument(ctx context.Context, documentID uint) ([]model.Query, error)
	Count(ctx context.Context) (int64, error)
}

// Backend 聚合同一底层存储上的文档与查询存储.
type Backend interface {
	Documents() DocumentStore
	Queries() QueryLog
	// Name 返回实现名称，用于日志与 CLI 输出.
	Name() string
	Ping(ctx context.Context) error
}

// New 根据配置创建存储实现，db 类型需要传入已连接的数据库客户端.
func New(cfg *configs.StoreConfig, client *db.Client) (Backend, error) {
	switch cfg.Type {
	case configs.StoreTypeMemory:
		return NewMemory(), nil
	case configs.StoreTypeDB, "":
		if client == nil {
			return nil, errors.New("db store requires a database client")
		}

		return NewGorm(client.DB), nil
	default:
		return nil, fmt.Errorf("unsupported store type: %s", cfg.Type)
	}
}

// Types 返回支持的存储实现.
func Types() []configs.StoreType {
	return []configs.StoreType{configs.StoreTypeMemory, configs.StoreTypeDB}
}
