// Package storage 聚合文档存储、文件存储、缓存与消息队列，按配置初始化并统一关闭.
//
// Example:
//
//	mgr, err := storage.New(ctx, configs.GetConfig())
//	if err != nil {
//		return err
//	}
//	defer mgr.Close()
//
//	docs := mgr.Documents()
//	blobs := mgr.GetBlobStore()
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/yeisme/docchat/pkg/cache"
	"github.com/yeisme/docchat/pkg/configs"
	"github.com/yeisme/docchat/pkg/internal/storage/blob"
	dbc "github.com/yeisme/docchat/pkg/internal/storage/db"
	kvc "github.com/yeisme/docchat/pkg/internal/storage/kv"
	mqc "github.com/yeisme/docchat/pkg/internal/storage/mq"
	"github.com/yeisme/docchat/pkg/internal/storage/store"
	nlog "github.com/yeisme/docchat/pkg/log"
)

// Manager 聚合所有存储资源.
type Manager struct {
	Store store.Backend
	// DB 仅在 store.type=db 时非空.
	DB    *dbc.Client
	Blobs blob.Store
	KV    *kvc.Client
	// Cache 为空表示不缓存列表.
	Cache    *cache.Cache
	CacheTTL configs.CacheConfig
	// MQ 为空表示不发布事件.
	MQ *mqc.Client
}

// New 按配置初始化全部存储资源，任一步失败时关闭已打开的资源.
func New(ctx context.Context, cfg *configs.AppConfig) (mgr *Manager, err error) {
	m := &Manager{CacheTTL: cfg.Cache}

	defer func() {
		if err != nil {
			_ = m.Close()
		}
	}()

	if cfg.Store.Type == configs.StoreTypeDB || cfg.Store.Type == "" {
		if m.DB, err = dbc.New(ctx, &cfg.DB); err != nil {
			return nil, err
		}

		if cfg.DB.AutoMigrate {
			if err = m.DB.Migrate(ctx); err != nil {
				return nil, err
			}
		}

		if cfg.Metrics.Enabled {
			if err = m.DB.RegisterGORMMetrics(cfg.DB.Database); err != nil {
				return nil, err
			}
		}
	}

	if m.Store, err = store.New(&cfg.Store, m.DB); err != nil {
		return nil, err
	}

	if m.Blobs, err = blob.New(ctx, &cfg.Upload, &cfg.S3); err != nil {
		return nil, fmt.Errorf("init blob store: %w", err)
	}

	if m.KV, err = kvc.NewKVClient(ctx, &cfg.KV); err != nil {
		return nil, fmt.Errorf("init kv: %w", err)
	}

	if cfg.Cache.Enabled {
		m.Cache = cache.NewCache(m.KV, cfg.Cache.Prefix)
	}

	if cfg.MQ.Enabled {
		if m.MQ, err = mqc.New(ctx, &cfg.MQ); err != nil {
			return nil, err
		}
	}

	nlog.Logger().Info().
		Str("store", m.Store.Name()).
		Str("blob", m.Blobs.Name()).
		Str("kv", string(m.KV.Type())).
		Bool("cache", m.Cache != nil).
		Bool("mq", m.MQ != nil).
		Msg("storage manager initialized")

	return m, nil
}

// Documents 返回文档存储.
func (m *Manager) Documents() store.DocumentStore {
	return m.Store.Documents()
}

// Queries 返回查询记录存储.
func (m *Manager) Queries() store.QueryLog {
	return m.Store.Queries()
}

// GetBlobStore 获取文件存储.
func (m *Manager) GetBlobStore() blob.Store {
	return m.Blobs
}

// GetDBClient 获取 DB 客户端.
func (m *Manager) GetDBClient() *dbc.Client {
	return m.DB
}

// GetKVClient 获取 KV 客户端.
func (m *Manager) GetKVClient() *kvc.Client {
	return m.KV
}

// GetMQClient 获取 MQ 客户端.
func (m *Manager) GetMQClient() *mqc.Client {
	return m.MQ
}

// GetCache 获取列表缓存.
func (m *Manager) GetCache() *cache.Cache {
	return m.Cache
}

// Close 关闭全部资源.
func (m *Manager) Close() error {
	var errs []error

	if m.MQ != nil {
		errs = append(errs, m.MQ.Close())
	}

	if m.KV != nil {
		errs = append(errs, m.KV.Close())
	}

	if m.DB != nil {
		errs = append(errs, m.DB.Close())
	}

	return errors.Join(errs...)
}
