// Package context 拓展上下文功能，将日志、服务等集成到上下文中，方便在应用程序各处传递和使用.
package context

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/yeisme/docchat/pkg/cache"
	"github.com/yeisme/docchat/pkg/internal/qa"
	"github.com/yeisme/docchat/pkg/internal/storage"
	"github.com/yeisme/docchat/pkg/internal/storage/blob"
	dbc "github.com/yeisme/docchat/pkg/internal/storage/db"
	kvc "github.com/yeisme/docchat/pkg/internal/storage/kv"
	mqc "github.com/yeisme/docchat/pkg/internal/storage/mq"
	"github.com/yeisme/docchat/pkg/internal/storage/store"
	"github.com/yeisme/docchat/pkg/scheduler"
)

type ContextKey string

const (
	StorageManagerKey ContextKey = "storageManager"
	QAClientKey       ContextKey = "qaClient"
	SchedulerKey      ContextKey = "scheduler"
)

// WithStorageManager 将 Manager 存储到 context 中.
func WithStorageManager(ctx context.Context, mgr *storage.Manager) context.Context {
	return context.WithValue(ctx, StorageManagerKey, mgr)
}

// GetManager 从 context 中获取 Manager.
func GetManager(ctx context.Context) *storage.Manager {
	if mgr, ok := ctx.Value(StorageManagerKey).(*storage.Manager); ok {
		return mgr
	}

	return nil
}

// WithQAClient 将问答客户端存储到 context 中.
func WithQAClient(ctx context.Context, c qa.Asker) context.Context {
	return context.WithValue(ctx, QAClientKey, c)
}

// GetQAClient 从 context 中获取问答客户端.
func GetQAClient(ctx context.Context) qa.Asker {
	if c, ok := ctx.Value(QAClientKey).(qa.Asker); ok {
		return c
	}

	return nil
}

// WithScheduler 将调度器存储到 context 中.
func WithScheduler(ctx context.Context, s *scheduler.Scheduler) context.Context {
	return context.WithValue(ctx, SchedulerKey, s)
}

// GetScheduler 从 context 中获取调度器，未启用定时任务时为 nil.
func GetScheduler(ctx context.Context) *scheduler.Scheduler {
	if s, ok := ctx.Value(SchedulerKey).(*scheduler.Scheduler); ok {
		return s
	}

	return nil
}

// GetStore 从 context 中获取文档与查询存储.
func GetStore(ctx context.Context) store.Backend {
	if mgr := GetManager(ctx); mgr != nil {
		return mgr.Store
	}

	return nil
}

// GetBlobStore 从 context 中获取文件存储.
func GetBlobStore(ctx context.Context) blob.Store {
	if mgr := GetManager(ctx); mgr != nil {
		return mgr.GetBlobStore()
	}

	return nil
}

// GetCache 从 context 中获取列表缓存，未启用时返回 nil.
func GetCache(ctx context.Context) *cache.Cache {
	if mgr := GetManager(ctx); mgr != nil {
		return mgr.GetCache()
	}

	return nil
}

// GetDBClient 从 context 中获取 DB 客户端.
func GetDBClient(ctx context.Context) *dbc.Client {
	if mgr := GetManager(ctx); mgr != nil {
		return mgr.GetDBClient()
	}

	return nil
}

// GetMQClient 从 context 中获取 MQ 客户端.
func GetMQClient(ctx context.Context) *mqc.Client {
	if mgr := GetManager(ctx); mgr != nil {
		return mgr.GetMQClient()
	}

	return nil
}

// GetKVClient 从 context 中获取 KV 客户端.
func GetKVClient(ctx context.Context) *kvc.Client {
	if mgr := GetManager(ctx); mgr != nil {
		return mgr.GetKVClient()
	}

	return nil
}

// WithTraceContext 创建带有追踪上下文的logger.
func WithTraceContext(ctx context.Context, logger zerolog.Logger) zerolog.Logger {
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		return logger.With().
			Str("trace_id", span.SpanContext().TraceID().String()).
			Str("span_id", span.SpanContext().SpanID().String()).
			Logger()
	}

	return logger
}
