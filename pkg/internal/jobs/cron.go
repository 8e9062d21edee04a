// Package jobs 负责注册与实现业务定时任务（基于 scheduler）.
package jobs

import (
	"context"
	"fmt"

	"github.com/yeisme/docchat/pkg/configs"
	ctxPkg "github.com/yeisme/docchat/pkg/context"
	"github.com/yeisme/docchat/pkg/internal/service"
	"github.com/yeisme/docchat/pkg/internal/storage"
	"github.com/yeisme/docchat/pkg/log"
	"github.com/yeisme/docchat/pkg/metrics"
	"github.com/yeisme/docchat/pkg/scheduler"
)

// RegisterCronJobs 配置业务定时任务：
//   - 按 jobs.library_stats_cron 刷新文档库统计指标
func RegisterCronJobs(sched *scheduler.Scheduler, mgr *storage.Manager, cfg configs.JobsConfig) error {
	if sched == nil {
		return fmt.Errorf("scheduler is nil")
	}

	if mgr == nil {
		return fmt.Errorf("storage manager is nil")
	}

	if !cfg.Enabled {
		return nil
	}

	baseCtx := ctxPkg.WithStorageManager(context.Background(), mgr)

	if err := sched.AddCron(JobLibraryStats, cfg.LibraryStatsCron, func(ctx context.Context) {
		RunLibraryStats(ctx, mgr)
	}, baseCtx); err != nil {
		return fmt.Errorf("register %s: %w", JobLibraryStats, err)
	}

	// 启动时先刷新一次，避免首个周期内指标为空
	RunLibraryStats(baseCtx, mgr)

	return nil
}

// RunLibraryStats 统计文档库并更新 gauge.
func RunLibraryStats(ctx context.Context, mgr *storage.Manager) {
	l := log.Logger().With().Str("job", JobLibraryStats).Logger()

	stats, err := service.CollectLibraryStats(ctx, mgr.Store)
	if err != nil {
		l.Error().Err(err).Msg("collect library stats failed")
		return
	}

	metrics.LibraryDocuments.Set(float64(stats.Documents))
	metrics.LibraryEmbedded.Set(float64(stats.Embedded))
	metrics.LibraryQueries.Set(float64(stats.Queries))
	metrics.LibraryBytes.Set(float64(stats.Bytes))

	l.Debug().
		Int64("documents", stats.Documents).
		Int64("embedded", stats.Embedded).
		Int64("queries", stats.Queries).
		Int64("bytes", stats.Bytes).
		Msg("library stats refreshed")
}
