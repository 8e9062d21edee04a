// Package app 负责组装并运行 HTTP 服务：配置、日志、监控、存储、问答客户端、事件消费与定时任务.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yeisme/docchat/pkg/api"
	"github.com/yeisme/docchat/pkg/configs"
	"github.com/yeisme/docchat/pkg/internal/events"
	"github.com/yeisme/docchat/pkg/internal/jobs"
	"github.com/yeisme/docchat/pkg/internal/qa"
	"github.com/yeisme/docchat/pkg/internal/router"
	"github.com/yeisme/docchat/pkg/internal/storage"
	"github.com/yeisme/docchat/pkg/log"
	"github.com/yeisme/docchat/pkg/metrics"
	"github.com/yeisme/docchat/pkg/middleware"
	"github.com/yeisme/docchat/pkg/scheduler"
	"github.com/yeisme/docchat/pkg/tracing"
)

// shutdownTimeout 优雅退出的最长等待时间.
const shutdownTimeout = 15 * time.Second

// App 持有运行期依赖.
type App struct {
	Engine    *gin.Engine
	Storage   *storage.Manager
	QA        *qa.Client
	Scheduler *scheduler.Scheduler
	Consumer  *events.Consumer

	config *configs.AppConfig
	log    zerolog.Logger
}

// NewApp 使用已加载的全局配置初始化日志、追踪与监控，然后创建 App.
func NewApp(ctx context.Context) (*App, error) {
	cfg := configs.GetConfig()

	log.Init()

	if err := tracing.InitTracer(cfg.Tracing); err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	if err := metrics.InitMetrics(cfg.Metrics); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	return New(ctx, cfg)
}

// New 按 cfg 创建依赖并装配路由，不修改全局配置.
func New(ctx context.Context, cfg *configs.AppConfig) (*App, error) {
	logger := log.Component("app")

	mgr, err := storage.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	a := &App{
		Storage: mgr,
		config:  cfg,
		log:     logger,
	}

	if cfg.QA.Enabled {
		a.QA = qa.New(&cfg.QA, &cfg.CircuitBreaker)
	}

	if cfg.MQ.Enabled && cfg.Events.Enabled && cfg.Events.Document.Indexed {
		a.Consumer, err = events.NewConsumer(mgr, cfg)
		if err != nil {
			_ = mgr.Close()
			return nil, fmt.Errorf("init events consumer: %w", err)
		}
	}

	if cfg.Jobs.Enabled {
		a.Scheduler, err = scheduler.NewScheduler()
		if err != nil {
			_ = mgr.Close()
			return nil, fmt.Errorf("init scheduler: %w", err)
		}

		if err := jobs.RegisterCronJobs(a.Scheduler, mgr, cfg.Jobs); err != nil {
			_ = a.Scheduler.Stop()
			_ = mgr.Close()

			return nil, err
		}
	}

	a.Engine = a.newEngine()

	return a, nil
}

func (a *App) newEngine() *gin.Engine {
	cfg := a.config

	l := log.Logger()
	gin.DefaultWriter = log.NewGinWriter(l, zerolog.InfoLevel)
	gin.DefaultErrorWriter = log.NewGinWriter(l, zerolog.ErrorLevel)

	engine := gin.New()

	engine.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware(),
		middleware.CORSMiddleware(cfg.Server),
		middleware.TracingMiddleware(),
		middleware.GinLoggerMiddleware(),
		middleware.RateLimitMiddleware(cfg.RateLimit),
	)

	if cfg.Metrics.Enabled {
		engine.Use(middleware.PrometheusMiddleware())
		_ = metrics.StartMetricsServer(cfg.Metrics, engine)
	}

	if cfg.Server.Gzip {
		engine.Use(middleware.GzipMiddleware())
	}

	engine.Use(middleware.StorageMiddleware(a.Storage))

	// 不能把 nil *qa.Client 放进 qa.Asker
	if a.QA != nil {
		engine.Use(middleware.QAMiddleware(a.QA))
	}

	if a.Scheduler != nil {
		engine.Use(middleware.SchedulerMiddleware(a.Scheduler))
	}

	router.RegisterSwaggerRoute(engine, cfg.Server)
	api.RegisterGroup(engine)

	return engine
}

// Run 启动后台组件与 HTTP 服务，ctx 取消后优雅退出.
func (a *App) Run(ctx context.Context) error {
	if a.Scheduler != nil {
		a.Scheduler.Start()
	}

	consumerErr := make(chan error, 1)

	if a.Consumer != nil {
		go func() {
			consumerErr <- a.Consumer.Run(ctx)
		}()
	}

	addr := fmt.Sprintf("%s:%d", a.config.Server.Host, a.config.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           a.Engine,
		ReadHeaderTimeout: a.config.Server.GetTimeoutDuration(),
	}

	serveErr := make(chan error, 1)

	go func() {
		a.log.Info().Str("addr", addr).Str("version", configs.AppVersion).Msg("HTTP server listening")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}

		close(serveErr)
	}()

	var runErr error

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		runErr = err
	case err := <-consumerErr:
		if err != nil {
			runErr = fmt.Errorf("events consumer: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	a.log.Info().Msg("shutting down")

	if err := srv.Shutdown(shutdownCtx); err != nil {
		runErr = errors.Join(runErr, fmt.Errorf("http shutdown: %w", err))
	}

	return errors.Join(runErr, a.Close(shutdownCtx))
}

// Close 释放后台组件与存储连接.
func (a *App) Close(ctx context.Context) error {
	var errs []error

	if a.Consumer != nil {
		if err := a.Consumer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("events consumer: %w", err))
		}
	}

	if a.Scheduler != nil {
		if err := a.Scheduler.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("scheduler: %w", err))
		}
	}

	if err := a.Storage.Close(); err != nil {
		errs = append(errs, fmt.Errorf("storage: %w", err))
	}

	if err := tracing.ShutdownTracer(ctx); err != nil {
		errs = append(errs, fmt.Errorf("tracing: %w", err))
	}

	return errors.Join(errs...)
}
