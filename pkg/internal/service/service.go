// Package service 实现文档上传、查询记录与问答相关的业务逻辑，不处理 HTTP 细节.
package service

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/yeisme/docchat/pkg/cache"
	"github.com/yeisme/docchat/pkg/configs"
	"github.com/yeisme/docchat/pkg/internal/storage"
	"github.com/yeisme/docchat/pkg/internal/storage/blob"
	"github.com/yeisme/docchat/pkg/internal/storage/mq"
	"github.com/yeisme/docchat/pkg/internal/storage/store"
	nlog "github.com/yeisme/docchat/pkg/log"
)

// listFlight 合并同一缓存键、同一代数上的并发回源.
var listFlight singleflight.Group

// listGens 记录每个缓存键的代数，写操作失效缓存时递增.
// 回源前记下代数，回填时代数已变说明期间有写入，结果不再写回缓存.
var listGens = struct {
	sync.Mutex
	gen map[string]uint64
}{gen: map[string]uint64{}}

func generation(key string) uint64 {
	listGens.Lock()
	defer listGens.Unlock()

	return listGens.gen[key]
}

// deps 各服务共享的依赖.
type deps struct {
	docs    store.DocumentStore
	queries store.QueryLog
	blobs   blob.Store
	cache   *cache.Cache
	mq      *mq.Client
	cfg     *configs.AppConfig
	log     zerolog.Logger
}

func newDeps(mgr *storage.Manager, cfg *configs.AppConfig, component string) deps {
	if mgr == nil || mgr.Store == nil {
		nlog.Logger().Fatal().Msg("storage manager not initialized")
	}

	if cfg == nil {
		cfg = configs.GetConfig()
	}

	return deps{
		docs:    mgr.Documents(),
		queries: mgr.Queries(),
		blobs:   mgr.GetBlobStore(),
		cache:   mgr.GetCache(),
		mq:      mgr.GetMQClient(),
		cfg:     cfg,
		log:     nlog.Component(component),
	}
}

func (d *deps) documentsKey() string {
	if d.cache == nil {
		return ""
	}

	return d.cache.Key("documents", "all")
}

func (d *deps) queriesKey(documentID uint) string {
	if d.cache == nil {
		return ""
	}

	return d.cache.Key("document", strconv.FormatUint(uint64(documentID), 10), "queries")
}

// cached 读取缓存，未命中时经 singleflight 回源并回填；未启用缓存时直接回源.
func cached[T any](ctx context.Context, d *deps, key string, load func(context.Context) (T, error)) (T, error) {
	if d.cache == nil {
		return load(ctx)
	}

	if v, err := cache.Get[T](ctx, d.cache, key); err == nil {
		return v, nil
	} else if !cache.IsMiss(err) {
		d.log.Warn().Err(err).Str("key", key).Msg("cache read failed")
	}

	gen := generation(key)

	v, err, _ := listFlight.Do(key+"#"+strconv.FormatUint(gen, 10), func() (any, error) {
		loaded, err := load(context.WithoutCancel(ctx))
		if err != nil {
			return loaded, err
		}

		d.fill(ctx, key, gen, loaded)

		return loaded, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}

	return v.(T), nil
}

func (d *deps) cacheTTL() time.Duration {
	if d.cfg.Cache.TTL > 0 {
		return d.cfg.Cache.TTL
	}

	return configs.DefaultCacheTTL
}

// fill 仅在代数未变时回填.检查与写入和 invalidate 持同一把锁，失效之后不会再写入旧值.
func (d *deps) fill(ctx context.Context, key string, gen uint64, value any) {
	listGens.Lock()
	defer listGens.Unlock()

	if listGens.gen[key] != gen {
		return
	}

	if err := cache.Set(ctx, d.cache, key, value, d.cacheTTL()); err != nil {
		d.log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

// invalidate 写操作后递增代数并删除相关缓存键，失败只记录日志.
func (d *deps) invalidate(ctx context.Context, keys ...string) {
	if d.cache == nil {
		return
	}

	listGens.Lock()
	defer listGens.Unlock()

	for _, key := range keys {
		listGens.gen[key]++
	}

	if err := d.cache.Invalidate(context.WithoutCancel(ctx), keys...); err != nil {
		d.log.Warn().Err(err).Strs("keys", keys).Msg("cache invalidation failed")
	}
}

func (d *deps) eventsEnabled(topicEnabled bool) bool {
	return d.mq != nil && d.cfg.Events.Enabled && topicEnabled
}
