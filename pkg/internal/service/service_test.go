package service_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/yeisme/docchat/pkg/cache"
	"github.com/yeisme/docchat/pkg/configs"
	"github.com/yeisme/docchat/pkg/internal/model"
	"github.com/yeisme/docchat/pkg/internal/storage"
	"github.com/yeisme/docchat/pkg/internal/storage/blob"
	"github.com/yeisme/docchat/pkg/internal/storage/kv"
	"github.com/yeisme/docchat/pkg/internal/storage/mq"
	"github.com/yeisme/docchat/pkg/internal/storage/store"
)

// newTestManager 使用内存存储、临时目录与进程内消息队列.
func newTestManager(t *testing.T) (*storage.Manager, string) {
	t.Helper()

	ctx := context.Background()
	dir := t.TempDir()

	blobs, err := blob.NewLocal(dir)
	if err != nil {
		t.Fatalf("NewLocal failed: %v", err)
	}

	kvStore, err := kv.NewKVStore(ctx, kv.KVTypeMemory, nil)
	if err != nil {
		t.Fatalf("NewKVStore failed: %v", err)
	}

	mqClient, err := mq.New(ctx, &configs.MQConfig{Enabled: true, Type: configs.MQTypeGoChannel})
	if err != nil {
		t.Fatalf("mq.New failed: %v", err)
	}

	mgr := &storage.Manager{
		Store: store.NewMemory(),
		Blobs: blobs,
		Cache: cache.NewCache(kvStore, "test"),
		MQ:    mqClient,
	}

	t.Cleanup(func() {
		_ = mgr.Close()
		_ = kvStore.Close()
	})

	return mgr, dir
}

func testConfig() *configs.AppConfig {
	cfg := configs.Defaults()
	cfg.Cache.TTL = time.Minute

	return &cfg
}

// filesIn 返回目录下的文件数.
func filesIn(t *testing.T, dir string) int {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}

	return len(entries)
}

func documentCount(t *testing.T, mgr *storage.Manager) int64 {
	t.Helper()

	n, err := mgr.Documents().Count(context.Background())
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}

	return n
}

// failingBackend 替换 Backend 的文档存储.
type failingBackend struct {
	store.Backend
	docs store.DocumentStore
}

func (b failingBackend) Documents() store.DocumentStore { return b.docs }

// brokenCreate 所有插入都失败.
type brokenCreate struct {
	store.DocumentStore
}

func (brokenCreate) Create(context.Context, *model.Document) (uint, error) {
	return 0, errors.New("disk full")
}

// lostRace 第一次指纹查询总是未命中，模拟并发上传在预检之后抢先入库.
type lostRace struct {
	store.DocumentStore
	missed bool
}

func (r *lostRace) FindByFingerprint(ctx context.Context, hash string) (*model.Document, error) {
	if !r.missed {
		r.missed = true
		return nil, store.ErrNotFound
	}

	return r.DocumentStore.FindByFingerprint(ctx, hash)
}
