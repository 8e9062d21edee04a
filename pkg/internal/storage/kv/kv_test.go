package kv_test

import (
	"context"
	crand "crypto/rand"
	"errors"
	"fmt"
	mrand "math/rand"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yeisme/docchat/pkg/configs"
	"github.com/yeisme/docchat/pkg/internal/storage/kv"
)

// TestMemoryKV_GetSetDelete 测试内存实现的基本读写.
func TestMemoryKV_GetSetDelete(t *testing.T) {
	ctx := context.Background()

	store, err := kv.NewKVStore(ctx, kv.KVTypeMemory, nil)
	if err != nil {
		t.Fatalf("create memory kv: %v", err)
	}

	if _, err := store.Get(ctx, "docchat.documents.all"); !errors.Is(err, kv.ErrKeyNotFound) {
		t.Fatalf("Expected ErrKeyNotFound, got %v", err)
	}

	value := []byte("payload")
	if err := store.Set(ctx, "docchat.documents.all", value, 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// 修改调用方切片不影响已存储的值
	value[0] = 'X'

	got, err := store.Get(ctx, "docchat.documents.all")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if string(got) != "payload" {
		t.Errorf("Expected payload, got %q", got)
	}

	if err := store.Delete(ctx, "docchat.documents.all"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if ok, _ := store.Exists(ctx, "docchat.documents.all"); ok {
		t.Error("Expected key to be gone after delete")
	}
}

// TestMemoryKV_TTL 测试过期键不可读取且不出现在 Keys 中.
func TestMemoryKV_TTL(t *testing.T) {
	ctx := context.Background()

	store, err := kv.NewKVStore(ctx, kv.KVTypeMemory, nil)
	if err != nil {
		t.Fatalf("create memory kv: %v", err)
	}

	if err := store.Set(ctx, "short", []byte("x"), 20*time.Millisecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if err := store.Set(ctx, "long", []byte("y"), time.Hour); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if got, err := store.Get(ctx, "short"); err != nil || string(got) != "x" {
		t.Fatalf("Expected live value x, got %q (%v)", got, err)
	}

	time.Sleep(60 * time.Millisecond)

	if _, err := store.Get(ctx, "short"); !errors.Is(err, kv.ErrKeyNotFound) {
		t.Errorf("Expected expired key to be missing, got %v", err)
	}

	// 过期清理后同一个键仍可正常读写删除
	if err := store.Set(ctx, "short", []byte("z"), time.Hour); err != nil {
		t.Fatalf("Set after expiry failed: %v", err)
	}

	if got, err := store.Get(ctx, "short"); err != nil || string(got) != "z" {
		t.Fatalf("Expected rewritten value z, got %q (%v)", got, err)
	}

	if err := store.Delete(ctx, "short"); err != nil {
		t.Fatalf("Delete after expiry failed: %v", err)
	}

	keys, err := store.Keys(ctx, "")
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}

	if len(keys) != 1 || keys[0] != "long" {
		t.Errorf("Expected only [long], got %v", keys)
	}
}

// TestMemoryKV_KeysPattern 测试 glob 模式过滤.
func TestMemoryKV_KeysPattern(t *testing.T) {
	ctx := context.Background()

	store, _ := kv.NewKVStore(ctx, kv.KVTypeMemory, nil)
	for _, k := range []string{"docchat.documents.all", "docchat.document.1.queries", "other.key"} {
		_ = store.Set(ctx, k, []byte("1"), 0)
	}

	keys, err := store.Keys(ctx, "docchat.*")
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}

	if len(keys) != 2 {
		t.Errorf("Expected 2 keys with docchat prefix, got %v", keys)
	}
}

// TestNewKVClient 测试按配置创建客户端.
func TestNewKVClient(t *testing.T) {
	client, err := kv.NewKVClient(context.Background(), &configs.KVConfig{})
	if err != nil {
		t.Fatalf("NewKVClient failed: %v", err)
	}

	if client.Type() != kv.KVTypeMemory {
		t.Errorf("Expected memory type by default, got %s", client.Type())
	}

	if _, err := kv.NewKVClient(context.Background(), &configs.KVConfig{Type: "etcd"}); err == nil {
		t.Error("Expected error for unsupported type")
	}

	registered := kv.GetRegisteredKVTypes()
	if len(registered) < 3 {
		t.Errorf("Expected memory, nats and redis to be registered, got %v", registered)
	}
}

func BenchmarkMemoryKV(b *testing.B) {
	store, err := kv.NewKVStore(context.Background(), kv.KVTypeMemory, nil)
	if err != nil {
		b.Fatalf("create memory kv: %v", err)
	}

	benchKV(b, "memory", store)
	benchKVParallel(b, "memory", store)
	_ = store.Close()
}

// Optional: enable with ENABLE_REDIS_BENCH=1 and REDIS_ADDR set (default 127.0.0.1:6379).
func BenchmarkRedisKV(b *testing.B) {
	if os.Getenv("ENABLE_REDIS_BENCH") == "" {
		b.Skip("set ENABLE_REDIS_BENCH=1 to enable")
	}

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "127.0.0.1:6379"
	}

	cfg := &configs.KVConfig{Type: "redis", Redis: configs.RedisKVConfig{Addr: addr}}

	store, err := kv.NewKVStore(context.Background(), kv.KVTypeRedis, cfg)
	if err != nil {
		b.Skipf("redis not available: %v", err)
		return
	}

	benchKV(b, "redis", store)
	benchKVParallel(b, "redis", store)
	_ = store.Close()
}

// Optional: enable with ENABLE_NATS_BENCH=1 and NATS_URL set (default nats://127.0.0.1:4222)
func BenchmarkNATSKV(b *testing.B) {
	if os.Getenv("ENABLE_NATS_BENCH") == "" {
		b.Skip("set ENABLE_NATS_BENCH=1 to enable")
	}

	url := os.Getenv("NATS_URL")
	if url == "" {
		url = "nats://127.0.0.1:4222"
	}

	bucket := os.Getenv("NATS_BUCKET")
	if bucket == "" {
		bucket = "bench-kv"
	}

	cfg := &configs.KVConfig{Type: "nats", NATS: configs.NATSKVConfig{URL: url, Bucket: bucket}}

	store, err := kv.NewKVStore(context.Background(), kv.KVTypeNATS, cfg)
	if err != nil {
		b.Skipf("nats not available: %v", err)
		return
	}

	benchKV(b, "nats", store)
	benchKVParallel(b, "nats", store)
	_ = store.Close()
}

// randBytes returns n random bytes, seeded reproducibly for bench.
func randBytes(n int) []byte {
	b := make([]byte, n)
	// Try crypto/rand; if it fails (unlikely in tests), fallback to deterministic PRNG.
	if _, err := crand.Read(b); err != nil {
		mr := mrand.New(mrand.NewSource(42))
		for i := range b {
			b[i] = byte(mr.Intn(256))
		}
	}

	return b
}

// benchKV 执行基本的 Set/Get/Delete 基准测试.
func benchKV(b *testing.B, name string, store kv.KVStore) {
	ctx := context.Background()
	sizes := []int{32, 1024, 64 * 1024}
	ttls := []time.Duration{0, 5 * time.Second}

	for _, size := range sizes {
		payload := randBytes(size)
		for _, ttl := range ttls {
			b.Run(fmt.Sprintf("%s/size=%d/ttl=%s", name, size, ttl), func(b *testing.B) {
				// ensure clean
				b.ReportAllocs()

				for i := 0; b.Loop(); i++ {
					// Use hyphens to ensure keys are valid for NATS KV
					key := fmt.Sprintf("bench-%s-%d", name, i)
					if err := store.Set(ctx, key, payload, ttl); err != nil {
						b.Fatalf("set failed: %v", err)
					}

					if _, err := store.Get(ctx, key); err != nil {
						b.Fatalf("get failed: %v", err)
					}

					if err := store.Delete(ctx, key); err != nil {
						b.Fatalf("delete failed: %v", err)
					}
				}
			})
		}
	}
}

// benchKVParallel 执行并行的 Set/Get/Delete 基准测试.
func benchKVParallel(b *testing.B, name string, store kv.KVStore) {
	ctx := context.Background()
	size := 1024
	payload := randBytes(size)

	var ctr uint64

	b.Run(fmt.Sprintf("%s/parallel", name), func(b *testing.B) {
		b.ReportAllocs()
		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				i := atomic.AddUint64(&ctr, 1)

				// Use hyphens to ensure keys are valid for NATS KV
				key := fmt.Sprintf("bench-%s-p-%d", name, i)
				if err := store.Set(ctx, key, payload, 0); err != nil {
					b.Fatalf("set failed: %v", err)
				}

				if _, err := store.Get(ctx, key); err != nil {
					b.Fatalf("get failed: %v", err)
				}

				if err := store.Delete(ctx, key); err != nil {
					b.Fatalf("delete failed: %v", err)
				}
			}
		})
	})
}
