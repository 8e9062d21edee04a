package kv

import (
	"context"
	"path"
	"sort"
	"sync"
	"time"

	"github.com/yeisme/docchat/pkg/configs"
)

// memEntry 以指针存入 sync.Map，CompareAndDelete 按指针比较，不会误删并发写入的新值.
type memEntry struct {
	raw []byte
}

// MemoryKV 基于 sync.Map 的内存 KV 实现，过期键在读取时惰性删除.
type MemoryKV struct {
	data sync.Map
	now  func() time.Time
}

// NewMemoryKV 创建内存 KV 实例.
func NewMemoryKV(_ context.Context, _ *configs.KVConfig) (KVStore, error) {
	return &MemoryKV{now: time.Now}, nil
}

// load 读取并解码值，过期时删除.
func (m *MemoryKV) load(key string) ([]byte, bool) {
	value, ok := m.data.Load(key)
	if !ok {
		return nil, false
	}

	entry, ok := value.(*memEntry)
	if !ok {
		m.data.CompareAndDelete(key, value)

		return nil, false
	}

	val, expired, _, err := decodeWithTTL(entry.raw, m.now())
	if err != nil || expired {
		m.data.CompareAndDelete(key, value)

		return nil, false
	}

	return val, true
}

// Get 获取键的值.
func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, error) {
	val, ok := m.load(key)
	if !ok {
		return nil, ErrKeyNotFound
	}

	out := make([]byte, len(val))
	copy(out, val)

	return out, nil
}

// Set 设置键的值.
func (m *MemoryKV) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	data := make([]byte, len(value))
	copy(data, value)

	encoded, _, err := encodeWithTTL(data, ttl)
	if err != nil {
		return err
	}

	m.data.Store(key, &memEntry{raw: encoded})

	return nil
}

// Delete 删除键.
func (m *MemoryKV) Delete(_ context.Context, key string) error {
	m.data.Delete(key)

	return nil
}

// Exists 检查键是否存在.
func (m *MemoryKV) Exists(_ context.Context, key string) (bool, error) {
	_, ok := m.load(key)

	return ok, nil
}

// Keys 获取匹配模式的键.
func (m *MemoryKV) Keys(_ context.Context, pattern string) ([]string, error) {
	keys := make([]string, 0)

	m.data.Range(func(key, _ any) bool {
		k, ok := key.(string)
		if !ok {
			return true
		}

		if _, live := m.load(k); !live {
			return true
		}

		if matchKey(pattern, k) {
			keys = append(keys, k)
		}

		return true
	})

	sort.Strings(keys)

	return keys, nil
}

// Close 关闭存储（内存实现无需操作）.
func (m *MemoryKV) Close() error {
	return nil
}

// matchKey 使用 glob 规则匹配键，空模式匹配全部.
func matchKey(pattern, key string) bool {
	if pattern == "" || pattern == "*" {
		return true
	}

	ok, err := path.Match(pattern, key)

	return err == nil && ok
}

func init() {
	RegisterKVFactory(KVTypeMemory, NewMemoryKV)
}
