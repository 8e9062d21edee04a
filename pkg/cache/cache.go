// Package cache 提供基于键值存储的泛型缓存，用于缓存文档列表与查询记录列表.
//
// 值使用 sonic 编码为 JSON，TTL 交给底层 KV 实现处理.
//
// 基本用法:
//
//	c := cache.NewCache(kvStore, "docchat")
//	docs, err := cache.GetOrSet(ctx, c, c.Key("documents", "all"), func() ([]model.Document, error) {
//	    return store.ListAll(ctx)
//	}, 30*time.Second)
//
//	// 写入后失效
//	_ = c.Invalidate(ctx, c.Key("documents", "all"))
//
// 缓存未命中不视为错误，GetOrSet 会回源；写缓存失败只影响命中率，不影响返回值.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/yeisme/docchat/pkg/internal/storage/kv"
)

// Cache 基于KV存储的缓存实现.
type Cache struct {
	kvStore kv.KVStore
	prefix  string
}

// NewCache 创建一个新的缓存实例，prefix 为所有键的前缀，可为空.
func NewCache(kvStore kv.KVStore, prefix string) *Cache {
	return &Cache{
		kvStore: kvStore,
		prefix:  prefix,
	}
}

// Key 用 '.' 拼接键，NATS KV 不允许 ':' 等字符.
func (c *Cache) Key(parts ...string) string {
	if c.prefix != "" {
		parts = append([]string{c.prefix}, parts...)
	}

	return strings.Join(parts, ".")
}

// IsMiss 判断错误是否为缓存未命中.
func IsMiss(err error) bool {
	return errors.Is(err, kv.ErrKeyNotFound)
}

// Get 泛型获取缓存值.
func Get[T any](ctx context.Context, c *Cache, key string) (T, error) {
	var zero T

	data, err := c.kvStore.Get(ctx, key)
	if err != nil {
		return zero, err
	}

	var value T
	if err := sonic.Unmarshal(data, &value); err != nil {
		return zero, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}

	return value, nil
}

// Set 泛型设置缓存值.
func Set[T any](ctx context.Context, c *Cache, key string, value T, ttl time.Duration) error {
	data, err := sonic.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	return c.kvStore.Set(ctx, key, data, ttl)
}

// Delete 删除缓存键.
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.kvStore.Delete(ctx, key)
}

// Invalidate 删除多个键，返回遇到的第一个错误.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) error {
	var first error

	for _, key := range keys {
		if err := c.kvStore.Delete(ctx, key); err != nil && first == nil {
			first = err
		}
	}

	return first
}

// Exists 检查缓存键是否存在.
func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	return c.kvStore.Exists(ctx, key)
}

// GetOrSet 获取缓存值，如果不存在则调用 getter 并写回.
func GetOrSet[T any](ctx context.Context, c *Cache, key string, getter func() (T, error), ttl time.Duration) (T, error) {
	var zero T

	if value, err := Get[T](ctx, c, key); err == nil {
		return value, nil
	}

	value, err := getter()
	if err != nil {
		return zero, err
	}

	// 缓存失败，但仍返回值
	_ = Set(ctx, c, key, value, ttl)

	return value, nil
}

// Clear 删除前缀下的全部键.
func (c *Cache) Clear(ctx context.Context) error {
	pattern := "*"
	if c.prefix != "" {
		pattern = c.prefix + ".*"
	}

	keys, err := c.kvStore.Keys(ctx, pattern)
	if err != nil {
		return err
	}

	for _, key := range keys {
		if delErr := c.kvStore.Delete(ctx, key); delErr != nil {
			return delErr
		}
	}

	return nil
}
