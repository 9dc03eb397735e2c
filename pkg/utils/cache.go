package utils

import (
	"sync"
	"time"
)

// 使用 sync.Map 保证并发安全
// 用于缓存分类规格配置等读多写少的数据
var memoryCache sync.Map

// cacheItem 内部结构，包含值和过期时间
type cacheItem struct {
	value      interface{}
	expiration int64
}

// SetCache 设置缓存，ttl 为空时默认 10 分钟过期
func SetCache(key string, value interface{}, ttl time.Duration) {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	memoryCache.Store(key, cacheItem{
		value:      value,
		expiration: time.Now().Add(ttl).Unix(),
	})
}

// GetCache 获取缓存并验证是否过期
func GetCache(key string) (interface{}, bool) {
	val, ok := memoryCache.Load(key)
	if !ok {
		return nil, false
	}

	item := val.(cacheItem)

	// 过期则懒删除
	if time.Now().Unix() > item.expiration {
		memoryCache.Delete(key)
		return nil, false
	}

	return item.value, true
}

// DeleteCache 删除缓存（配置更新后失效）
func DeleteCache(key string) {
	memoryCache.Delete(key)
}
