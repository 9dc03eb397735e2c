package logger

import (
	"sync"

	"go.uber.org/zap"
)

var (
	once     sync.Once
	instance *zap.Logger
)

// Get 获取全局 zap Logger（懒加载单例）
func Get() *zap.Logger {
	once.Do(func() {
		cfg := zap.NewProductionConfig()
		cfg.OutputPaths = []string{"stdout"}
		l, err := cfg.Build()
		if err != nil {
			panic(err)
		}
		instance = l
	})
	return instance
}

// UseDevelopment 切换为开发模式输出（debug 级别、可读格式）
// 只在 Get 首次调用前调用才有效
func UseDevelopment() {
	once.Do(func() {
		l, err := zap.NewDevelopment()
		if err != nil {
			panic(err)
		}
		instance = l
	})
}
