package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

// Config 全局配置
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Counter  CounterConfig  `mapstructure:"counter"`
	Task     TaskConfig     `mapstructure:"task"`
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug / release
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

// CounterConfig 序列号服务配置
// BaseURL 为空时走本地数据库计数器
type CounterConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// TaskConfig 定时任务配置
type TaskConfig struct {
	ChildCountCron string `mapstructure:"child_count_cron"`
}

// Load 加载配置：config.yaml + 环境变量（TAXO_ 前缀）
// 找不到配置文件时使用默认值，不报错
func Load() *Config {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")

	v.SetEnvPrefix("TAXO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 默认值
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.dsn", "host=localhost user=taxo_admin password=1234 dbname=item_taxonomy port=5432 sslmode=disable")
	v.SetDefault("counter.base_url", "")
	v.SetDefault("counter.timeout_seconds", 5)
	v.SetDefault("task.child_count_cron", "0 0/30 * * * *")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Fatalf("读取配置文件失败: %v", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Fatalf("解析配置失败: %v", err)
	}
	return &cfg
}
