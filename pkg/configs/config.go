// Package configs 管理应用程序配置，包括数据库、存储、上传和队列的配置信息.
// configs 包支持多种配置格式（YAML、JSON、TOML、dotenv）并启用热重载.
//
// Example:
//
//	import "github.com/yeisme/docchat/pkg/configs"
//
//	err := configs.InitConfig("./")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	config := configs.GetConfig()
//	fmt.Println(config.Server.Port)
//
// Example accessing Upload config:
//
//	config := configs.GetConfig()
//	maxBytes := config.Upload.MaxBytes()
//	fmt.Println("max upload:", maxBytes)
//
// Example accessing DB config:
//
//	config := configs.GetConfig()
//	dsn := config.DB.GetDSN()
//	fmt.Println("DSN:", dsn)
package configs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// AppVersion 应用版本号，构建时可通过 -ldflags 覆盖.
var AppVersion = "0.1.0"

// EnvPrefix 环境变量前缀，例如 DOCCHAT_SERVER_PORT.
const EnvPrefix = "DOCCHAT"

type (
	// AppConfig 全局应用程序配置.
	AppConfig struct {
		Server         ServerConfig         `mapstructure:"server"`          // ServerConfig 服务器配置，端口、调试、CORS 等
		Log            LogConfig            `mapstructure:"log"`             // LogConfig 日志相关配置
		DB             DBConfig             `mapstructure:"db"`              // DBConfig 数据库配置
		Store          StoreConfig          `mapstructure:"store"`           // StoreConfig 文档/查询存储实现选择
		Upload         UploadConfig         `mapstructure:"upload"`          // UploadConfig 上传管道配置
		S3             S3Config             `mapstructure:"s3"`              // S3Config 对象存储配置
		KV             KVConfig             `mapstructure:"kv"`              // KVConfig 键值存储配置
		Cache          CacheConfig          `mapstructure:"cache"`           // CacheConfig 列表缓存配置
		MQ             MQConfig             `mapstructure:"mq"`              // MQConfig 消息队列配置
		Events         EventsConfig         `mapstructure:"events"`          // EventsConfig 事件开关
		QA             QAConfig             `mapstructure:"qa"`              // QAConfig 外部问答服务
		CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"` // CircuitBreakerConfig 问答服务熔断
		RateLimit      RateLimitConfig      `mapstructure:"rate_limit"`      // RateLimitConfig 限流
		Metrics        MetricsConfig        `mapstructure:"metrics"`         // MetricsConfig 监控
		Tracing        TracingConfig        `mapstructure:"tracing"`         // TracingConfig 追踪
		Jobs           JobsConfig           `mapstructure:"jobs"`            // JobsConfig 定时任务
	}
)

var (
	// globalConfig 全局配置实例.
	globalConfig AppConfig
	// appViper 全局 Viper 实例.
	appViper *viper.Viper
	// cfgMu 保护热重载时的并发读写.
	cfgMu sync.RWMutex
)

// InitConfig 加载应用程序配置，支持多种格式(yaml、json、toml、dotenv)并启用热重载.
// path 为空或找不到配置文件时只使用默认值与环境变量.
func InitConfig(path string) error {
	v := viper.New()
	// 设置默认值
	setAllDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	hasFile := locateConfigFile(v, path)

	if hasFile {
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	cfgMu.Lock()
	globalConfig = cfg
	appViper = v
	cfgMu.Unlock()

	if hasFile {
		reloadConfigs(v, cfg.Server.ReloadConfig)
	}

	return nil
}

// locateConfigFile 根据 path 设置配置文件，返回是否找到可读取的配置文件.
func locateConfigFile(v *viper.Viper, path string) bool {
	if path == "" {
		path = "."
	}

	// 检查path是否是文件
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		// 是文件，使用SetConfigFile，Viper会自动检测类型
		v.SetConfigFile(path)

		return true
	}

	exts := []string{"yaml", "yml", "json", "toml", "env", "dotenv"}

	for _, dir := range []string{path, filepath.Join(path, "configs")} {
		for _, ext := range exts {
			cfg := filepath.Join(dir, "config."+ext)
			if _, err := os.Stat(cfg); err == nil {
				v.SetConfigFile(cfg)

				return true
			}
		}
	}

	return false
}

// setAllDefaults 设置所有配置的默认值.
func setAllDefaults(v *viper.Viper) {
	var c AppConfig

	c.Server.setDefaults(v)
	c.Log.setDefaults(v)
	c.DB.setDefaults(v)
	c.Store.setDefaults(v)
	c.Upload.setDefaults(v)
	c.S3.setDefaults(v)
	c.KV.setDefaults(v)
	c.Cache.setDefaults(v)
	c.MQ.setDefaults(v)
	c.Events.setDefaults(v)
	c.QA.setDefaults(v)
	c.CircuitBreaker.setDefaults(v)
	c.RateLimit.setDefaults(v)
	c.Metrics.setDefaults(v)
	c.Tracing.setDefaults(v)
	c.Jobs.setDefaults(v)
}

func reloadConfigs(v *viper.Viper, isHotReload bool) {
	if !isHotReload {
		return
	}
	// 启用配置热重载
	v.OnConfigChange(func(e fsnotify.Event) {
		fmt.Println("Config file changed:", e.Name)
		fmt.Println("Reloading configuration...")

		var cfg AppConfig
		if err := v.Unmarshal(&cfg); err != nil {
			fmt.Printf("Error reloading config: %v\n", err)
			return
		}

		if err := cfg.Validate(); err != nil {
			fmt.Printf("Rejected reloaded config: %v\n", err)
			return
		}

		cfgMu.Lock()
		globalConfig = cfg
		cfgMu.Unlock()
	})
	v.WatchConfig()
}

// GetConfig 返回全局配置实例.
func GetConfig() *AppConfig {
	cfgMu.RLock()
	defer cfgMu.RUnlock()

	c := globalConfig

	return &c
}

// GetViper 返回全局 Viper 实例.
func GetViper() *viper.Viper {
	cfgMu.RLock()
	defer cfgMu.RUnlock()

	return appViper
}

// SetConfig 直接替换全局配置，主要用于测试与嵌入式启动.
func SetConfig(cfg AppConfig) {
	cfgMu.Lock()
	globalConfig = cfg
	cfgMu.Unlock()
}

// Defaults 返回只包含默认值的配置.
func Defaults() AppConfig {
	v := viper.New()
	setAllDefaults(v)

	var cfg AppConfig

	_ = v.Unmarshal(&cfg)

	return cfg
}

// redactedValue 替换敏感字段的占位符.
const redactedValue = "******"

// Redacted 返回隐藏了密码与密钥的配置副本，用于打印与日志.
func (c AppConfig) Redacted() AppConfig {
	for _, s := range []*string{
		&c.DB.Password,
		&c.S3.SecretAccessKey,
		&c.KV.Redis.Password,
		&c.KV.NATS.Password,
		&c.MQ.Common.Password,
		&c.MQ.NATS.JWT,
		&c.MQ.NATS.NKey,
		&c.MQ.Redis.Password,
	} {
		if *s != "" {
			*s = redactedValue
		}
	}

	return c
}
