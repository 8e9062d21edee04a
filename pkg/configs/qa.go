package configs

import (
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultQAEnabled  = true
	DefaultQAEndpoint = "http://localhost:8000" // 问答服务地址
	DefaultQAAskPath  = "/ask"                  // 问答接口路径
	DefaultQATimeout  = 60 * time.Second        // 生成答案可能较慢
)

// QAConfig 外部问答服务配置.
type QAConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Endpoint string        `mapstructure:"endpoint" rule:"required,url"`
	AskPath  string        `mapstructure:"ask_path" rule:"required,startswith=/"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// setDefaults 设置问答服务配置的默认值.
func (c *QAConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("qa.enabled", DefaultQAEnabled)
	v.SetDefault("qa.endpoint", DefaultQAEndpoint)
	v.SetDefault("qa.ask_path", DefaultQAAskPath)
	v.SetDefault("qa.timeout", DefaultQATimeout)
}
