package configs

import "github.com/spf13/viper"

// 限流默认值，默认关闭.
const (
	DefaultRateLimitEnabled = false
	DefaultRateLimitRPS     = 50.0
	DefaultRateLimitBurst   = 100
	DefaultRateLimitKey     = "ip"
)

// DefaultRateLimitExempt 默认不参与限流的路径前缀，探活与抓取指标不应被拒绝.
var DefaultRateLimitExempt = []string{"/health", "/api/health", "/metrics"}

// RateLimitConfig 按 global、ip 或请求头限流.
type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	RPS     float64 `mapstructure:"rps"   rule:"min=0"`
	Burst   int     `mapstructure:"burst" rule:"min=0"`
	// Key 取值 global、ip 或 header:Header-Name
	Key string `mapstructure:"key"`
	// ExemptPaths 路径前缀匹配即放行
	ExemptPaths []string `mapstructure:"exempt_paths"`
}

func (c *RateLimitConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("rate_limit.enabled", DefaultRateLimitEnabled)
	v.SetDefault("rate_limit.rps", DefaultRateLimitRPS)
	v.SetDefault("rate_limit.burst", DefaultRateLimitBurst)
	v.SetDefault("rate_limit.key", DefaultRateLimitKey)
	v.SetDefault("rate_limit.exempt_paths", DefaultRateLimitExempt)
}
