package configs

import "github.com/spf13/viper"

const (
	DefaultJobsEnabled      = true
	DefaultLibraryStatsCron = "*/5 * * * *" // 每 5 分钟刷新一次文档库统计
)

// JobsConfig 定时任务配置.
type JobsConfig struct {
	Enabled          bool   `mapstructure:"enabled"`
	LibraryStatsCron string `mapstructure:"library_stats_cron" rule:"required"`
}

// setDefaults 设置定时任务配置的默认值.
func (c *JobsConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("jobs.enabled", DefaultJobsEnabled)
	v.SetDefault("jobs.library_stats_cron", DefaultLibraryStatsCron)
}
