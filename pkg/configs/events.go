package configs

import "github.com/spf13/viper"

// EventsConfig 控制事件发布与订阅的开关（全局与分主题）。
type EventsConfig struct {
	Enabled  bool                 `mapstructure:"enabled"` // 总开关
	Document DocumentEventsConfig `mapstructure:"document"`
}

// DocumentEventsConfig 文档领域的事件开关。
type DocumentEventsConfig struct {
	Stored  bool `mapstructure:"stored"`  // 上传成功后发布 document.stored
	Deleted bool `mapstructure:"deleted"` // 删除后发布 document.deleted
	// Indexed 订阅外部索引服务发布的 document.indexed，用于更新嵌入缓存标记
	Indexed bool `mapstructure:"indexed"`
}

// setDefaults 设置事件配置的默认值.
func (c *EventsConfig) setDefaults(v *viper.Viper) {
	// 总开关：默认启用事件系统
	v.SetDefault("events.enabled", true)

	v.SetDefault("events.document.stored", true)
	v.SetDefault("events.document.deleted", true)
	v.SetDefault("events.document.indexed", true)
}
