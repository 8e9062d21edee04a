package configs

import "github.com/spf13/viper"

// StoreType 文档与查询记录的存储实现.
type StoreType string

const (
	// StoreTypeMemory 进程内存储，重启即丢失，适合测试与演示.
	StoreTypeMemory StoreType = "memory"
	// StoreTypeDB 关系型数据库存储，由 db 配置决定具体方言.
	StoreTypeDB StoreType = "db"

	DefaultStoreType = StoreTypeDB
)

// StoreConfig 存储实现选择.
type StoreConfig struct {
	Type StoreType `mapstructure:"type" rule:"oneof=memory db"`
}

// setDefaults 设置存储配置的默认值.
func (c *StoreConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("store.type", DefaultStoreType)
}
