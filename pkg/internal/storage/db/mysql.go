//go:build !no_mysql

package db

import (
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/yeisme/docchat/pkg/configs"
)

// documents.filename 等 varchar 列的默认长度.
const mysqlDefaultStringSize = 512

func mysqlDialector(dsn string) gorm.Dialector {
	return mysql.New(mysql.Config{
		DSN:                       dsn,
		DefaultStringSize:         mysqlDefaultStringSize,
		SkipInitializeWithVersion: false,
	})
}

// MariaDB 不支持 RENAME INDEX 与 RENAME COLUMN，迁移时退回旧语法.
func mariaDBDialector(dsn string) gorm.Dialector {
	return mysql.New(mysql.Config{
		DSN:                     dsn,
		DefaultStringSize:       mysqlDefaultStringSize,
		DontSupportRenameIndex:  true,
		DontSupportRenameColumn: true,
	})
}

func init() {
	RegisterDialectorFactory(configs.MySQL, mysqlDialector)
	RegisterDialectorFactory(configs.MariaDB, mariaDBDialector)
}
