//go:build !no_sqlite && !cgo

package db

import (
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/yeisme/docchat/pkg/configs"
)

// 纯 Go 驱动用 _pragma 传参.
const sqlitePureParams = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

func sqliteDialector(dsn string) gorm.Dialector {
	return sqlite.Open(withQuery(dsn, sqlitePureParams))
}

func init() {
	RegisterDialectorFactory(configs.SQLite, sqliteDialector)
}
