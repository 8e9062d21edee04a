//go:build !no_sqlite && cgo

package db

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yeisme/docchat/pkg/configs"
)

// mattn/go-sqlite3 的连接参数，document_queries 依赖外键级联删除.
const sqliteCgoParams = "_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL"

func sqliteDialector(dsn string) gorm.Dialector {
	return sqlite.Open(withQuery(dsn, sqliteCgoParams))
}

func init() {
	RegisterDialectorFactory(configs.SQLite, sqliteDialector)
}
