package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/SlpAus/plantify-backend/internal/platform/config"
	"github.com/SlpAus/plantify-backend/internal/platform/logger"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB 是全局的数据库连接，由 InitDB 初始化
var DB *gorm.DB

// InitDB 根据配置打开数据库连接并赋值给全局的 DB
func InitDB(cfg config.DatabaseConfig) error {
	var err error
	switch cfg.Driver {
	case config.DriverPostgres:
		DB, err = OpenPostgres(cfg.Postgres.DSN)
	default:
		DB, err = OpenSQLite(cfg.Sqlite.Path)
	}
	if err != nil {
		return err
	}
	logger.Log.Infof("数据库连接成功！(driver=%s)", cfg.Driver)
	return nil
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		// 时间统一按UTC写入，SQLite 以文本比较时间，时区不一致会把记录分到错误的窗口
		NowFunc: func() time.Time { return time.Now().UTC() },
		// logrus.Logger 本身就实现了 Printf，可以直接作为gorm的Writer
		Logger: gormlogger.New(logger.Log, gormlogger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		}),
	}
}

// OpenSQLite 打开SQLite数据库，path 为 ":memory:" 时使用内存数据库（测试用）。
// 外键约束默认开启，否则级联删除不会生效。
func OpenSQLite(path string) (*gorm.DB, error) {
	dsn := path
	if path == ":memory:" {
		dsn = "file::memory:"
	}
	if strings.Contains(dsn, "?") {
		dsn += "&_foreign_keys=on"
	} else {
		dsn += "?_foreign_keys=on"
	}

	db, err := gorm.Open(sqlite.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("连接SQLite失败: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// 单连接避免 "database is locked"，内存库也依赖这一点保持同一个实例
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// OpenPostgres 打开PostgreSQL数据库
func OpenPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("连接PostgreSQL失败: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	return db, nil
}

// Ping 检查数据库连接是否可用
func Ping(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
