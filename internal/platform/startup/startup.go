package startup

import (
	"fmt"
	"time"

	"github.com/SlpAus/plantify-backend/internal/community"
	"github.com/SlpAus/plantify-backend/internal/diagnosis"
	"github.com/SlpAus/plantify-backend/internal/logbook"
	"github.com/SlpAus/plantify-backend/internal/platform/config"
	"github.com/SlpAus/plantify-backend/internal/platform/database"
	"github.com/SlpAus/plantify-backend/internal/platform/logger"
	"github.com/SlpAus/plantify-backend/internal/platform/metadata"
	"github.com/SlpAus/plantify-backend/internal/user"
	"github.com/SlpAus/plantify-backend/internal/vision"
	"gorm.io/gorm"
)

// SchemaVersion 在表结构发生不兼容变化时递增
const SchemaVersion = "1"

// migrations 按外键依赖顺序排列：被引用的表必须先创建
var migrations = []struct {
	name string
	fn   func(*gorm.DB) error
}{
	{"metadata", metadata.Migrate},
	{"user", user.Migrate},
	{"vision", vision.Migrate},
	{"diagnosis", diagnosis.Migrate},
	{"community", community.Migrate},
	{"logbook", logbook.Migrate},
}

// Migrate 迁移所有模块的表结构，并在metadata表中记录版本
func Migrate(db *gorm.DB) error {
	for _, m := range migrations {
		if err := m.fn(db); err != nil {
			return fmt.Errorf("模块 %s 迁移失败: %w", m.name, err)
		}
	}
	if err := metadata.RecordMigration(db, SchemaVersion, time.Now()); err != nil {
		return fmt.Errorf("记录迁移版本失败: %w", err)
	}
	logger.Log.Infof("数据库迁移完成，schema版本 %s", SchemaVersion)
	return nil
}

// InitializeApplication 是应用启动时执行的总入口：连接数据库和Redis，然后迁移表结构
func InitializeApplication(cfg *config.Config) error {
	logger.Log.Info("开始应用初始化...")

	if err := database.InitDB(cfg.Database); err != nil {
		return err
	}
	database.InitRedis(cfg.Database.Redis)

	if err := Migrate(database.DB); err != nil {
		return err
	}

	logger.Log.Info("应用初始化完成！")
	return nil
}
