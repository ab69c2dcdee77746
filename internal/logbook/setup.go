package logbook

import (
	"fmt"

	"github.com/SlpAus/plantify-backend/internal/platform/logger"
	"gorm.io/gorm"
)

// Migrate 负责自动迁移养护记录和提醒的表结构
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&LogEntry{}, &Reminder{}); err != nil {
		return fmt.Errorf("无法迁移logbook表: %w", err)
	}
	logger.Log.Debug("Logbook数据库表迁移成功。")
	return nil
}
