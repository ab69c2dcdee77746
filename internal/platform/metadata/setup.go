package metadata

import (
	"fmt"

	"github.com/SlpAus/plantify-backend/internal/platform/logger"
	"gorm.io/gorm"
)

// Migrate 负责自动迁移metadata表结构
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&Metadata{}); err != nil {
		return fmt.Errorf("无法迁移metadata表: %w", err)
	}
	logger.Log.Debug("Metadata数据库表迁移成功。")
	return nil
}
