package vision

import (
	"fmt"

	"github.com/SlpAus/plantify-backend/internal/platform/logger"
	"gorm.io/gorm"
)

// Migrate 负责自动迁移扫描表结构
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&ScanSession{}); err != nil {
		return fmt.Errorf("无法迁移scan表: %w", err)
	}
	logger.Log.Debug("Scan数据库表迁移成功。")
	return nil
}
