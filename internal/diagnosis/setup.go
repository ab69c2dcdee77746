package diagnosis

import (
	"fmt"

	"github.com/SlpAus/plantify-backend/internal/platform/logger"
	"gorm.io/gorm"
)

// Migrate 负责自动迁移诊断表结构
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&Diagnosis{}); err != nil {
		return fmt.Errorf("无法迁移diagnosis表: %w", err)
	}
	logger.Log.Debug("Diagnosis数据库表迁移成功。")
	return nil
}
