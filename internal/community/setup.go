package community

import (
	"fmt"

	"github.com/SlpAus/plantify-backend/internal/platform/logger"
	"gorm.io/gorm"
)

// Migrate 负责自动迁移社区相关的表结构，帖子必须先于点赞和评论创建
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&Post{}, &Like{}, &Comment{}); err != nil {
		return fmt.Errorf("无法迁移community表: %w", err)
	}
	logger.Log.Debug("Community数据库表迁移成功。")
	return nil
}
