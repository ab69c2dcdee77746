package diagnosis

import (
	"context"
	"fmt"

	"github.com/SlpAus/plantify-backend/internal/agent"
	"github.com/SlpAus/plantify-backend/internal/vision"
	"gorm.io/gorm"
)

// PersistDiagnosis 在同一个事务中用确认的症状覆盖扫描的清单并创建诊断记录。
// 任一步失败时两者都回滚，扫描保留原来的清单。
func PersistDiagnosis(ctx context.Context, db *gorm.DB, scan *vision.ScanSession, confirmed []string, resp *agent.AgentResponse) (uint, error) {
	if confirmed == nil {
		confirmed = []string{}
	}
	record := buildDiagnosis(scan.UserID, scan.ID, resp)

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&vision.ScanSession{ID: scan.ID}).Select("Checklist").Updates(&vision.ScanSession{Checklist: confirmed})
		if res.Error != nil {
			return fmt.Errorf("更新扫描清单失败: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("更新扫描清单失败: 扫描 %d 不存在", scan.ID)
		}
		if err := tx.Omit("User", "Scan").Create(record).Error; err != nil {
			return fmt.Errorf("创建诊断记录失败: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	scan.Checklist = confirmed
	return record.ID, nil
}
