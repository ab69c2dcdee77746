package metadata

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetValue 读取一个键的值，键不存在时返回空字符串
func GetValue(db *gorm.DB, key string) (string, error) {
	var meta Metadata
	err := db.Where("key = ?", key).First(&meta).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return meta.Value, nil
}

// SetValue 写入一个键的值，已存在时覆盖
func SetValue(db *gorm.DB, key, value string) error {
	meta := Metadata{
		Key:   key,
		Value: value,
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&meta).Error
}

// RecordMigration 记录迁移完成时的表结构版本和时间
func RecordMigration(db *gorm.DB, version string, at time.Time) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := SetValue(tx, SchemaVersionKey, version); err != nil {
			return err
		}
		return SetValue(tx, LastMigratedAtKey, at.UTC().Format(time.RFC3339))
	})
}

// MigrationState 是最近一次迁移的记录，从未迁移过时两个字段都为空
type MigrationState struct {
	SchemaVersion string
	MigratedAt    string
}

// GetMigrationState 读取最近一次迁移的记录
func GetMigrationState(db *gorm.DB) (MigrationState, error) {
	var state MigrationState
	var err error
	if state.SchemaVersion, err = GetValue(db, SchemaVersionKey); err != nil {
		return state, fmt.Errorf("无法读取元数据 '%s': %w", SchemaVersionKey, err)
	}
	if state.MigratedAt, err = GetValue(db, LastMigratedAtKey); err != nil {
		return state, fmt.Errorf("无法读取元数据 '%s': %w", LastMigratedAtKey, err)
	}
	return state, nil
}
