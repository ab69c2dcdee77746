package metadata

import "time"

// Metadata 定义了存储系统元数据的键值对表结构
type Metadata struct {
	ID uint `gorm:"primarykey"`

	// Key 是元数据的唯一键，例如 "schema_version"
	Key string `gorm:"uniqueIndex;not null;type:varchar(255)"`

	Value string `gorm:"type:varchar(255)"`

	UpdatedAt time.Time
}
