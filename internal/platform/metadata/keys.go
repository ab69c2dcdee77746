package metadata

// metadata 表中使用的键
const (
	// SchemaVersionKey 记录最近一次迁移完成时的表结构版本
	SchemaVersionKey = "schema_version"

	// LastMigratedAtKey 记录最近一次迁移完成的时间 (RFC3339)
	LastMigratedAtKey = "last_migrated_at"
)
