package main

import (
	"fmt"
	"io"

	"github.com/SlpAus/plantify-backend/internal/platform/database"
	"github.com/SlpAus/plantify-backend/internal/platform/metadata"
	"github.com/SlpAus/plantify-backend/internal/platform/startup"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "迁移所有表结构并打印迁移记录",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := openDB(); err != nil {
			return err
		}
		before, err := previousState()
		if err != nil {
			return err
		}
		if err := startup.Migrate(database.DB); err != nil {
			return err
		}
		after, err := metadata.GetMigrationState(database.DB)
		if err != nil {
			return err
		}
		return printMigration(cmd.OutOrStdout(), before, after)
	},
}

// previousState 在迁移前读取记录，metadata表还不存在时视为从未迁移
func previousState() (metadata.MigrationState, error) {
	if !database.DB.Migrator().HasTable(&metadata.Metadata{}) {
		return metadata.MigrationState{}, nil
	}
	return metadata.GetMigrationState(database.DB)
}

func printMigration(w io.Writer, before, after metadata.MigrationState) error {
	ok := color.New(color.FgGreen, color.Bold).SprintFunc()
	from := before.SchemaVersion
	if from == "" {
		from = "(none)"
	}
	_, err := fmt.Fprintf(w, "%s schema %s -> %s at %s\n", ok("migrated"), from, after.SchemaVersion, after.MigratedAt)
	return err
}
