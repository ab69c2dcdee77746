package main

import (
	"github.com/SlpAus/plantify-backend/internal/platform/config"
	"github.com/SlpAus/plantify-backend/internal/platform/database"
	"github.com/SlpAus/plantify-backend/internal/platform/logger"
	"github.com/spf13/cobra"
)

var (
	configDir string
	cfg       *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "plantifyctl",
	Short:         "Plantify 后端的运维工具",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var paths []string
		if configDir != "" {
			paths = append(paths, configDir)
		}
		var err error
		if cfg, err = config.LoadConfig(paths...); err != nil {
			return err
		}
		// 命令行工具只输出警告以上的日志，避免干扰表格
		level := cfg.Log.Level
		if level == "info" || level == "debug" {
			level = "warn"
		}
		return logger.InitLogger(level, "")
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "配置文件所在目录（默认 ./config 或当前目录）")
	rootCmd.AddCommand(migrateCmd, metricsCmd)
}

// openDB 按配置连接数据库
func openDB() error {
	return database.InitDB(cfg.Database)
}
