// plantifyctl 是运维用的命令行工具：迁移数据库、查看仪表盘指标。
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
