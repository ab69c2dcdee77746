package main

import (
	"fmt"
	"io"
	"time"

	"github.com/SlpAus/plantify-backend/internal/dashboard"
	"github.com/SlpAus/plantify-backend/internal/platform/database"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"
)

var metricsAt string

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "计算并打印仪表盘指标",
	RunE: func(cmd *cobra.Command, args []string) error {
		now := time.Now()
		if metricsAt != "" {
			t, err := time.Parse(time.RFC3339, metricsAt)
			if err != nil {
				return fmt.Errorf("--at 需要 RFC3339 时间: %w", err)
			}
			now = t
		}
		if err := openDB(); err != nil {
			return err
		}
		metrics, err := dashboard.NewAggregator(database.DB).ComputeMetrics(cmd.Context(), now)
		if err != nil {
			return err
		}
		return renderMetrics(cmd.OutOrStdout(), metrics)
	},
}

func init() {
	metricsCmd.Flags().StringVar(&metricsAt, "at", "", "以该时间为窗口终点计算 (RFC3339)，默认当前时间")
}

// formatDelta 把变化量着色：增长为绿色，下降为红色，没有对比数据时显示 "-"
func formatDelta(delta *float64) string {
	if delta == nil {
		return color.New(color.FgHiBlack).Sprint("-")
	}
	switch {
	case *delta > 0:
		return color.New(color.FgGreen).Sprintf("+%.1f ▲", *delta)
	case *delta < 0:
		return color.New(color.FgRed).Sprintf("%.1f ▼", *delta)
	default:
		return color.New(color.FgYellow).Sprintf("%.1f", *delta)
	}
}

func renderMetrics(w io.Writer, metrics []dashboard.MetricSample) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Metric", "Value", "Delta"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	data := make([][]string, 0, len(metrics))
	for _, m := range metrics {
		data = append(data, []string{m.Label, fmt.Sprint(m.Value), formatDelta(m.Delta)})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
