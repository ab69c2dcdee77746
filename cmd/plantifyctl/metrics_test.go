package main

import (
	"bytes"
	"testing"

	"github.com/SlpAus/plantify-backend/internal/dashboard"
	"github.com/SlpAus/plantify-backend/internal/platform/metadata"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDelta(t *testing.T) {
	color.NoColor = true
	up, down, flat := 50.0, -33.3, 0.0

	tests := []struct {
		name  string
		delta *float64
		want  string
	}{
		{"missing", nil, "-"},
		{"growth", &up, "+50.0 ▲"},
		{"decline", &down, "-33.3 ▼"},
		{"flat", &flat, "0.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatDelta(tt.delta))
		})
	}
}

func TestRenderMetrics(t *testing.T) {
	color.NoColor = true
	delta := 50.0
	var buf bytes.Buffer

	require.NoError(t, renderMetrics(&buf, []dashboard.MetricSample{
		{Label: dashboard.LabelTotalDiagnosis, Value: int64(10), Delta: nil},
		{Label: dashboard.LabelTopIssue, Value: "leaf_spot (5)", Delta: &delta},
	}))

	out := buf.String()
	assert.Contains(t, out, "Total Diagnosis")
	assert.Contains(t, out, "leaf_spot (5)")
	assert.Contains(t, out, "+50.0 ▲")
}

func TestPrintMigration(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	require.NoError(t, printMigration(&buf, metadata.MigrationState{}, metadata.MigrationState{SchemaVersion: "1", MigratedAt: "2025-06-01T02:30:00Z"}))
	assert.Equal(t, "migrated schema (none) -> 1 at 2025-06-01T02:30:00Z\n", buf.String())
}
