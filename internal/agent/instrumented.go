package agent

import (
	"context"
	"errors"
	"time"

	"github.com/SlpAus/plantify-backend/internal/platform/logger"
	"github.com/SlpAus/plantify-backend/internal/platform/telemetry"
)

const maxLoggedRaw = 300

// callOutcome 把调用结果归为指标标签
func callOutcome(err error) string {
	switch {
	case err == nil:
		return telemetry.OutcomeOK
	case IsSchemaError(err):
		return telemetry.OutcomeSchemaError
	default:
		return telemetry.OutcomeError
	}
}

func observe(capability string, start time.Time, err error) {
	telemetry.ObserveAgentCall(capability, callOutcome(err), start)
	if err == nil {
		return
	}
	entry := logger.Log.WithField("capability", capability)
	var se *SchemaError
	if errors.As(err, &se) && se.Raw != "" {
		raw := []rune(se.Raw)
		if len(raw) > maxLoggedRaw {
			raw = append(raw[:maxLoggedRaw], '…')
		}
		entry = entry.WithField("raw", string(raw))
	}
	entry.Warnf("代理调用失败 (耗时 %v): %v", time.Since(start).Round(time.Millisecond), err)
}

type instrumentedVision struct {
	next VisionAnalyzer
}

func (i instrumentedVision) AnalyzePlantImage(ctx context.Context, in VisionInput) (*VisionAnalysis, error) {
	start := time.Now()
	out, err := i.next.AnalyzePlantImage(ctx, in)
	observe("vision", start, err)
	return out, err
}

type instrumentedDiagnosis struct {
	next DiagnosisGenerator
}

func (i instrumentedDiagnosis) GenerateDiagnosis(ctx context.Context, in DiagnosisInput) (*AgentResponse, error) {
	start := time.Now()
	out, err := i.next.GenerateDiagnosis(ctx, in)
	observe("diagnosis", start, err)
	return out, err
}

// Instrument 为两个能力加上指标和日志
func Instrument(v VisionAnalyzer, d DiagnosisGenerator) (VisionAnalyzer, DiagnosisGenerator) {
	return instrumentedVision{next: v}, instrumentedDiagnosis{next: d}
}
