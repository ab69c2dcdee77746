package agent

import "context"

// Disabled 在未配置模型时使用：视觉分析失败后走默认清单，诊断请求返回400。
type Disabled struct{}

func (Disabled) AnalyzePlantImage(context.Context, VisionInput) (*VisionAnalysis, error) {
	return nil, ErrUnavailable
}

func (Disabled) GenerateDiagnosis(context.Context, DiagnosisInput) (*AgentResponse, error) {
	return nil, ErrUnavailable
}
