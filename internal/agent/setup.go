package agent

import (
	"context"
	"fmt"

	"github.com/SlpAus/plantify-backend/internal/platform/config"
	"github.com/SlpAus/plantify-backend/internal/platform/logger"
	"github.com/cloudwego/eino-ext/components/model/openai"
)

// New 根据配置构造两个代理能力，返回的实现已带指标。
func New(ctx context.Context, cfg config.AgentConfig) (VisionAnalyzer, DiagnosisGenerator, error) {
	if cfg.Provider != config.ProviderOpenAI {
		logger.Log.Warn("AI代理未启用：视觉分析将使用默认检查清单，诊断请求会失败。")
		v, d := Instrument(Disabled{}, Disabled{})
		return v, d, nil
	}

	cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
		Timeout: cfg.Timeout,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("LLM 初始化失败: %w", err)
	}
	logger.Log.Infof("AI代理已启用: model=%s", cfg.Model)

	a := NewLLMAgent(cm, cfg.RPM, cfg.Burst, cfg.Timeout)
	v, d := Instrument(a, a)
	return v, d, nil
}
