package agent

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"golang.org/x/time/rate"
)

// chatModel 是 eino ChatModel 中本包用到的部分
type chatModel interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// LLMAgent 通过 OpenAI 兼容接口调用多模态模型，同时实现 VisionAnalyzer 和 DiagnosisGenerator。
// 每次调用前经过限流器，一次调用只请求一次，不做重试。
type LLMAgent struct {
	cm      chatModel
	limiter *rate.Limiter
	timeout time.Duration
}

// NewLLMAgent 创建代理。rpm<=0 时不限流。
func NewLLMAgent(cm chatModel, rpm, burst int, timeout time.Duration) *LLMAgent {
	limit := rate.Inf
	if rpm > 0 {
		limit = rate.Limit(float64(rpm) / 60.0)
	}
	if burst <= 0 {
		burst = 1
	}
	return &LLMAgent{cm: cm, limiter: rate.NewLimiter(limit, burst), timeout: timeout}
}

// imageDataURL 把本地图片编码为 data URL
func imageDataURL(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("读取图片失败: %w", err)
	}
	mime := http.DetectContentType(data)
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

func userMessage(text, imagePath string) (*schema.Message, error) {
	if imagePath == "" {
		return &schema.Message{Role: schema.User, Content: text}, nil
	}
	url, err := imageDataURL(imagePath)
	if err != nil {
		return nil, err
	}
	return &schema.Message{
		Role: schema.User,
		MultiContent: []schema.ChatMessagePart{
			{Type: schema.ChatMessagePartTypeText, Text: text},
			{Type: schema.ChatMessagePartTypeImageURL, ImageURL: &schema.ChatMessageImageURL{URL: url}},
		},
	}, nil
}

// complete 发送一次请求并把回复中的JSON解析到 out
func (a *LLMAgent) complete(ctx context.Context, system string, user *schema.Message, out any) error {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}
	if err := a.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("等待限流器失败: %w", err)
	}

	messages := []*schema.Message{
		{Role: schema.System, Content: system},
		user,
	}
	resp, err := a.cm.Generate(ctx, messages, model.WithTemperature(0.2))
	if err != nil {
		return fmt.Errorf("调用模型失败: %w", err)
	}

	raw := ExtractJSON(resp.Content)
	if raw == "" {
		return newSchemaError(resp.Content, fmt.Errorf("回复中没有JSON对象"))
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return newSchemaError(resp.Content, err)
	}
	return nil
}

// AnalyzePlantImage 实现 VisionAnalyzer
func (a *LLMAgent) AnalyzePlantImage(ctx context.Context, in VisionInput) (*VisionAnalysis, error) {
	msg, err := userMessage(buildVisionPrompt(in), in.ImagePath)
	if err != nil {
		return nil, err
	}
	var out VisionAnalysis
	if err := a.complete(ctx, visionSystemPrompt, msg, &out); err != nil {
		return nil, err
	}
	if err := out.Normalize(); err != nil {
		return nil, newSchemaError("", err)
	}
	return &out, nil
}

// GenerateDiagnosis 实现 DiagnosisGenerator
func (a *LLMAgent) GenerateDiagnosis(ctx context.Context, in DiagnosisInput) (*AgentResponse, error) {
	msg, err := userMessage(buildDiagnosisPrompt(in), in.ImagePath)
	if err != nil {
		return nil, err
	}
	var out AgentResponse
	if err := a.complete(ctx, diagnosisSystemPrompt, msg, &out); err != nil {
		return nil, err
	}
	if err := out.Validate(); err != nil {
		return nil, newSchemaError("", err)
	}
	return &out, nil
}
