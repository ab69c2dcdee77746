package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// MaxSymptoms 是视觉分析返回的症状数量上限，多余的部分被截断
const MaxSymptoms = 6

// 推荐类型
const (
	RecommendationNonChemical      = "non_chemical"
	RecommendationActiveIngredient = "active_ingredient"
)

// 补充请求类型
const (
	RequestNeedMoreImages = "need_more_images"
	RequestSafeAction     = "safe_action"
	RequestMonitoring     = "monitoring"
	RequestEscalation     = "escalation"
)

// VisionAnalyzer 根据图片和用户备注给出初步的视觉分析
type VisionAnalyzer interface {
	AnalyzePlantImage(ctx context.Context, in VisionInput) (*VisionAnalysis, error)
}

// DiagnosisGenerator 根据确认过的症状生成诊断和建议
type DiagnosisGenerator interface {
	GenerateDiagnosis(ctx context.Context, in DiagnosisInput) (*AgentResponse, error)
}

// VisionInput 是视觉分析的输入
type VisionInput struct {
	ImagePath string
	Notes     string
	Country   string
}

// VisionAnalysis 是视觉分析的结果
type VisionAnalysis struct {
	PlantName       *string  `json:"plantName"`
	ProbableIssues  []string `json:"probableIssues"`
	Symptoms        []string `json:"symptoms"`
	Summary         string   `json:"summary"`
	Confidence      float64  `json:"confidence"`
	Recommendations []string `json:"recommendations"`
}

// Normalize 校验并整理视觉分析结果：置信度必须在[0,1]内，症状最多保留 MaxSymptoms 条。
func (v *VisionAnalysis) Normalize() error {
	if v.Confidence < 0 || v.Confidence > 1 {
		return fmt.Errorf("confidence 超出范围: %v", v.Confidence)
	}
	if strings.TrimSpace(v.Summary) == "" {
		return errors.New("summary 不能为空")
	}
	v.Symptoms = compact(v.Symptoms)
	if len(v.Symptoms) > MaxSymptoms {
		v.Symptoms = v.Symptoms[:MaxSymptoms]
	}
	if v.ProbableIssues == nil {
		v.ProbableIssues = []string{}
	}
	if v.Recommendations == nil {
		v.Recommendations = []string{}
	}
	return nil
}

// DiagnosisInput 是诊断生成的输入
type DiagnosisInput struct {
	ConfirmedSymptoms []string
	DeniedSymptoms    []string
	PlantName         string
	VisionConfidence  *float64
	UserNotes         string
	Country           string
	RegulationHint    string
	ImagePath         string
}

// Source 是一条外部参考资料
type Source struct {
	Title       string  `json:"title"`
	URL         string  `json:"url"`
	Source      string  `json:"source"`
	PublishedAt *string `json:"publishedAt"`
	Summary     string  `json:"summary"`
}

// Recommendation 是代理给出的处理建议，References 为 Sources 中从1开始的序号
type Recommendation struct {
	Type         string  `json:"type"`
	Title        string  `json:"title"`
	Instructions string  `json:"instructions"`
	Caution      *string `json:"caution"`
	References   []int   `json:"references"`
}

// ChecklistItem 对比AI检测和用户确认的结果
type ChecklistItem struct {
	Symptom       string  `json:"symptom"`
	AIDetected    bool    `json:"aiDetected"`
	UserConfirmed bool    `json:"userConfirmed"`
	Note          *string `json:"note"`
}

// AdditionalRequest 是代理希望用户补充的信息或采取的行动
type AdditionalRequest struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// DiagnosisResult 是主诊断
type DiagnosisResult struct {
	Issue      string  `json:"issue"`
	Confidence float64 `json:"confidence"`
	Summary    string  `json:"summary"`
	PlantPart  *string `json:"plantPart"`
}

// AgentResponse 是诊断代理的完整输出
type AgentResponse struct {
	Diagnosis          DiagnosisResult     `json:"diagnosis"`
	Checklist          []ChecklistItem     `json:"checklist"`
	Recommendations    []Recommendation    `json:"recommendations"`
	Sources            []Source            `json:"sources"`
	ConsensusScore     *float64            `json:"consensusScore"`
	AdditionalRequests []AdditionalRequest `json:"additionalRequests"`
	FollowUpQuestions  []string            `json:"followUpQuestions"`
}

// Validate 检查代理输出是否满足约定的结构
func (r *AgentResponse) Validate() error {
	if strings.TrimSpace(r.Diagnosis.Issue) == "" {
		return errors.New("diagnosis.issue 不能为空")
	}
	if r.Diagnosis.Confidence < 0 || r.Diagnosis.Confidence > 1 {
		return fmt.Errorf("diagnosis.confidence 超出范围: %v", r.Diagnosis.Confidence)
	}
	if r.ConsensusScore != nil && (*r.ConsensusScore < 0 || *r.ConsensusScore > 1) {
		return fmt.Errorf("consensusScore 超出范围: %v", *r.ConsensusScore)
	}
	for i, rec := range r.Recommendations {
		if rec.Type != RecommendationNonChemical && rec.Type != RecommendationActiveIngredient {
			return fmt.Errorf("recommendations[%d].type 无效: %q", i, rec.Type)
		}
		if rec.Title == "" {
			return fmt.Errorf("recommendations[%d].title 不能为空", i)
		}
	}
	for i, req := range r.AdditionalRequests {
		switch req.Type {
		case RequestNeedMoreImages, RequestSafeAction, RequestMonitoring, RequestEscalation:
		default:
			return fmt.Errorf("additionalRequests[%d].type 无效: %q", i, req.Type)
		}
	}
	for i, src := range r.Sources {
		if src.Title == "" || src.URL == "" {
			return fmt.Errorf("sources[%d] 缺少 title 或 url", i)
		}
	}
	return nil
}

func compact(items []string) []string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
