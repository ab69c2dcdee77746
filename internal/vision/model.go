package vision

import (
	"time"

	"github.com/SlpAus/plantify-backend/internal/agent"
	"github.com/SlpAus/plantify-backend/internal/user"
)

// ScanSession 是一次图片上传及其视觉分析结果。
// Checklist 在提交症状清单时被用户确认的症状覆盖。
type ScanSession struct {
	ID     uint      `gorm:"primarykey"`
	UserID uint      `gorm:"index;not null"`
	User   user.User `gorm:"constraint:OnDelete:CASCADE"`

	ImagePath string   `gorm:"size:255"`
	Notes     string   `gorm:"type:text"`
	Checklist []string `gorm:"serializer:json;type:text"`

	PlantName          string `gorm:"size:120"`
	AnalysisSummary    string `gorm:"type:text"`
	AnalysisConfidence *float64
	VisionMetadata     *agent.VisionAnalysis `gorm:"serializer:json;type:text"`

	CreatedAt time.Time
}

// ScanResponse 是扫描接口的响应体
type ScanResponse struct {
	ScanID          string   `json:"scanId"`
	Checklist       []string `json:"checklist"`
	PreviewURL      *string  `json:"previewUrl"`
	Notes           *string  `json:"notes"`
	PlantName       *string  `json:"plantName"`
	AnalysisSummary *string  `json:"analysisSummary"`
	Confidence      *float64 `json:"confidence"`
	SuggestedIssues []string `json:"suggestedIssues"`
}

// UpdateInput 是 PATCH 的可选字段，nil 表示未提供
type UpdateInput struct {
	Notes     *string   `json:"notes"`
	PlantName *string   `json:"plantName"`
	Checklist *[]string `json:"checklist"`
}
