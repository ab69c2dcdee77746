package diagnosis

import (
	"time"

	"github.com/SlpAus/plantify-backend/internal/agent"
	"github.com/SlpAus/plantify-backend/internal/user"
	"github.com/SlpAus/plantify-backend/internal/vision"
)

// Diagnosis 是一次症状清单提交得到的诊断记录，创建后不再修改，只随扫描或用户级联删除。
type Diagnosis struct {
	ID     uint               `gorm:"primarykey"`
	UserID uint               `gorm:"index;not null"`
	User   user.User          `gorm:"constraint:OnDelete:CASCADE"`
	ScanID uint               `gorm:"index;not null"`
	Scan   vision.ScanSession `gorm:"constraint:OnDelete:CASCADE"`

	Issue          string `gorm:"size:255;index"`
	Summary        string `gorm:"type:text"`
	PlantPart      string `gorm:"size:120"`
	Confidence     float64
	ConsensusScore *float64

	Checklist          []agent.ChecklistItem     `gorm:"serializer:json;type:text"`
	Recommendations    []Recommendation          `gorm:"serializer:json;type:text"`
	Sources            []agent.Source            `gorm:"serializer:json;type:text"`
	AdditionalRequests []agent.AdditionalRequest `gorm:"serializer:json;type:text"`
	FollowUpQuestions  []string                  `gorm:"serializer:json;type:text"`

	CreatedAt time.Time `gorm:"index"`
}

// Recommendation 是保存下来的建议，Description 来自代理给出的 instructions
type Recommendation struct {
	Type        string  `json:"type"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Caution     *string `json:"caution"`
	References  []int   `json:"references"`
}

// ChecklistPayload 是提交症状清单的请求体
type ChecklistPayload struct {
	ScanID            uint     `json:"scanId" binding:"required"`
	ConfirmedSymptoms []string `json:"confirmedSymptoms"`
	DeniedSymptoms    []string `json:"deniedSymptoms"`
}

// DiagnosisSchema 是诊断详情的响应体
type DiagnosisSchema struct {
	ID                 uint                      `json:"id"`
	PlantName          *string                   `json:"plantName"`
	Issue              string                    `json:"issue"`
	Summary            *string                   `json:"summary"`
	PlantPart          *string                   `json:"plantPart"`
	Confidence         float64                   `json:"confidence"`
	ConsensusScore     *float64                  `json:"consensusScore"`
	Checklist          []agent.ChecklistItem     `json:"checklist"`
	Recommendations    []Recommendation          `json:"recommendations"`
	Sources            []agent.Source            `json:"sources"`
	AdditionalRequests []agent.AdditionalRequest `json:"additionalRequests"`
	FollowUpQuestions  []string                  `json:"followUpQuestions"`
	CreatedAt          string                    `json:"createdAt"`
}

// DiagnosisHistorySchema 是历史列表中的一项
type DiagnosisHistorySchema struct {
	ID         uint    `json:"id"`
	PlantName  *string `json:"plantName"`
	Issue      string  `json:"issue"`
	Confidence float64 `json:"confidence"`
	CreatedAt  string  `json:"createdAt"`
}
