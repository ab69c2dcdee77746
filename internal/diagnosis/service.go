package diagnosis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SlpAus/plantify-backend/internal/agent"
	"github.com/SlpAus/plantify-backend/internal/platform/apperr"
	"github.com/SlpAus/plantify-backend/internal/platform/logger"
	"github.com/SlpAus/plantify-backend/internal/platform/media"
	"github.com/SlpAus/plantify-backend/internal/platform/quota"
	"github.com/SlpAus/plantify-backend/internal/user"
	"github.com/SlpAus/plantify-backend/internal/vision"
	"gorm.io/gorm"
)

// Options 是诊断请求附带给代理的地区信息
type Options struct {
	Country        string
	RegulationHint string
}

// Service 实现症状清单提交和诊断的查看、删除
type Service struct {
	db        *gorm.DB
	scans     *vision.Service
	store     *media.Store
	generator agent.DiagnosisGenerator
	limiter   *quota.Limiter
	opts      Options
	now       func() time.Time
}

// NewService 创建诊断服务，limiter 可以为nil
func NewService(db *gorm.DB, scans *vision.Service, store *media.Store, generator agent.DiagnosisGenerator, limiter *quota.Limiter, opts Options) *Service {
	return &Service{
		db:        db,
		scans:     scans,
		store:     store,
		generator: generator,
		limiter:   limiter,
		opts:      opts,
		now:       time.Now,
	}
}

// SubmitChecklist 调用诊断代理并保存结果，返回新诊断的ID。
// 扫描不属于调用者时返回404；代理失败或输出不合法时返回400。
func (s *Service) SubmitChecklist(ctx context.Context, p user.Principal, payload ChecklistPayload) (uint, error) {
	scan, err := s.scans.Get(ctx, p, payload.ScanID)
	if err != nil {
		return 0, err
	}

	comp, err := s.limiter.Reserve(ctx, p.UserID, s.now())
	if err != nil {
		return 0, err
	}
	defer comp.RollbackUnlessCommitted()

	input := agent.DiagnosisInput{
		ConfirmedSymptoms: payload.ConfirmedSymptoms,
		DeniedSymptoms:    payload.DeniedSymptoms,
		PlantName:         scan.PlantName,
		VisionConfidence:  scan.AnalysisConfidence,
		UserNotes:         scan.Notes,
		Country:           s.opts.Country,
		RegulationHint:    s.opts.RegulationHint,
	}
	if scan.ImagePath != "" {
		input.ImagePath = s.store.Abs(scan.ImagePath)
	}

	resp, err := s.generator.GenerateDiagnosis(ctx, input)
	if err == nil && resp == nil {
		err = agent.ErrUnavailable
	}
	if err == nil {
		err = resp.Validate()
	}
	if err != nil {
		return 0, apperr.ValidationWrap(fmt.Sprintf("Agen AI gagal memproses: %v", err), err)
	}
	comp.Commit()

	id, err := PersistDiagnosis(ctx, s.db, scan, payload.ConfirmedSymptoms, resp)
	if err != nil {
		return 0, err
	}
	logger.Log.Infof("诊断已创建: id=%d, scan=%d, issue=%q", id, scan.ID, resp.Diagnosis.Issue)
	return id, nil
}

func (s *Service) load(ctx context.Context, p user.Principal, id uint) (*Diagnosis, error) {
	var d Diagnosis
	err := s.db.WithContext(ctx).Preload("Scan").Where("id = ? AND user_id = ?", id, p.UserID).First(&d).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Diagnosis tidak ditemukan.")
		}
		return nil, fmt.Errorf("查询诊断失败: %w", err)
	}
	return &d, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

// Get 返回调用者自己的诊断详情
func (s *Service) Get(ctx context.Context, p user.Principal, id uint) (*DiagnosisSchema, error) {
	d, err := s.load(ctx, p, id)
	if err != nil {
		return nil, err
	}
	return &DiagnosisSchema{
		ID:                 d.ID,
		PlantName:          optional(d.Scan.PlantName),
		Issue:              d.Issue,
		Summary:            optional(d.Summary),
		PlantPart:          optional(d.PlantPart),
		Confidence:         d.Confidence,
		ConsensusScore:     d.ConsensusScore,
		Checklist:          orEmpty(d.Checklist),
		Recommendations:    orEmpty(d.Recommendations),
		Sources:            orEmpty(d.Sources),
		AdditionalRequests: orEmpty(d.AdditionalRequests),
		FollowUpQuestions:  orEmpty(d.FollowUpQuestions),
		CreatedAt:          formatTime(d.CreatedAt),
	}, nil
}

// List 按时间倒序返回调用者的诊断历史
func (s *Service) List(ctx context.Context, p user.Principal) ([]DiagnosisHistorySchema, error) {
	var items []Diagnosis
	err := s.db.WithContext(ctx).Preload("Scan").
		Where("user_id = ?", p.UserID).
		Order("created_at DESC").Order("id DESC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("查询诊断历史失败: %w", err)
	}

	out := make([]DiagnosisHistorySchema, 0, len(items))
	for _, d := range items {
		out = append(out, DiagnosisHistorySchema{
			ID:         d.ID,
			PlantName:  optional(d.Scan.PlantName),
			Issue:      d.Issue,
			Confidence: d.Confidence,
			CreatedAt:  formatTime(d.CreatedAt),
		})
	}
	return out, nil
}

// Delete 删除诊断及其扫描（扫描下的其他诊断随之级联删除），并移除扫描图片。
func (s *Service) Delete(ctx context.Context, p user.Principal, id uint) error {
	d, err := s.load(ctx, p, id)
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&Diagnosis{}, d.ID).Error; err != nil {
			return err
		}
		return tx.Delete(&vision.ScanSession{}, d.ScanID).Error
	})
	if err != nil {
		return fmt.Errorf("删除诊断失败: %w", err)
	}
	s.store.Remove(d.Scan.ImagePath)
	return nil
}
