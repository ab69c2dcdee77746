package vision

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/SlpAus/plantify-backend/internal/agent"
	"github.com/SlpAus/plantify-backend/internal/platform/apperr"
	"github.com/SlpAus/plantify-backend/internal/platform/logger"
	"github.com/SlpAus/plantify-backend/internal/platform/media"
	"github.com/SlpAus/plantify-backend/internal/user"
	"gorm.io/gorm"
)

const scanDir = "scans"

// Service 实现扫描的创建、查看、修改和删除
type Service struct {
	db             *gorm.DB
	store          *media.Store
	analyzer       agent.VisionAnalyzer
	defaultCountry string
}

// NewService 创建扫描服务
func NewService(db *gorm.DB, store *media.Store, analyzer agent.VisionAnalyzer, defaultCountry string) *Service {
	if defaultCountry == "" {
		defaultCountry = "Indonesia"
	}
	return &Service{db: db, store: store, analyzer: analyzer, defaultCountry: defaultCountry}
}

// CreateScan 保存图片并创建扫描记录，然后调用视觉分析。
// 分析失败不会让请求失败：扫描仍被创建，清单退化为默认清单。
func (s *Service) CreateScan(ctx context.Context, p user.Principal, image io.Reader, notes, country string) (*ScanSession, error) {
	rel, err := s.store.SaveImage(scanDir, image)
	if err != nil {
		if errors.Is(err, media.ErrNotImage) {
			return nil, apperr.Validation("File harus berupa gambar.")
		}
		return nil, fmt.Errorf("保存图片失败: %w", err)
	}

	scan := &ScanSession{UserID: p.UserID, ImagePath: rel, Notes: notes, Checklist: []string{}}
	if err := s.db.WithContext(ctx).Create(scan).Error; err != nil {
		s.store.Remove(rel)
		return nil, fmt.Errorf("创建扫描记录失败: %w", err)
	}

	if country == "" {
		country = s.defaultCountry
	}
	analysis, err := s.analyzer.AnalyzePlantImage(ctx, agent.VisionInput{
		ImagePath: s.store.Abs(rel),
		Notes:     notes,
		Country:   country,
	})
	if err != nil {
		logger.Log.Warnf("扫描 %d 的视觉分析失败，使用默认清单: %v", scan.ID, err)
		analysis = nil
	}
	applyAnalysis(scan, analysis)

	err = s.db.WithContext(ctx).Model(scan).Select(
		"PlantName", "Checklist", "AnalysisSummary", "AnalysisConfidence", "VisionMetadata",
	).Updates(scan).Error
	if err != nil {
		return nil, fmt.Errorf("保存视觉分析结果失败: %w", err)
	}
	return scan, nil
}

func applyAnalysis(scan *ScanSession, analysis *agent.VisionAnalysis) {
	if analysis == nil {
		scan.Checklist = DefaultChecklist(scan.Notes)
		scan.AnalysisSummary = FallbackSummary
		scan.AnalysisConfidence = nil
		scan.VisionMetadata = nil
		return
	}

	scan.PlantName = ""
	if analysis.PlantName != nil {
		scan.PlantName = *analysis.PlantName
	}
	scan.Checklist = analysis.Symptoms
	if len(scan.Checklist) == 0 {
		scan.Checklist = DefaultChecklist(scan.Notes)
	}
	scan.AnalysisSummary = analysis.Summary
	confidence := analysis.Confidence
	scan.AnalysisConfidence = &confidence
	scan.VisionMetadata = analysis
}

// Get 读取调用者自己的扫描，不存在和不属于调用者都返回404
func (s *Service) Get(ctx context.Context, p user.Principal, id uint) (*ScanSession, error) {
	var scan ScanSession
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, p.UserID).First(&scan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Scan tidak ditemukan.")
		}
		return nil, fmt.Errorf("查询扫描失败: %w", err)
	}
	return &scan, nil
}

// Update 修改备注、植物名称或清单。清单只有在非空时才会覆盖。
func (s *Service) Update(ctx context.Context, p user.Principal, id uint, in UpdateInput) (*ScanSession, error) {
	scan, err := s.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if in.Notes != nil {
		scan.Notes = *in.Notes
	}
	if in.PlantName != nil {
		scan.PlantName = *in.PlantName
	}
	if in.Checklist != nil && len(*in.Checklist) > 0 {
		scan.Checklist = *in.Checklist
	}
	if err := s.db.WithContext(ctx).Save(scan).Error; err != nil {
		return nil, fmt.Errorf("更新扫描失败: %w", err)
	}
	return scan, nil
}

// Delete 删除扫描（级联删除其诊断）并移除图片文件
func (s *Service) Delete(ctx context.Context, p user.Principal, id uint) error {
	scan, err := s.Get(ctx, p, id)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(&ScanSession{}, scan.ID).Error; err != nil {
		return fmt.Errorf("删除扫描失败: %w", err)
	}
	s.store.Remove(scan.ImagePath)
	return nil
}

// ImagePathsOwnedBy 返回用户所有扫描的图片路径，供删除账号时清理文件
func ImagePathsOwnedBy(tx *gorm.DB, userID uint) ([]string, error) {
	var paths []string
	err := tx.Model(&ScanSession{}).Where("user_id = ? AND image_path <> ''", userID).Pluck("image_path", &paths).Error
	return paths, err
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// ToResponse 把扫描转换为响应体，baseURL 为 scheme://host，用于生成预览图的绝对地址
func (s *Service) ToResponse(scan *ScanSession, baseURL string) ScanResponse {
	resp := ScanResponse{
		ScanID:          strconv.FormatUint(uint64(scan.ID), 10),
		Checklist:       scan.Checklist,
		Notes:           optional(scan.Notes),
		PlantName:       optional(scan.PlantName),
		AnalysisSummary: optional(scan.AnalysisSummary),
		Confidence:      scan.AnalysisConfidence,
	}
	if resp.Checklist == nil {
		resp.Checklist = []string{}
	}
	if scan.ImagePath != "" {
		url := baseURL + s.store.URL(scan.ImagePath)
		resp.PreviewURL = &url
	}
	if scan.VisionMetadata != nil {
		resp.SuggestedIssues = scan.VisionMetadata.ProbableIssues
	}
	return resp
}
