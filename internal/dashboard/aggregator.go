package dashboard

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/SlpAus/plantify-backend/internal/community"
	"github.com/SlpAus/plantify-backend/internal/diagnosis"
	"gorm.io/gorm"
)

// 指标标签，顺序固定
const (
	LabelTotalDiagnosis    = "Total Diagnosis"
	LabelAverageConfidence = "Average Confidence"
	LabelTopIssue          = "Top Issue"
	LabelPositiveFeedback  = "Positive Feedback"

	// NoData 是没有任何诊断问题时 Top Issue 的值
	NoData = "Belum ada data"

	windowSize = 7 * 24 * time.Hour
)

// MetricSample 是仪表盘上的一项指标，Value 为数字或字符串
type MetricSample struct {
	Label string   `json:"label"`
	Value any      `json:"value"`
	Delta *float64 `json:"delta"`
}

// TimeWindow 是半开区间 [Start, End)
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// Windows 返回以 now 为终点的当前窗口和紧邻其前的上一窗口，各7天。
// 边界统一换算为UTC，与数据库中的 created_at 保持一致。
func Windows(now time.Time) (current, previous TimeWindow) {
	now = now.UTC()
	current = TimeWindow{Start: now.Add(-windowSize), End: now}
	previous = TimeWindow{Start: now.Add(-2 * windowSize), End: current.Start}
	return current, previous
}

// contains 判断 t 是否落在窗口内，与 scope 的SQL条件一致
func (w TimeWindow) contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// scope 把查询限制在窗口内
func (w TimeWindow) scope(db *gorm.DB) *gorm.DB {
	return db.Where("created_at >= ? AND created_at < ?", w.Start, w.End)
}

// Aggregator 每次请求都对诊断和帖子做完整的重新统计，不做缓存
type Aggregator struct {
	db *gorm.DB
}

func NewAggregator(db *gorm.DB) *Aggregator {
	return &Aggregator{db: db}
}

// ComputeMetrics 按固定顺序返回4项指标。没有数据时值退化为0、"0%"或 NoData，delta 为nil。
func (a *Aggregator) ComputeMetrics(ctx context.Context, now time.Time) ([]MetricSample, error) {
	db := a.db.WithContext(ctx)
	current, previous := Windows(now)

	steps := []func(*gorm.DB, TimeWindow, TimeWindow) (MetricSample, error){
		totalDiagnosis,
		averageConfidence,
		topIssue,
		positiveFeedback,
	}
	metrics := make([]MetricSample, 0, len(steps))
	for _, step := range steps {
		m, err := step(db, current, previous)
		if err != nil {
			return nil, err
		}
		metrics = append(metrics, m)
	}
	return metrics, nil
}

func countDiagnoses(db *gorm.DB, scopes ...func(*gorm.DB) *gorm.DB) (int64, error) {
	var n int64
	err := db.Model(&diagnosis.Diagnosis{}).Scopes(scopes...).Count(&n).Error
	return n, err
}

func totalDiagnosis(db *gorm.DB, current, previous TimeWindow) (MetricSample, error) {
	total, err := countDiagnoses(db)
	if err != nil {
		return MetricSample{}, fmt.Errorf("统计诊断总数失败: %w", err)
	}
	cur, err := countDiagnoses(db, current.scope)
	if err != nil {
		return MetricSample{}, fmt.Errorf("统计当前窗口诊断数失败: %w", err)
	}
	prev, err := countDiagnoses(db, previous.scope)
	if err != nil {
		return MetricSample{}, fmt.Errorf("统计上一窗口诊断数失败: %w", err)
	}
	return MetricSample{
		Label: LabelTotalDiagnosis,
		Value: total,
		Delta: RelativeDelta(count(cur), count(prev)),
	}, nil
}

// avgConfidence 返回平均置信度，没有记录时返回nil
func avgConfidence(db *gorm.DB, scopes ...func(*gorm.DB) *gorm.DB) (*float64, error) {
	var avg sql.NullFloat64
	row := db.Model(&diagnosis.Diagnosis{}).Scopes(scopes...).Select("AVG(confidence)").Row()
	if err := row.Scan(&avg); err != nil {
		return nil, err
	}
	if !avg.Valid {
		return nil, nil
	}
	return &avg.Float64, nil
}

func averageConfidence(db *gorm.DB, current, previous TimeWindow) (MetricSample, error) {
	overall, err := avgConfidence(db)
	if err != nil {
		return MetricSample{}, fmt.Errorf("统计平均置信度失败: %w", err)
	}
	cur, err := avgConfidence(db, current.scope)
	if err != nil {
		return MetricSample{}, fmt.Errorf("统计当前窗口置信度失败: %w", err)
	}
	prev, err := avgConfidence(db, previous.scope)
	if err != nil {
		return MetricSample{}, fmt.Errorf("统计上一窗口置信度失败: %w", err)
	}
	return MetricSample{
		Label: LabelAverageConfidence,
		Value: FormatPercent(ToPercent(overall)),
		Delta: PercentagePointDelta(ToPercent(cur), ToPercent(prev)),
	}, nil
}

func withIssue(db *gorm.DB) *gorm.DB {
	return db.Where("issue IS NOT NULL AND issue <> ''")
}

// topIssue 选出出现次数最多的问题，次数相同时取字典序最小的
func topIssue(db *gorm.DB, current, previous TimeWindow) (MetricSample, error) {
	var top struct {
		Issue string
		Total int64
	}
	res := db.Model(&diagnosis.Diagnosis{}).Scopes(withIssue).
		Select("issue, COUNT(*) AS total").
		Group("issue").
		Order("total DESC").Order("issue ASC").
		Limit(1).
		Scan(&top)
	if res.Error != nil {
		return MetricSample{}, fmt.Errorf("统计常见问题失败: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return MetricSample{Label: LabelTopIssue, Value: NoData}, nil
	}

	sameIssue := func(db *gorm.DB) *gorm.DB { return db.Where("issue = ?", top.Issue) }
	cur, err := countDiagnoses(db, sameIssue, current.scope)
	if err != nil {
		return MetricSample{}, fmt.Errorf("统计当前窗口问题数失败: %w", err)
	}
	prev, err := countDiagnoses(db, sameIssue, previous.scope)
	if err != nil {
		return MetricSample{}, fmt.Errorf("统计上一窗口问题数失败: %w", err)
	}
	return MetricSample{
		Label: LabelTopIssue,
		Value: fmt.Sprintf("%s (%d)", top.Issue, top.Total),
		Delta: RelativeDelta(count(cur), count(prev)),
	}, nil
}

// feedbackRatio 返回有点赞的帖子占比，没有帖子时返回nil
func feedbackRatio(db *gorm.DB, scopes ...func(*gorm.DB) *gorm.DB) (*float64, error) {
	var total, positive int64
	if err := db.Model(&community.Post{}).Scopes(scopes...).Count(&total).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&community.Post{}).Scopes(scopes...).Where("upvotes > 0").Count(&positive).Error; err != nil {
		return nil, err
	}
	return ratio(positive, total), nil
}

func positiveFeedback(db *gorm.DB, current, previous TimeWindow) (MetricSample, error) {
	overall, err := feedbackRatio(db)
	if err != nil {
		return MetricSample{}, fmt.Errorf("统计正面反馈失败: %w", err)
	}
	cur, err := feedbackRatio(db, current.scope)
	if err != nil {
		return MetricSample{}, fmt.Errorf("统计当前窗口反馈失败: %w", err)
	}
	prev, err := feedbackRatio(db, previous.scope)
	if err != nil {
		return MetricSample{}, fmt.Errorf("统计上一窗口反馈失败: %w", err)
	}
	return MetricSample{
		Label: LabelPositiveFeedback,
		Value: FormatPercent(ToPercent(overall)),
		Delta: PercentagePointDelta(ToPercent(cur), ToPercent(prev)),
	}, nil
}
