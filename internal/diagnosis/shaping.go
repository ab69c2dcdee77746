package diagnosis

import (
	"sort"

	"github.com/SlpAus/plantify-backend/internal/agent"
)

// RankRecommendations 把非化学建议排在前面，同组内保持代理给出的顺序。
func RankRecommendations(recs []agent.Recommendation) []Recommendation {
	out := make([]Recommendation, 0, len(recs))
	for _, r := range recs {
		refs := r.References
		if refs == nil {
			refs = []int{}
		}
		out = append(out, Recommendation{
			Type:        r.Type,
			Title:       r.Title,
			Description: r.Instructions,
			Caution:     r.Caution,
			References:  refs,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Type == agent.RecommendationNonChemical && out[j].Type != agent.RecommendationNonChemical
	})
	return out
}

// ConsensusScore 返回支持主要建议的来源占比。
// 代理给出了分数时直接使用；否则按主要建议（排序后的第一条）引用的不同有效来源数除以来源总数计算。
// 没有来源或没有建议时返回nil。
func ConsensusScore(reported *float64, ranked []Recommendation, sourceCount int) *float64 {
	if reported != nil {
		v := *reported
		return &v
	}
	if sourceCount == 0 || len(ranked) == 0 {
		return nil
	}

	seen := make(map[int]struct{})
	for _, ref := range ranked[0].References {
		if ref >= 1 && ref <= sourceCount {
			seen[ref] = struct{}{}
		}
	}
	v := float64(len(seen)) / float64(sourceCount)
	return &v
}

func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

// buildDiagnosis 把代理的输出整理为待保存的记录
func buildDiagnosis(userID, scanID uint, resp *agent.AgentResponse) *Diagnosis {
	ranked := RankRecommendations(resp.Recommendations)
	plantPart := ""
	if resp.Diagnosis.PlantPart != nil {
		plantPart = *resp.Diagnosis.PlantPart
	}
	return &Diagnosis{
		UserID:             userID,
		ScanID:             scanID,
		Issue:              resp.Diagnosis.Issue,
		Summary:            resp.Diagnosis.Summary,
		PlantPart:          plantPart,
		Confidence:         resp.Diagnosis.Confidence,
		ConsensusScore:     ConsensusScore(resp.ConsensusScore, ranked, len(resp.Sources)),
		Checklist:          orEmpty(resp.Checklist),
		Recommendations:    ranked,
		Sources:            orEmpty(resp.Sources),
		AdditionalRequests: orEmpty(resp.AdditionalRequests),
		FollowUpQuestions:  orEmpty(resp.FollowUpQuestions),
	}
}
