package dashboard

import (
	"fmt"
	"math"
)

// round1 保留一位小数，恰好为 .5 时取偶数（银行家舍入）
func round1(x float64) float64 {
	return math.RoundToEven(x*10) / 10
}

// RelativeDelta 返回 current 相对 previous 的百分比变化。
// 任一值缺失或 previous 为0时返回nil。
func RelativeDelta(current, previous *float64) *float64 {
	if current == nil || previous == nil || *previous == 0 {
		return nil
	}
	v := round1((*current - *previous) / *previous * 100)
	return &v
}

// PercentagePointDelta 返回两个百分比之间的差（百分点），任一值缺失时返回nil
func PercentagePointDelta(current, previous *float64) *float64 {
	if current == nil || previous == nil {
		return nil
	}
	v := round1(*current - *previous)
	return &v
}

// ToPercent 把 [0,1] 的比例换算为百分数
func ToPercent(fraction *float64) *float64 {
	if fraction == nil {
		return nil
	}
	v := round1(*fraction * 100)
	return &v
}

// FormatPercent 格式化百分数，nil 显示为 "0%"
func FormatPercent(v *float64) string {
	if v == nil {
		return "0%"
	}
	return fmt.Sprintf("%.1f%%", *v)
}

func count(n int64) *float64 {
	v := float64(n)
	return &v
}

// ratio 返回 part/total，total 为0时返回nil
func ratio(part, total int64) *float64 {
	if total == 0 {
		return nil
	}
	v := float64(part) / float64(total)
	return &v
}
