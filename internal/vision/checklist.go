package vision

import "fmt"

// FallbackSummary 是视觉分析不可用时写入的摘要
const FallbackSummary = "Analisis otomatis tidak tersedia. Ikuti pengecekan manual terlebih dahulu."

const notePreviewRunes = 80

// DefaultChecklist 返回人工检查清单，有备注时追加一条查看备注的提示（备注最多保留80个字符）。
func DefaultChecklist(notes string) []string {
	checklist := []string{
		"Periksa adanya bercak pada daun bagian atas dan bawah",
		"Perhatikan kondisi media tanam (lembap / tergenang)",
		"Cari tanda hama di permukaan daun atau batang",
	}
	if notes != "" {
		runes := []rune(notes)
		preview := notes
		if len(runes) > notePreviewRunes {
			preview = string(runes[:notePreviewRunes]) + "…"
		}
		checklist = append(checklist, fmt.Sprintf("Tinjau catatan pengguna: %s", preview))
	}
	return checklist
}
