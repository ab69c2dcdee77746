package agent

import (
	"fmt"
	"strings"
)

const visionSystemPrompt = `Anda adalah asisten visual kesehatan tanaman untuk aplikasi Plantify.
Aturan:
- Nilai kondisi tanaman hanya dari gambar dan catatan pengguna.
- Jangan memberi saran medis untuk manusia.
- Bila tidak yakin, turunkan confidence dan sebutkan ketidakpastiannya di summary.
- Tulis dalam bahasa Indonesia.
- Balas HANYA dengan satu objek JSON, tanpa teks lain.`

const visionSchemaHint = `Format JSON:
{
  "plantName": "nama tanaman atau null",
  "probableIssues": ["nama penyakit/hama yang mungkin"],
  "symptoms": ["gejala singkat yang terlihat, maksimal 6"],
  "summary": "ringkasan maksimal 2 kalimat",
  "confidence": 0.0,
  "recommendations": ["tindak lanjut singkat"]
}
confidence adalah angka 0 sampai 1.`

const diagnosisSystemPrompt = `Anda adalah agen bukti pertanian untuk aplikasi Plantify.
Aturan:
- Dasarkan diagnosis pada sumber kredibel (lembaga riset pertanian, FAO, penyuluhan universitas, jurnal ilmiah).
- Setiap rekomendasi mencantumkan minimal satu nomor sumber pada references (dimulai dari 1).
- Urutkan rekomendasi non-kimia sebelum bahan aktif, maksimal 3 bahan aktif.
- Sertakan peringatan regulasi untuk bahan aktif sesuai negara pengguna.
- Bila bukti lemah, turunkan confidence dan isi additionalRequests atau followUpQuestions.
- Bila risiko gagal panen besar, tambahkan additionalRequests bertipe "escalation".
- Jangan memberi saran medis untuk manusia.
- Balas HANYA dengan satu objek JSON, tanpa teks lain.`

const diagnosisSchemaHint = `Format JSON:
{
  "diagnosis": {"issue": "", "confidence": 0.0, "summary": "", "plantPart": null},
  "checklist": [{"symptom": "", "aiDetected": true, "userConfirmed": true, "note": null}],
  "recommendations": [{"type": "non_chemical|active_ingredient", "title": "", "instructions": "", "caution": null, "references": [1]}],
  "sources": [{"title": "", "url": "", "source": "", "publishedAt": null, "summary": ""}],
  "consensusScore": 0.0,
  "additionalRequests": [{"type": "need_more_images|safe_action|monitoring|escalation", "message": ""}],
  "followUpQuestions": [""]
}
consensusScore = jumlah sumber yang mendukung rekomendasi utama / total sumber.`

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func bulletList(items []string) string {
	if len(items) == 0 {
		return "- (tidak ada)"
	}
	var sb strings.Builder
	for i, item := range items {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString("- ")
		sb.WriteString(item)
	}
	return sb.String()
}

func buildVisionPrompt(in VisionInput) string {
	return fmt.Sprintf("Catatan pengguna: %s\nLokasi/negara: %s\n\n%s",
		orDefault(in.Notes, "(tidak ada)"), orDefault(in.Country, "Indonesia"), visionSchemaHint)
}

func buildDiagnosisPrompt(in DiagnosisInput) string {
	confidence := "Tidak tersedia"
	if in.VisionConfidence != nil {
		confidence = fmt.Sprintf("%.2f", *in.VisionConfidence)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Gejala dikonfirmasi pengguna:\n%s\n\n", bulletList(in.ConfirmedSymptoms))
	fmt.Fprintf(&sb, "Gejala ditolak pengguna:\n%s\n\n", bulletList(in.DeniedSymptoms))
	fmt.Fprintf(&sb, "Hasil analisis visual:\n- Tanaman: %s\n- Confidence visual: %s\n- Catatan pengguna: %s\n\n",
		orDefault(in.PlantName, "Tidak diketahui"), confidence, orDefault(in.UserNotes, "(tidak ada catatan tambahan)"))
	fmt.Fprintf(&sb, "Negara pengguna: %s\nCatatan regulasi bahan aktif: %s\n\n",
		orDefault(in.Country, "Indonesia"), orDefault(in.RegulationHint, "Cek regulasi lokal."))
	sb.WriteString(diagnosisSchemaHint)
	return sb.String()
}
