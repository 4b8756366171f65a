package dispatch

import (
	"strings"

	"AvisoBot/internal/models"
)

const missing = "—"

// Format 渲染发往协调中心的纯文本报告，缺失字段以 "—" 占位
func Format(d models.DraftReport) string {
	patient := orMissing(d.PatientName)
	if doc := strings.TrimSpace(d.PatientDocument); doc != "" {
		patient += " (" + doc + ")"
	} else {
		patient += " (" + missing + ")"
	}

	lines := []string{
		"🚨 AVISO RECIBIDO",
		"🚑 Unidad: " + orMissing(d.Unit),
		"📅 Fecha y hora: " + orMissing(d.FormattedOccurredAt()),
		"📞 Emergencia: " + orMissing(d.EmergencyNumber),
		"📍 Dirección: " + orMissing(d.Address),
		"👤 Paciente: " + patient,
		"💊 Asistencia: " + orMissing(d.Assistance),
		"🏥 Destino: " + orMissing(d.Destination),
	}
	if d.ID != "" {
		lines = append(lines, "🆔 Ref: "+d.ID)
	}
	return strings.Join(lines, "\n")
}

func orMissing(v string) string {
	if v = strings.TrimSpace(v); v == "" {
		return missing
	}
	return v
}
