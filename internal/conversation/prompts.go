package conversation

import (
	"fmt"
	"time"

	"AvisoBot/internal/menu"
	"AvisoBot/internal/models"
)

const (
	welcomeText       = "👋 Bienvenido. Pulsa para crear un aviso:"
	emptyInputPrefix  = "⚠️ La respuesta no puede estar vacía."
	sentText          = "✅ Aviso enviado correctamente al centro de coordinación."
	cancelledText     = "❌ Aviso cancelado."
	noSessionText     = "ℹ️ No hay ningún aviso en curso."
	storeFailureText  = "⚠️ No se ha podido guardar la respuesta. Inténtalo de nuevo."
	dispatchFailedFmt = "⚠️ Error al enviar al centro de coordinación: %v\n\nLos datos del aviso se han conservado."
)

var (
	actionBegin    = models.Action{Label: "🚨 Enviar aviso", Trigger: models.EventBegin}
	actionBeginNew = models.Action{Label: "🚨 Enviar nuevo aviso", Trigger: models.EventBegin}
	actionRetry    = models.Action{Label: "🔁 Reintentar envío", Trigger: models.EventRetry}
	actionCancel   = models.Action{Label: "❌ Cancelar aviso", Trigger: models.EventCancel}
)

func unitPrompt(_ *models.DraftReport, _ time.Time) string {
	return "📟 Selecciona tu unidad:"
}

func monthPrompt(d *models.DraftReport, now time.Time) string {
	return fmt.Sprintf("🟩 Unidad: %s\n\n📅 Selecciona el mes (año %d):", d.Unit, now.Year())
}

func dayPrompt(d *models.DraftReport, _ time.Time) string {
	return fmt.Sprintf("📅 Mes seleccionado: %s %d\n\nSelecciona el día:", menu.MonthName(d.Month), d.Year)
}

func hourPrompt(d *models.DraftReport, _ time.Time) string {
	return fmt.Sprintf("📅 Día seleccionado: %d/%d/%d\n\n🕒 Selecciona la HORA (00-23):", d.Day, d.Month, d.Year)
}

func minutePrompt(d *models.DraftReport, _ time.Time) string {
	return fmt.Sprintf("🕒 Hora seleccionada: %02d\n\n⏱ Ahora selecciona los MINUTOS (00-59):", d.Hour)
}

func emergencyPrompt(d *models.DraftReport) string {
	return fmt.Sprintf("📅 Fecha y hora seleccionadas: %s\n\n📞 Ahora introduce el NÚMERO DE EMERGENCIA:", d.FormattedOccurredAt())
}

func fixedPrompt(text string) func(*models.DraftReport) string {
	return func(*models.DraftReport) string { return text }
}
