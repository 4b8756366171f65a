package conversation

import (
	"time"

	"AvisoBot/internal/menu"
	"AvisoBot/internal/models"
)

// selectStep 菜单步骤：类别、菜单构造、提示语与写入
type selectStep struct {
	category models.Category
	options  func(d *models.DraftReport) menu.Menu
	prompt   func(d *models.DraftReport, now time.Time) string
	apply    func(d *models.DraftReport, c menu.Choice, now time.Time)
}

// textStep 文本步骤：提示语与写入（文本已去除首尾空白且非空）
type textStep struct {
	prompt func(d *models.DraftReport) string
	apply  func(d *models.DraftReport, text string)
}

func static(m func() menu.Menu) func(*models.DraftReport) menu.Menu {
	return func(*models.DraftReport) menu.Menu { return m() }
}

var selectSteps = map[models.Step]selectStep{
	models.StepAwaitUnit: {
		category: models.CategoryUnit,
		options:  static(menu.UnitOptions),
		prompt:   unitPrompt,
		apply:    func(d *models.DraftReport, c menu.Choice, _ time.Time) { d.Unit = c.Label },
	},
	models.StepAwaitMonth: {
		category: models.CategoryMonth,
		options:  static(menu.MonthOptions),
		prompt:   monthPrompt,
		apply: func(d *models.DraftReport, c menu.Choice, now time.Time) {
			d.Year = now.Year()
			d.Month = c.Value
		},
	},
	models.StepAwaitDay: {
		category: models.CategoryDay,
		options:  func(d *models.DraftReport) menu.Menu { return menu.DayOptions(d.Year, d.Month) },
		prompt:   dayPrompt,
		apply:    func(d *models.DraftReport, c menu.Choice, _ time.Time) { d.Day = c.Value },
	},
	models.StepAwaitHour: {
		category: models.CategoryHour,
		options:  static(menu.HourOptions),
		prompt:   hourPrompt,
		apply:    func(d *models.DraftReport, c menu.Choice, _ time.Time) { d.Hour = c.Value },
	},
	models.StepAwaitMinute: {
		category: models.CategoryMinute,
		options:  static(menu.MinuteOptions),
		prompt:   minutePrompt,
		apply: func(d *models.DraftReport, c menu.Choice, _ time.Time) {
			d.Minute = c.Value
			d.ComposeOccurredAt()
		},
	},
}

var textSteps = map[models.Step]textStep{
	models.StepAwaitEmergencyNumber: {
		prompt: emergencyPrompt,
		apply:  func(d *models.DraftReport, s string) { d.EmergencyNumber = s },
	},
	models.StepAwaitAddress: {
		prompt: fixedPrompt("📍 Introduce la DIRECCIÓN del aviso:"),
		apply:  func(d *models.DraftReport, s string) { d.Address = s },
	},
	models.StepAwaitPatientName: {
		prompt: fixedPrompt("👤 Nombre y apellidos del paciente:"),
		apply:  func(d *models.DraftReport, s string) { d.PatientName = s },
	},
	models.StepAwaitDocument: {
		prompt: fixedPrompt("🪪 Documento (SIP o DNI):"),
		apply:  func(d *models.DraftReport, s string) { d.PatientDocument = s },
	},
	models.StepAwaitAssistance: {
		prompt: fixedPrompt("💊 Describe brevemente la ASISTENCIA realizada:"),
		apply:  func(d *models.DraftReport, s string) { d.Assistance = s },
	},
	models.StepAwaitDestination: {
		prompt: fixedPrompt("🏥 Introduce el DESTINO del paciente:"),
		apply:  func(d *models.DraftReport, s string) { d.Destination = s },
	},
}
