// Package menu builds the selectable option sets for the menu-driven steps.
// Every function is pure: the same input always renders the same menu.
package menu

import (
	"fmt"
	"time"

	"AvisoBot/internal/models"
)

const (
	FirstUnit = 5
	LastUnit  = 17

	unitsPerRow   = 4
	monthsPerRow  = 4
	daysPerRow    = 7
	hoursPerRow   = 6
	minutesPerRow = 6
)

// Choice is one selectable option: Value is the selection key, Label what the user sees.
type Choice struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// Menu is an ordered choice set presented in rows.
type Menu struct {
	Category models.Category `json:"category"`
	Rows     [][]Choice      `json:"rows"`
}

// Choices flattens the rows in presentation order.
func (m Menu) Choices() []Choice {
	var out []Choice
	for _, row := range m.Rows {
		out = append(out, row...)
	}
	return out
}

// Lookup returns the choice whose value is v, if the menu offers it.
func (m Menu) Lookup(v int) (Choice, bool) {
	for _, row := range m.Rows {
		for _, c := range row {
			if c.Value == v {
				return c, true
			}
		}
	}
	return Choice{}, false
}

func (m Menu) Len() int {
	n := 0
	for _, row := range m.Rows {
		n += len(row)
	}
	return n
}

var monthLabels = [12]string{"Ene", "Feb", "Mar", "Abr", "May", "Jun", "Jul", "Ago", "Sep", "Oct", "Nov", "Dic"}

var monthNames = [12]string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

// MonthName returns the full month name, or "" when month is out of 1..12.
func MonthName(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return monthNames[month-1]
}

// UnitCode renders the unit label for a unit number, e.g. 9 -> "A-9".
func UnitCode(n int) string {
	return fmt.Sprintf("A-%d", n)
}

func UnitOptions() Menu {
	choices := make([]Choice, 0, LastUnit-FirstUnit+1)
	for i := FirstUnit; i <= LastUnit; i++ {
		choices = append(choices, Choice{Label: UnitCode(i), Value: i})
	}
	return Menu{Category: models.CategoryUnit, Rows: chunk(choices, unitsPerRow)}
}

func MonthOptions() Menu {
	choices := make([]Choice, 0, len(monthLabels))
	for i, label := range monthLabels {
		choices = append(choices, Choice{Label: label, Value: i + 1})
	}
	return Menu{Category: models.CategoryMonth, Rows: chunk(choices, monthsPerRow)}
}

// DayOptions lists 1..DaysIn(year, month). An invalid month yields an empty menu.
func DayOptions(year, month int) Menu {
	n := DaysIn(year, month)
	choices := make([]Choice, 0, n)
	for d := 1; d <= n; d++ {
		choices = append(choices, Choice{Label: fmt.Sprintf("%d", d), Value: d})
	}
	return Menu{Category: models.CategoryDay, Rows: chunk(choices, daysPerRow)}
}

func HourOptions() Menu {
	return Menu{Category: models.CategoryHour, Rows: chunk(padded(24), hoursPerRow)}
}

func MinuteOptions() Menu {
	return Menu{Category: models.CategoryMinute, Rows: chunk(padded(60), minutesPerRow)}
}

// DaysIn returns the number of days of month in year under the proleptic
// Gregorian calendar, or 0 when month is out of 1..12.
func DaysIn(year, month int) int {
	if month < 1 || month > 12 {
		return 0
	}
	// day 0 of the following month normalizes to the last day of this one
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func padded(n int) []Choice {
	choices := make([]Choice, 0, n)
	for i := 0; i < n; i++ {
		choices = append(choices, Choice{Label: fmt.Sprintf("%02d", i), Value: i})
	}
	return choices
}

func chunk(choices []Choice, size int) [][]Choice {
	rows := make([][]Choice, 0, (len(choices)+size-1)/size)
	for i := 0; i < len(choices); i += size {
		end := i + size
		if end > len(choices) {
			end = len(choices)
		}
		rows = append(rows, choices[i:end])
	}
	return rows
}
