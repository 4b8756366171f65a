package menu

import (
	"testing"

	"AvisoBot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rowLens(m Menu) []int {
	out := make([]int, 0, len(m.Rows))
	for _, r := range m.Rows {
		out = append(out, len(r))
	}
	return out
}

func TestUnitOptions(t *testing.T) {
	m := UnitOptions()

	assert.Equal(t, models.CategoryUnit, m.Category)
	assert.Equal(t, 13, m.Len())
	assert.Equal(t, []int{4, 4, 4, 1}, rowLens(m))
	assert.Equal(t, Choice{Label: "A-5", Value: 5}, m.Choices()[0])
	assert.Equal(t, Choice{Label: "A-17", Value: 17}, m.Choices()[12])

	_, ok := m.Lookup(4)
	assert.False(t, ok)
	c, ok := m.Lookup(9)
	require.True(t, ok)
	assert.Equal(t, "A-9", c.Label)
}

func TestMonthOptions(t *testing.T) {
	m := MonthOptions()

	assert.Equal(t, []int{4, 4, 4}, rowLens(m))
	assert.Equal(t, Choice{Label: "Feb", Value: 2}, m.Choices()[1])
	assert.Equal(t, Choice{Label: "Dic", Value: 12}, m.Choices()[11])
	_, ok := m.Lookup(13)
	assert.False(t, ok)
	_, ok = m.Lookup(0)
	assert.False(t, ok)
}

func TestDayOptionsCounts(t *testing.T) {
	cases := []struct {
		year, month, days int
	}{
		{2024, 2, 29},
		{2023, 2, 28},
		{2000, 2, 29},
		{1900, 2, 28},
		{2100, 2, 28},
		{2024, 1, 31},
		{2024, 4, 30},
		{2024, 12, 31},
		{2024, 0, 0},
		{2024, 13, 0},
	}
	for _, tc := range cases {
		m := DayOptions(tc.year, tc.month)
		assert.Equal(t, tc.days, m.Len(), "%d-%02d", tc.year, tc.month)
	}
}

func TestDayOptionsEveryMonth(t *testing.T) {
	for year := 1999; year <= 2032; year++ {
		leap := year%4 == 0 && (year%100 != 0 || year%400 == 0)
		for month := 1; month <= 12; month++ {
			want := [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}[month-1]
			if month == 2 && leap {
				want = 29
			}
			m := DayOptions(year, month)
			require.Equal(t, want, m.Len(), "%d-%02d", year, month)
			assert.Equal(t, 1, m.Choices()[0].Value)
			assert.Equal(t, want, m.Choices()[want-1].Value)
		}
	}
}

func TestDayOptionsRows(t *testing.T) {
	assert.Equal(t, []int{7, 7, 7, 7, 1}, rowLens(DayOptions(2024, 2)))
	assert.Equal(t, []int{7, 7, 7, 7}, rowLens(DayOptions(2023, 2)))
}

func TestHourAndMinuteOptions(t *testing.T) {
	h := HourOptions()
	assert.Equal(t, []int{6, 6, 6, 6}, rowLens(h))
	assert.Equal(t, Choice{Label: "00", Value: 0}, h.Choices()[0])
	assert.Equal(t, Choice{Label: "23", Value: 23}, h.Choices()[23])
	_, ok := h.Lookup(24)
	assert.False(t, ok)

	m := MinuteOptions()
	assert.Equal(t, 10, len(m.Rows))
	assert.Equal(t, 60, m.Len())
	assert.Equal(t, Choice{Label: "05", Value: 5}, m.Choices()[5])
	_, ok = m.Lookup(60)
	assert.False(t, ok)
	_, ok = m.Lookup(-1)
	assert.False(t, ok)
}

func TestMenusAreDeterministic(t *testing.T) {
	assert.Equal(t, UnitOptions(), UnitOptions())
	assert.Equal(t, MonthOptions(), MonthOptions())
	assert.Equal(t, DayOptions(2024, 2), DayOptions(2024, 2))
	assert.Equal(t, HourOptions(), HourOptions())
	assert.Equal(t, MinuteOptions(), MinuteOptions())
}

func TestMonthName(t *testing.T) {
	assert.Equal(t, "Febrero", MonthName(2))
	assert.Equal(t, "", MonthName(0))
	assert.Equal(t, "", MonthName(13))
}
