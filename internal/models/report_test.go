package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullDraft() DraftReport {
	d := DraftReport{
		ID:              "r-1",
		Unit:            "A-9",
		Year:            2024,
		Month:           2,
		Day:             29,
		Hour:            14,
		Minute:          30,
		EmergencyNumber: "112-55",
		Address:         "Calle Mayor 3",
		PatientName:     "Juan Pérez",
		PatientDocument: "12345678A",
		Assistance:      "RCP básica",
		Destination:     "Hospital Clínico",
	}
	d.ComposeOccurredAt()
	return d
}

func TestStepOrder(t *testing.T) {
	order := []Step{
		StepAwaitUnit, StepAwaitMonth, StepAwaitDay, StepAwaitHour, StepAwaitMinute,
		StepAwaitEmergencyNumber, StepAwaitAddress, StepAwaitPatientName,
		StepAwaitDocument, StepAwaitAssistance, StepAwaitDestination, StepComplete,
	}
	for i := 0; i < len(order)-1; i++ {
		assert.Equal(t, order[i+1], order[i].Next(), order[i].String())
	}
	assert.Equal(t, StepComplete, StepComplete.Next())
	assert.Equal(t, "AwaitDestination", StepAwaitDestination.String())
	assert.Equal(t, "Unknown", Step(99).String())
}

func TestComposeOccurredAt(t *testing.T) {
	d := fullDraft()
	assert.Equal(t, time.Date(2024, 2, 29, 14, 30, 0, 0, time.UTC), d.OccurredAt)
	assert.Equal(t, "29/02/2024 14:30", d.FormattedOccurredAt())

	var empty DraftReport
	assert.Equal(t, "", empty.FormattedOccurredAt())
}

func TestComplete(t *testing.T) {
	d := fullDraft()
	assert.True(t, d.Complete())

	d.Destination = "   "
	assert.False(t, d.Complete())

	d = fullDraft()
	d.OccurredAt = time.Time{}
	assert.False(t, d.Complete())
}

func TestSessionCloneIsIndependent(t *testing.T) {
	s := &Session{UserID: "u1", Step: StepAwaitAddress, Draft: fullDraft()}
	c := s.Clone()
	c.Draft.Address = "otra"
	c.Step = StepAwaitPatientName

	assert.Equal(t, "Calle Mayor 3", s.Draft.Address)
	assert.Equal(t, StepAwaitAddress, s.Step)
	assert.Nil(t, (*Session)(nil).Clone())
}

func TestSessionJSONRoundTrip(t *testing.T) {
	s := &Session{UserID: "u1", Step: StepAwaitDestination, Draft: fullDraft(), StartedAt: time.Unix(100, 0).UTC()}
	raw, err := json.Marshal(s)
	require.NoError(t, err)

	var back Session
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, s.Draft, back.Draft)
	assert.Equal(t, s.Step, back.Step)
	assert.True(t, s.StartedAt.Equal(back.StartedAt))
}

func TestEventConstructors(t *testing.T) {
	ev := MenuSelection("u1", CategoryDay, 29)
	assert.Equal(t, EventSelection, ev.Kind)
	assert.Equal(t, Selection{Category: CategoryDay, Value: 29}, ev.Selection)
	assert.Equal(t, "select", ev.Kind.String())
	assert.Equal(t, "text", TextSubmitted("u1", "x").Kind.String())
	assert.Equal(t, "unknown", EventKind(0).String())
}
