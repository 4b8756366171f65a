package conversation

import (
	"context"
	"testing"

	"AvisoBot/internal/models"
	"AvisoBot/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validSelection 与 fillTo 使用相同的取值
var validSelection = map[models.Step]models.Selection{
	models.StepAwaitUnit:   {Category: models.CategoryUnit, Value: 9},
	models.StepAwaitMonth:  {Category: models.CategoryMonth, Value: 2},
	models.StepAwaitDay:    {Category: models.CategoryDay, Value: 29},
	models.StepAwaitHour:   {Category: models.CategoryHour, Value: 14},
	models.StepAwaitMinute: {Category: models.CategoryMinute, Value: 30},
}

func wrongCategory(step models.Step) models.Category {
	if step == models.StepAwaitUnit {
		return models.CategoryMonth
	}
	return models.CategoryUnit
}

type expectation struct {
	code    int
	step    models.Step
	removed bool
}

func TestEveryStepHandlesEveryEvent(t *testing.T) {
	const uid = models.UserID("u1")
	events := []struct {
		name   string
		build  func(step models.Step) models.Event
		expect func(step models.Step) expectation
	}{
		{
			name:   "start",
			build:  func(models.Step) models.Event { return models.Start(uid) },
			expect: func(s models.Step) expectation { return expectation{step: s} },
		},
		{
			name:   "begin",
			build:  func(models.Step) models.Event { return models.BeginRequested(uid) },
			expect: func(models.Step) expectation { return expectation{step: models.StepAwaitUnit} },
		},
		{
			name: "valid selection",
			build: func(s models.Step) models.Event {
				sel, ok := validSelection[s]
				if !ok {
					sel = validSelection[models.StepAwaitUnit]
				}
				return models.MenuSelection(uid, sel.Category, sel.Value)
			},
			expect: func(s models.Step) expectation {
				if _, ok := selectSteps[s]; ok {
					return expectation{step: s.Next()}
				}
				return expectation{code: CodeInvalidSelection, step: s}
			},
		},
		{
			name: "wrong category",
			build: func(s models.Step) models.Event {
				return models.MenuSelection(uid, wrongCategory(s), 9)
			},
			expect: func(s models.Step) expectation { return expectation{code: CodeInvalidSelection, step: s} },
		},
		{
			name:  "text",
			build: func(models.Step) models.Event { return models.TextSubmitted(uid, "Hospital Clínico") },
			expect: func(s models.Step) expectation {
				switch {
				case s == models.StepAwaitDestination:
					return expectation{removed: true}
				case textSteps[s].apply != nil:
					return expectation{step: s.Next()}
				}
				return expectation{code: CodeInvalidSelection, step: s}
			},
		},
		{
			name:  "blank text",
			build: func(models.Step) models.Event { return models.TextSubmitted(uid, "  ") },
			expect: func(s models.Step) expectation {
				if _, ok := textSteps[s]; ok {
					return expectation{code: CodeEmptyInput, step: s}
				}
				return expectation{code: CodeInvalidSelection, step: s}
			},
		},
		{
			name:   "cancel",
			build:  func(models.Step) models.Event { return models.CancelRequested(uid) },
			expect: func(models.Step) expectation { return expectation{removed: true} },
		},
		{
			name:  "retry",
			build: func(models.Step) models.Event { return models.RetryRequested(uid) },
			// a draft that never reached dispatch has nothing to retry
			expect: func(s models.Step) expectation { return expectation{code: CodeInvalidSelection, step: s} },
		},
	}

	for step := models.StepAwaitUnit; step <= models.StepAwaitDestination; step++ {
		for _, ev := range events {
			t.Run(step.String()+"/"+ev.name, func(t *testing.T) {
				f := newFixture(t)
				fillTo(t, f, uid, step)
				want := ev.expect(step)

				rec := &Recorder{}
				err := f.machine.Handle(context.Background(), ev.build(step), rec)
				assert.Equal(t, want.code, errors.GetCode(err), "err: %v", err)

				s, found := f.session(t, uid)
				if want.removed {
					assert.False(t, found)
					return
				}
				require.True(t, found)
				assert.Equal(t, want.step, s.Step)
			})
		}
	}
}

func TestEveryStepHasAPresentation(t *testing.T) {
	for step := models.StepAwaitUnit; step <= models.StepAwaitDestination; step++ {
		_, isSelect := selectSteps[step]
		_, isText := textSteps[step]
		assert.True(t, isSelect != isText, step.String())
	}
	_, ok := selectSteps[models.StepComplete]
	assert.False(t, ok)
	_, ok = textSteps[models.StepComplete]
	assert.False(t, ok)
}
