package models

import (
	"strings"
	"time"
)

type UserID string

// Step 会话当前所处的收集步骤，严格线性推进
type Step int

const (
	StepAwaitUnit Step = iota
	StepAwaitMonth
	StepAwaitDay
	StepAwaitHour
	StepAwaitMinute
	StepAwaitEmergencyNumber
	StepAwaitAddress
	StepAwaitPatientName
	StepAwaitDocument
	StepAwaitAssistance
	StepAwaitDestination
	// StepComplete is never stored: a session reaching it is removed.
	StepComplete
)

var stepNames = [...]string{
	"AwaitUnit",
	"AwaitMonth",
	"AwaitDay",
	"AwaitHour",
	"AwaitMinute",
	"AwaitEmergencyNumber",
	"AwaitAddress",
	"AwaitPatientName",
	"AwaitDocument",
	"AwaitAssistance",
	"AwaitDestination",
	"Complete",
}

func (s Step) String() string {
	if s < 0 || int(s) >= len(stepNames) {
		return "Unknown"
	}
	return stepNames[s]
}

// Next 返回顺序中的下一个步骤
func (s Step) Next() Step {
	if s >= StepComplete {
		return StepComplete
	}
	return s + 1
}

// DateTimeLayout 合成后的事发时间展示格式
const DateTimeLayout = "02/01/2006 15:04"

// DraftReport 一次进行中的出车报告（aviso）
type DraftReport struct {
	ID string `json:"id"`

	Unit   string `json:"unit"`
	Year   int    `json:"year"`
	Month  int    `json:"month"`
	Day    int    `json:"day"`
	Hour   int    `json:"hour"`
	Minute int    `json:"minute"`

	// OccurredAt is set once the minute is recorded; zero until then.
	OccurredAt time.Time `json:"occurred_at"`

	EmergencyNumber string `json:"emergency_number"`
	Address         string `json:"address"`
	PatientName     string `json:"patient_name"`
	PatientDocument string `json:"patient_document"`
	Assistance      string `json:"assistance"`
	Destination     string `json:"destination"`
}

// ComposeOccurredAt derives the combined date-time from the recorded parts.
func (d *DraftReport) ComposeOccurredAt() {
	d.OccurredAt = time.Date(d.Year, time.Month(d.Month), d.Day, d.Hour, d.Minute, 0, 0, time.UTC)
}

// FormattedOccurredAt returns "" while the date-time is not yet composed.
func (d *DraftReport) FormattedOccurredAt() string {
	if d.OccurredAt.IsZero() {
		return ""
	}
	return d.OccurredAt.Format(DateTimeLayout)
}

// Complete reports whether every field has been recorded.
func (d *DraftReport) Complete() bool {
	if d.Unit == "" || d.OccurredAt.IsZero() {
		return false
	}
	for _, v := range []string{
		d.EmergencyNumber,
		d.Address,
		d.PatientName,
		d.PatientDocument,
		d.Assistance,
		d.Destination,
	} {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}

// Session 用户与其进行中报告的绑定，每个用户至多一个
type Session struct {
	UserID    UserID      `json:"user_id"`
	Step      Step        `json:"step"`
	Draft     DraftReport `json:"draft"`
	StartedAt time.Time   `json:"started_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Clone 返回独立副本；DraftReport 只含值类型字段，浅拷贝即可
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
