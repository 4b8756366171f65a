package models

import "time"

const (
	DispatchStatusSent      = "sent"
	DispatchStatusFailed    = "failed"
	DispatchStatusDuplicate = "duplicate"
)

// DispatchLog 每次向协调中心提交的记录（审计用，不保存会话）
type DispatchLog struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ReportID    string    `gorm:"size:64;index;not null" json:"report_id"`
	UserID      string    `gorm:"size:128;index;not null" json:"user_id"`
	Unit        string    `gorm:"size:16" json:"unit"`
	Destination string    `gorm:"size:128" json:"destination"`
	Status      string    `gorm:"size:16;index" json:"status"`
	Error       string    `gorm:"size:512" json:"error,omitempty"`
	DurationMs  int64     `json:"duration_ms"`
	CreatedAt   time.Time `json:"created_at"`
}
