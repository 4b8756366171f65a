package dispatch

import (
	"context"
	"fmt"

	"AvisoBot/internal/models"

	"gorm.io/gorm"
)

// Journal 派发审计记录
type Journal interface {
	Record(ctx context.Context, entry *models.DispatchLog) error
}

// GormJournal 将派发记录写入数据库
type GormJournal struct {
	db *gorm.DB
}

func NewGormJournal(db *gorm.DB) (*GormJournal, error) {
	if err := db.AutoMigrate(&models.DispatchLog{}); err != nil {
		return nil, fmt.Errorf("migrate dispatch_logs: %w", err)
	}
	return &GormJournal{db: db}, nil
}

func (j *GormJournal) Record(ctx context.Context, entry *models.DispatchLog) error {
	return j.db.WithContext(ctx).Create(entry).Error
}

// Recent 返回最近的派发记录，limit<=0 时取 20 条
func (j *GormJournal) Recent(ctx context.Context, limit int) ([]models.DispatchLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 20
	}
	var logs []models.DispatchLog
	err := j.db.WithContext(ctx).Order("id desc").Limit(limit).Find(&logs).Error
	return logs, err
}

// ByReport 返回某份报告的全部派发尝试
func (j *GormJournal) ByReport(ctx context.Context, reportID string) ([]models.DispatchLog, error) {
	var logs []models.DispatchLog
	err := j.db.WithContext(ctx).Where("report_id = ?", reportID).Order("id asc").Find(&logs).Error
	return logs, err
}

type nopJournal struct{}

func (nopJournal) Record(context.Context, *models.DispatchLog) error { return nil }
