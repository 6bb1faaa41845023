package service

import (
	"context"
	"encoding/json"
	"time"

	"employee-management-system/internal/model"

	"gorm.io/gorm"
)

// AuditLog persists OperationLog rows for roster changes.
type AuditLog struct {
	db  *gorm.DB
	now func() time.Time
}

func NewAuditLog(db *gorm.DB) *AuditLog {
	return &AuditLog{db: db, now: time.Now}
}

func (a *AuditLog) Record(ctx context.Context, userID, action, target, targetID string, details interface{}) error {
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		return err
	}

	entry := &model.OperationLog{
		UserID:    userID,
		Action:    action,
		Target:    target,
		TargetID:  targetID,
		Details:   string(detailsJSON),
		CreatedAt: a.now(),
	}

	return a.db.WithContext(ctx).Create(entry).Error
}

// List returns one page of the log, newest first.
func (a *AuditLog) List(ctx context.Context, page, pageSize int) ([]model.OperationLog, int64, error) {
	return a.list(a.db.WithContext(ctx), page, pageSize)
}

// ListByUser is List restricted to entries recorded for userID.
func (a *AuditLog) ListByUser(ctx context.Context, userID string, page, pageSize int) ([]model.OperationLog, int64, error) {
	return a.list(a.db.WithContext(ctx).Where("user_id = ?", userID), page, pageSize)
}

func (a *AuditLog) list(db *gorm.DB, page, pageSize int) ([]model.OperationLog, int64, error) {
	var logs []model.OperationLog
	var total int64

	db = db.Model(&model.OperationLog{}).Session(&gorm.Session{})

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, dependency(err)
	}

	offset := (page - 1) * pageSize
	if err := db.Order("created_at DESC").Order("id DESC").Offset(offset).Limit(pageSize).Find(&logs).Error; err != nil {
		return nil, 0, dependency(err)
	}

	return logs, total, nil
}
