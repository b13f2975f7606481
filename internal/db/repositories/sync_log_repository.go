package repositories

import (
	"context"
	"time"

	"runlab/stride/internal/constants"
	"runlab/stride/internal/models/gorm"

	gormlib "gorm.io/gorm"
)

// SyncLogRepo handles sync_log operations
type SyncLogRepo struct {
	db *gormlib.DB
}

// NewSyncLogRepo creates a new sync log repository
func NewSyncLogRepo(db *gormlib.DB) *SyncLogRepo {
	return &SyncLogRepo{db: db}
}

// Start opens a running entry for a sync of the given mode.
func (r *SyncLogRepo) Start(ctx context.Context, syncType string, at time.Time) (*gorm.SyncLog, error) {
	entry := &gorm.SyncLog{
		SyncType:  syncType,
		StartedAt: at.UTC().Format(constants.DateLayout),
		Status:    constants.SyncStatusRunning,
	}
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

// Complete closes an entry successfully.
func (r *SyncLogRepo) Complete(ctx context.Context, id uint, records int, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&gorm.SyncLog{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":         constants.SyncStatusCompleted,
			"records_synced": records,
			"completed_at":   at.UTC().Format(constants.DateLayout),
		}).Error
}

// Fail closes an entry with the error text.
func (r *SyncLogRepo) Fail(ctx context.Context, id uint, errText string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&gorm.SyncLog{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       constants.SyncStatusError,
			"error":        errText,
			"completed_at": at.UTC().Format(constants.DateLayout),
		}).Error
}

// Latest returns the most recent entry, or nil when no sync ever ran.
func (r *SyncLogRepo) Latest(ctx context.Context) (*gorm.SyncLog, error) {
	var entry gorm.SyncLog
	err := r.db.WithContext(ctx).Order("id DESC").First(&entry).Error
	if err != nil {
		if err == gormlib.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

// LastCompleted returns the most recent successful entry, or nil.
func (r *SyncLogRepo) LastCompleted(ctx context.Context) (*gorm.SyncLog, error) {
	var entry gorm.SyncLog
	err := r.db.WithContext(ctx).
		Where("status = ?", constants.SyncStatusCompleted).
		Order("id DESC").
		First(&entry).Error
	if err != nil {
		if err == gormlib.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}
