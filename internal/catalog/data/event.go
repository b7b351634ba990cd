package data

import (
	"context"
	"time"

	"github.com/stagewave/catalog-sync/internal/catalog/biz"
	"gorm.io/gorm"
)

// EventPO represents the database model for event records
type EventPO struct {
	ID            string `gorm:"type:uuid;primarykey;default:gen_random_uuid()"`
	Title         string `gorm:"size:255;not null"`
	PhotoURL      string `gorm:"size:1024;not null;index"`
	CreatedAt     time.Time
	Deleted       bool `gorm:"not null;default:false;index"`
	DeletedAt     *time.Time
	DeletedReason string `gorm:"size:255"`
}

func (EventPO) TableName() string {
	return "events"
}

// EventRepo implements biz.EventRepo
type EventRepo struct {
	db *gorm.DB
}

func NewEventRepo(db *gorm.DB) biz.EventRepo {
	return &EventRepo{db: db}
}

func (r *EventRepo) ListActive(ctx context.Context) ([]*biz.EventRecord, error) {
	var pos []EventPO
	if err := r.db.WithContext(ctx).Where("deleted = ?", false).Find(&pos).Error; err != nil {
		return nil, err
	}

	records := make([]*biz.EventRecord, len(pos))
	for i, po := range pos {
		records[i] = r.toDomain(&po)
	}
	return records, nil
}

// SoftDelete flips deleted from false to true for the given records.
// The deleted=false filter keeps the transition one-directional and the
// modified count honest under concurrent calls.
func (r *EventRepo) SoftDelete(ctx context.Context, ids []string, reason string, at time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	updates := map[string]interface{}{
		"deleted":    true,
		"deleted_at": at,
	}
	if reason != "" {
		updates["deleted_reason"] = reason
	}

	result := r.db.WithContext(ctx).
		Model(&EventPO{}).
		Where("id IN ? AND deleted = ?", ids, false).
		Updates(updates)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *EventRepo) CountByState(ctx context.Context) (int64, int64, error) {
	var active, deleted int64
	if err := r.db.WithContext(ctx).Model(&EventPO{}).
		Where("deleted = ?", false).Count(&active).Error; err != nil {
		return 0, 0, err
	}
	if err := r.db.WithContext(ctx).Model(&EventPO{}).
		Where("deleted = ?", true).Count(&deleted).Error; err != nil {
		return 0, 0, err
	}
	return active, deleted, nil
}

func (r *EventRepo) CreatedAtBounds(ctx context.Context) (*time.Time, *time.Time, error) {
	return createdAtBounds(r.db.WithContext(ctx).Model(&EventPO{}))
}

func (r *EventRepo) toDomain(po *EventPO) *biz.EventRecord {
	return &biz.EventRecord{
		ID:            po.ID,
		Title:         po.Title,
		PhotoURL:      po.PhotoURL,
		CreatedAt:     po.CreatedAt,
		Deleted:       po.Deleted,
		DeletedAt:     po.DeletedAt,
		DeletedReason: po.DeletedReason,
	}
}

// createdAtBounds returns the min and max created_at of a collection,
// nil for an empty table.
func createdAtBounds(query *gorm.DB) (*time.Time, *time.Time, error) {
	var bounds struct {
		Oldest *time.Time
		Newest *time.Time
	}
	if err := query.Select("MIN(created_at) AS oldest, MAX(created_at) AS newest").
		Scan(&bounds).Error; err != nil {
		return nil, nil, err
	}
	return bounds.Oldest, bounds.Newest, nil
}
