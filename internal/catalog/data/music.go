package data

import (
	"context"
	"time"

	"github.com/stagewave/catalog-sync/internal/catalog/biz"
	"gorm.io/gorm"
)

// MusicPO represents the database model for music records
type MusicPO struct {
	ID            string `gorm:"type:uuid;primarykey;default:gen_random_uuid()"`
	Title         string `gorm:"size:255;not null"`
	Artist        string `gorm:"size:255"`
	Album         string `gorm:"size:255"`
	Path          string `gorm:"size:1024;not null;index"`
	Image         string `gorm:"size:1024"`
	Wave          string `gorm:"size:1024"`
	AddedBy       string `gorm:"type:uuid;index"`
	CreatedAt     time.Time
	Deleted       bool `gorm:"not null;default:false;index"`
	DeletedAt     *time.Time
	DeletedReason string `gorm:"size:255"`
}

func (MusicPO) TableName() string {
	return "music"
}

// MusicRepo implements biz.MusicRepo
type MusicRepo struct {
	db *gorm.DB
}

func NewMusicRepo(db *gorm.DB) biz.MusicRepo {
	return &MusicRepo{db: db}
}

func (r *MusicRepo) ListActive(ctx context.Context) ([]*biz.MusicRecord, error) {
	var pos []MusicPO
	if err := r.db.WithContext(ctx).Where("deleted = ?", false).Find(&pos).Error; err != nil {
		return nil, err
	}

	records := make([]*biz.MusicRecord, len(pos))
	for i, po := range pos {
		records[i] = r.toDomain(&po)
	}
	return records, nil
}

func (r *MusicRepo) SoftDelete(ctx context.Context, ids []string, reason string, at time.Time) (int64, error) {
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
		Model(&MusicPO{}).
		Where("id IN ? AND deleted = ?", ids, false).
		Updates(updates)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *MusicRepo) CountByState(ctx context.Context) (int64, int64, error) {
	var active, deleted int64
	if err := r.db.WithContext(ctx).Model(&MusicPO{}).
		Where("deleted = ?", false).Count(&active).Error; err != nil {
		return 0, 0, err
	}
	if err := r.db.WithContext(ctx).Model(&MusicPO{}).
		Where("deleted = ?", true).Count(&deleted).Error; err != nil {
		return 0, 0, err
	}
	return active, deleted, nil
}

func (r *MusicRepo) CreatedAtBounds(ctx context.Context) (*time.Time, *time.Time, error) {
	return createdAtBounds(r.db.WithContext(ctx).Model(&MusicPO{}))
}

func (r *MusicRepo) toDomain(po *MusicPO) *biz.MusicRecord {
	return &biz.MusicRecord{
		ID:            po.ID,
		Title:         po.Title,
		Artist:        po.Artist,
		Album:         po.Album,
		Path:          po.Path,
		Image:         po.Image,
		Wave:          po.Wave,
		AddedBy:       po.AddedBy,
		CreatedAt:     po.CreatedAt,
		Deleted:       po.Deleted,
		DeletedAt:     po.DeletedAt,
		DeletedReason: po.DeletedReason,
	}
}
