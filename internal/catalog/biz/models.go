package biz

import (
	"context"
	"time"
)

// EventRecord represents a catalog entry whose photoUrl references an
// uploaded video asset.
type EventRecord struct {
	ID            string
	Title         string
	PhotoURL      string
	CreatedAt     time.Time
	Deleted       bool
	DeletedAt     *time.Time
	DeletedReason string
}

// MusicRecord represents a catalog entry referencing a family of derived
// assets from one upload folder: the track itself, its cover image and
// its waveform.
type MusicRecord struct {
	ID            string
	Title         string
	Artist        string
	Album         string
	Path          string
	Image         string
	Wave          string
	AddedBy       string
	CreatedAt     time.Time
	Deleted       bool
	DeletedAt     *time.Time
	DeletedReason string
}

// References returns the record's file reference fields, empty values
// excluded.
func (m *MusicRecord) References() []string {
	refs := make([]string, 0, 3)
	for _, ref := range []string{m.Path, m.Image, m.Wave} {
		if ref != "" {
			refs = append(refs, ref)
		}
	}
	return refs
}

// EventRepo defines catalog access for event records. Soft-deleted
// records are invisible to ListActive; SoftDelete only ever flips
// deleted from false to true.
type EventRepo interface {
	ListActive(ctx context.Context) ([]*EventRecord, error)
	SoftDelete(ctx context.Context, ids []string, reason string, at time.Time) (int64, error)
	CountByState(ctx context.Context) (active, deleted int64, err error)
	CreatedAtBounds(ctx context.Context) (oldest, newest *time.Time, err error)
}

// MusicRepo defines catalog access for music records.
type MusicRepo interface {
	ListActive(ctx context.Context) ([]*MusicRecord, error)
	SoftDelete(ctx context.Context, ids []string, reason string, at time.Time) (int64, error)
	CountByState(ctx context.Context) (active, deleted int64, err error)
	CreatedAtBounds(ctx context.Context) (oldest, newest *time.Time, err error)
}
