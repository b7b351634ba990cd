package biz

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/stagewave/catalog-sync/internal/pkg/errors"
)

// OrphanedRefReason is written to every record soft-deleted by the
// cleanup batch.
const OrphanedRefReason = "File not found on disk"

// heuristicFileSize is the flat per-file estimate used by Stats. The
// catalog stores no sizes, so the figure is an order-of-magnitude
// approximation and is flagged as such in the result.
const heuristicFileSize int64 = 10 * 1024 * 1024

// ResolveResult is the outcome of running the matching policy against
// both collections. Nil fields mean no match; absence is a value here,
// not an error.
type ResolveResult struct {
	Event       *EventRecord
	Music       *MusicRecord
	FolderToken string
}

// Found reports whether either collection matched.
func (r *ResolveResult) Found() bool {
	return r.Event != nil || r.Music != nil
}

// MarkDeletedResult reports a bulk soft-delete.
type MarkDeletedResult struct {
	Modified int64
	Events   int64
	Music    int64
}

// CleanupFailure names a batch entry that could not be processed.
type CleanupFailure struct {
	Path   string
	Reason string
}

// CleanupSummary partitions a cleanup batch into succeeded, skipped and
// failed entries. Processed always equals the requested batch size;
// Cleaned is the total number of records modified across the batch.
type CleanupSummary struct {
	Processed int
	Cleaned   int64
	Succeeded []string
	Skipped   []string
	Failed    []CleanupFailure
}

// VideoFileEntry is one non-deleted event reference in the export.
type VideoFileEntry struct {
	ID       string
	Title    string
	PhotoURL string
}

// MusicFileEntry is one non-deleted music record with all three of its
// references.
type MusicFileEntry struct {
	ID     string
	Title  string
	Artist string
	Path   string
	Image  string
	Wave   string
}

// ValidFilesExport is the catalog's view of which physical files are
// still referenced, for the file server to diff against its listing.
type ValidFilesExport struct {
	VideoFiles []VideoFileEntry
	MusicFiles []MusicFileEntry
	Summary    ExportSummary
}

// ExportSummary aggregates the export.
type ExportSummary struct {
	TotalVideos     int
	TotalMusic      int
	TotalReferences int
}

// CatalogStats aggregates record counts and age bounds across both
// collections. ApproxStorageBytes is a flat per-file heuristic, never a
// measured sum; Approximate is always true.
type CatalogStats struct {
	ActiveEvents       int64
	DeletedEvents      int64
	ActiveMusic        int64
	DeletedMusic       int64
	TotalActive        int64
	TotalDeleted       int64
	OldestRecord       *time.Time
	NewestRecord       *time.Time
	ApproxStorageBytes int64
	Approximate        bool
}

// ReconcileUseCase implements the reconciliation protocol between the
// catalog and the physical file store.
type ReconcileUseCase struct {
	events EventRepo
	music  MusicRepo
	logger *zap.Logger
	now    func() time.Time
}

func NewReconcileUseCase(events EventRepo, music MusicRepo, logger *zap.Logger) *ReconcileUseCase {
	return &ReconcileUseCase{
		events: events,
		music:  music,
		logger: logger,
		now:    time.Now,
	}
}

// Resolve runs the full matching policy against both collections and
// returns at most one record per collection. Both collections are
// always consulted; a path matching in both is reported as-is.
func (uc *ReconcileUseCase) Resolve(ctx context.Context, filePath string) (*ResolveResult, error) {
	query, err := NewMatchQuery(filePath)
	if err != nil {
		return nil, err
	}

	events, err := uc.events.ListActive(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCatalogQueryFailed)
	}
	music, err := uc.music.ListActive(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCatalogQueryFailed)
	}

	result := &ResolveResult{FolderToken: query.FolderToken()}
	for _, ev := range events {
		if query.Matches(ev.PhotoURL) {
			result.Event = ev
			break
		}
	}
	for _, m := range music {
		if query.MatchesAny(m.References()) {
			result.Music = m
			break
		}
	}

	return result, nil
}

// MarkFileDeleted soft-deletes every active record referencing the path
// under the strict policy (exact, rooted or legacy-host form only — no
// folder-token widening on the destructive path). Idempotent: a second
// call for the same path modifies nothing.
func (uc *ReconcileUseCase) MarkFileDeleted(ctx context.Context, filePath string) (*MarkDeletedResult, error) {
	return uc.markDeleted(ctx, filePath, "")
}

func (uc *ReconcileUseCase) markDeleted(ctx context.Context, filePath, reason string) (*MarkDeletedResult, error) {
	query, err := NewMatchQuery(filePath)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	result := &MarkDeletedResult{}

	events, err := uc.events.ListActive(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCatalogQueryFailed)
	}
	var eventIDs []string
	for _, ev := range events {
		if query.MatchesStrict(ev.PhotoURL) {
			eventIDs = append(eventIDs, ev.ID)
		}
	}
	if len(eventIDs) > 0 {
		modified, err := uc.events.SoftDelete(ctx, eventIDs, reason, now)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCatalogUpdateFailed)
		}
		result.Events = modified
	}

	music, err := uc.music.ListActive(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCatalogQueryFailed)
	}
	var musicIDs []string
	for _, m := range music {
		if query.MatchesAnyStrict(m.References()) {
			musicIDs = append(musicIDs, m.ID)
		}
	}
	if len(musicIDs) > 0 {
		modified, err := uc.music.SoftDelete(ctx, musicIDs, reason, now)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCatalogUpdateFailed)
		}
		result.Music = modified
	}

	result.Modified = result.Events + result.Music
	return result, nil
}

// CleanupOrphanedRefs processes a batch of paths the file server has
// confirmed missing, soft-deleting matching records with a fixed
// reason. One bad entry never aborts the batch: blank paths and update
// failures land in Failed, paths with no matching record in Skipped.
func (uc *ReconcileUseCase) CleanupOrphanedRefs(ctx context.Context, deletedFiles []string) (*CleanupSummary, error) {
	if len(deletedFiles) == 0 {
		return nil, apperrors.New(apperrors.ErrInvalidFileList)
	}

	summary := &CleanupSummary{Processed: len(deletedFiles)}
	for _, path := range deletedFiles {
		result, err := uc.markDeleted(ctx, path, OrphanedRefReason)
		if err != nil {
			uc.logger.Warn("cleanup entry failed",
				zap.String("path", path),
				zap.Error(err),
			)
			summary.Failed = append(summary.Failed, CleanupFailure{
				Path:   path,
				Reason: apperrors.GetMessage(apperrors.ExtractCode(err)),
			})
			continue
		}
		if result.Modified == 0 {
			summary.Skipped = append(summary.Skipped, path)
			continue
		}
		summary.Cleaned += result.Modified
		summary.Succeeded = append(summary.Succeeded, path)
	}

	uc.logger.Info("orphaned reference cleanup finished",
		zap.Int("processed", summary.Processed),
		zap.Int64("cleaned", summary.Cleaned),
		zap.Int("skipped", len(summary.Skipped)),
		zap.Int("failed", len(summary.Failed)),
	)
	return summary, nil
}

// ValidFiles exports every non-deleted record's reference fields for the
// file server to diff against its physical listing.
func (uc *ReconcileUseCase) ValidFiles(ctx context.Context) (*ValidFilesExport, error) {
	events, err := uc.events.ListActive(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCatalogQueryFailed)
	}
	music, err := uc.music.ListActive(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCatalogQueryFailed)
	}

	export := &ValidFilesExport{
		VideoFiles: make([]VideoFileEntry, 0, len(events)),
		MusicFiles: make([]MusicFileEntry, 0, len(music)),
	}

	refs := 0
	for _, ev := range events {
		if ev.PhotoURL == "" {
			continue
		}
		export.VideoFiles = append(export.VideoFiles, VideoFileEntry{
			ID:       ev.ID,
			Title:    ev.Title,
			PhotoURL: ev.PhotoURL,
		})
		refs++
	}
	for _, m := range music {
		export.MusicFiles = append(export.MusicFiles, MusicFileEntry{
			ID:     m.ID,
			Title:  m.Title,
			Artist: m.Artist,
			Path:   m.Path,
			Image:  m.Image,
			Wave:   m.Wave,
		})
		refs += len(m.References())
	}

	export.Summary = ExportSummary{
		TotalVideos:     len(export.VideoFiles),
		TotalMusic:      len(export.MusicFiles),
		TotalReferences: refs,
	}
	return export, nil
}

// Stats aggregates counts and age bounds across both collections. The
// four underlying reads are independent and run concurrently.
func (uc *ReconcileUseCase) Stats(ctx context.Context) (*CatalogStats, error) {
	stats := &CatalogStats{Approximate: true}

	var (
		eventOldest, eventNewest *time.Time
		musicOldest, musicNewest *time.Time
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		active, deleted, err := uc.events.CountByState(gctx)
		if err != nil {
			return err
		}
		stats.ActiveEvents, stats.DeletedEvents = active, deleted
		return nil
	})
	g.Go(func() error {
		active, deleted, err := uc.music.CountByState(gctx)
		if err != nil {
			return err
		}
		stats.ActiveMusic, stats.DeletedMusic = active, deleted
		return nil
	})
	g.Go(func() error {
		oldest, newest, err := uc.events.CreatedAtBounds(gctx)
		if err != nil {
			return err
		}
		eventOldest, eventNewest = oldest, newest
		return nil
	})
	g.Go(func() error {
		oldest, newest, err := uc.music.CreatedAtBounds(gctx)
		if err != nil {
			return err
		}
		musicOldest, musicNewest = oldest, newest
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCatalogQueryFailed)
	}

	stats.TotalActive = stats.ActiveEvents + stats.ActiveMusic
	stats.TotalDeleted = stats.DeletedEvents + stats.DeletedMusic
	stats.OldestRecord = earlierOf(eventOldest, musicOldest)
	stats.NewestRecord = laterOf(eventNewest, musicNewest)
	stats.ApproxStorageBytes = stats.TotalActive * heuristicFileSize

	return stats, nil
}

func earlierOf(a, b *time.Time) *time.Time {
	if a == nil {
		return b
	}
	if b == nil || a.Before(*b) {
		return a
	}
	return b
}

func laterOf(a, b *time.Time) *time.Time {
	if a == nil {
		return b
	}
	if b == nil || a.After(*b) {
		return a
	}
	return b
}
