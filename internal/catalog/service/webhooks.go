package service

import (
	"context"
	"crypto/subtle"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stagewave/catalog-sync/internal/audit"
	"github.com/stagewave/catalog-sync/internal/catalog/biz"
	"github.com/stagewave/catalog-sync/internal/pkg/response"
)

// WebhookSecretHeader carries the shared secret the file-processing
// server authenticates with.
const WebhookSecretHeader = "x-webhook-secret"

// HealthChecker reports whether the catalog database is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// WebhookService exposes the reconciliation endpoints called by the
// external file-processing server.
type WebhookService struct {
	uc     *biz.ReconcileUseCase
	trail  *audit.Trail
	health HealthChecker
	secret string
	logger *zap.Logger
}

func NewWebhookService(
	uc *biz.ReconcileUseCase,
	trail *audit.Trail,
	health HealthChecker,
	secret string,
	logger *zap.Logger,
) *WebhookService {
	return &WebhookService{
		uc:     uc,
		trail:  trail,
		health: health,
		secret: secret,
		logger: logger,
	}
}

// RequireSecret gates every webhook on the shared secret. The check
// runs before any catalog access; a mismatch aborts with 401 and the
// presented value is never echoed back.
func (s *WebhookService) RequireSecret() gin.HandlerFunc {
	return func(c *gin.Context) {
		presented := c.GetHeader(WebhookSecretHeader)
		if subtle.ConstantTimeCompare([]byte(presented), []byte(s.secret)) != 1 {
			response.Unauthorized(c, "Unauthorized")
			c.Abort()
			return
		}
		c.Next()
	}
}

type filePathRequest struct {
	FilePath string `json:"filePath"`
}

type cleanupRequest struct {
	DeletedFiles []string `json:"deletedFiles"`
}

// CheckFileExists answers whether any non-deleted record references the
// path, without projecting metadata.
func (s *WebhookService) CheckFileExists(c *gin.Context) {
	var req filePathRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "filePath is required")
		return
	}

	result, err := s.uc.Resolve(c.Request.Context(), req.FilePath)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, gin.H{
		"exists": result.Found(),
		"foundIn": gin.H{
			"events": result.Event != nil,
			"music":  result.Music != nil,
		},
		"folderId": result.FolderToken,
	})
}

// GetFileMetadata projects the full metadata of the first match. When a
// path matches in both collections the event record wins.
func (s *WebhookService) GetFileMetadata(c *gin.Context) {
	var req filePathRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "filePath is required")
		return
	}

	result, err := s.uc.Resolve(c.Request.Context(), req.FilePath)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	var metadata gin.H
	switch {
	case result.Event != nil:
		metadata = gin.H{
			"type":      "event",
			"id":        result.Event.ID,
			"title":     result.Event.Title,
			"photoUrl":  result.Event.PhotoURL,
			"createdAt": result.Event.CreatedAt,
		}
	case result.Music != nil:
		metadata = gin.H{
			"type":      "music",
			"id":        result.Music.ID,
			"title":     result.Music.Title,
			"artist":    result.Music.Artist,
			"album":     result.Music.Album,
			"path":      result.Music.Path,
			"image":     result.Music.Image,
			"wave":      result.Music.Wave,
			"addedBy":   result.Music.AddedBy,
			"createdAt": result.Music.CreatedAt,
		}
	}

	response.Success(c, gin.H{
		"found":    metadata != nil,
		"metadata": metadata,
	})
}

// MarkFileDeleted soft-deletes all records referencing the path under
// the strict matching rules.
func (s *WebhookService) MarkFileDeleted(c *gin.Context) {
	var req filePathRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "filePath is required")
		return
	}

	result, err := s.uc.MarkFileDeleted(c.Request.Context(), req.FilePath)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	s.trail.Record(c.Request.Context(), audit.Entry{
		Operation: "mark-file-deleted",
		Paths:     1,
		Modified:  result.Modified,
	})

	response.Success(c, gin.H{
		"success":  true,
		"modified": result.Modified,
		"events":   result.Events,
		"music":    result.Music,
	})
}

// CleanupOrphanedRefs soft-deletes records for a batch of paths the
// file server confirmed missing on disk.
func (s *WebhookService) CleanupOrphanedRefs(c *gin.Context) {
	var req cleanupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "deletedFiles must be a non-empty array")
		return
	}

	summary, err := s.uc.CleanupOrphanedRefs(c.Request.Context(), req.DeletedFiles)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	s.trail.Record(c.Request.Context(), audit.Entry{
		Operation: "cleanup-orphaned-refs",
		Paths:     summary.Processed,
		Modified:  summary.Cleaned,
		Skipped:   len(summary.Skipped),
		Failed:    len(summary.Failed),
	})

	response.Success(c, gin.H{
		"success":        true,
		"cleaned":        summary.Cleaned,
		"processedFiles": summary.Processed,
		"succeeded":      summary.Succeeded,
		"skipped":        summary.Skipped,
		"failed":         summary.Failed,
	})
}

// GetValidFiles exports every non-deleted record's reference fields.
func (s *WebhookService) GetValidFiles(c *gin.Context) {
	export, err := s.uc.ValidFiles(c.Request.Context())
	if err != nil {
		response.HandleError(c, err)
		return
	}

	videos := make([]gin.H, len(export.VideoFiles))
	for i, v := range export.VideoFiles {
		videos[i] = gin.H{"id": v.ID, "title": v.Title, "photoUrl": v.PhotoURL}
	}
	music := make([]gin.H, len(export.MusicFiles))
	for i, m := range export.MusicFiles {
		music[i] = gin.H{
			"id":     m.ID,
			"title":  m.Title,
			"artist": m.Artist,
			"path":   m.Path,
			"image":  m.Image,
			"wave":   m.Wave,
		}
	}

	response.Success(c, gin.H{
		"videoFiles": videos,
		"musicFiles": music,
		"summary": gin.H{
			"totalVideos":     export.Summary.TotalVideos,
			"totalMusic":      export.Summary.TotalMusic,
			"totalReferences": export.Summary.TotalReferences,
		},
	})
}

// GetDatabaseStats aggregates catalog counts and age bounds. The size
// figure is a flat per-file heuristic, flagged approximate.
func (s *WebhookService) GetDatabaseStats(c *gin.Context) {
	stats, err := s.uc.Stats(c.Request.Context())
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, gin.H{
		"activeEvents":       stats.ActiveEvents,
		"deletedEvents":      stats.DeletedEvents,
		"activeMusic":        stats.ActiveMusic,
		"deletedMusic":       stats.DeletedMusic,
		"totalActive":        stats.TotalActive,
		"totalDeleted":       stats.TotalDeleted,
		"oldestRecord":       stats.OldestRecord,
		"newestRecord":       stats.NewestRecord,
		"approxStorageBytes": stats.ApproxStorageBytes,
		"approximate":        stats.Approximate,
	})
}

// Health verifies the catalog database connection.
func (s *WebhookService) Health(c *gin.Context) {
	status := "ok"
	database := "connected"
	if err := s.health.HealthCheck(c.Request.Context()); err != nil {
		s.logger.Error("health check failed", zap.Error(err))
		status = "degraded"
		database = "unreachable"
	}

	response.Success(c, gin.H{
		"status":    status,
		"timestamp": time.Now().UTC(),
		"database":  database,
	})
}

// RecentActivity returns the latest reconciliation audit entries.
func (s *WebhookService) RecentActivity(c *gin.Context) {
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)

	entries, err := s.trail.Recent(c.Request.Context(), limit)
	if err != nil {
		s.logger.Error("failed to read audit trail", zap.Error(err))
		response.InternalError(c, "failed to read recent activity")
		return
	}

	response.Success(c, gin.H{"entries": entries})
}

func (s *WebhookService) RegisterRoutes(r *gin.RouterGroup) {
	webhooks := r.Group("/webhooks")
	webhooks.Use(s.RequireSecret())
	{
		webhooks.POST("/check-file-exists", s.CheckFileExists)
		webhooks.POST("/get-file-metadata", s.GetFileMetadata)
		webhooks.POST("/mark-file-deleted", s.MarkFileDeleted)
		webhooks.POST("/cleanup-orphaned-refs", s.CleanupOrphanedRefs)
		webhooks.GET("/get-valid-files", s.GetValidFiles)
		webhooks.GET("/get-database-stats", s.GetDatabaseStats)
		webhooks.GET("/health", s.Health)
		webhooks.GET("/recent-activity", s.RecentActivity)
	}
}
