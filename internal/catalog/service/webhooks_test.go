package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stagewave/catalog-sync/internal/audit"
	"github.com/stagewave/catalog-sync/internal/catalog/biz"
)

const (
	testSecret = "test-webhook-secret"
	testToken  = "3f8a2b1c-4d5e-4f60-8a7b-9c0d1e2f3a4b"
)

type countingEventRepo struct {
	records []*biz.EventRecord
	calls   int
}

func (f *countingEventRepo) ListActive(_ context.Context) ([]*biz.EventRecord, error) {
	f.calls++
	var active []*biz.EventRecord
	for _, r := range f.records {
		if !r.Deleted {
			active = append(active, r)
		}
	}
	return active, nil
}

func (f *countingEventRepo) SoftDelete(_ context.Context, ids []string, reason string, at time.Time) (int64, error) {
	f.calls++
	var modified int64
	for _, r := range f.records {
		for _, id := range ids {
			if r.ID == id && !r.Deleted {
				r.Deleted = true
				r.DeletedReason = reason
				modified++
			}
		}
	}
	return modified, nil
}

func (f *countingEventRepo) CountByState(_ context.Context) (int64, int64, error) {
	f.calls++
	return int64(len(f.records)), 0, nil
}

func (f *countingEventRepo) CreatedAtBounds(_ context.Context) (*time.Time, *time.Time, error) {
	f.calls++
	return nil, nil, nil
}

type countingMusicRepo struct {
	records []*biz.MusicRecord
	calls   int
}

func (f *countingMusicRepo) ListActive(_ context.Context) ([]*biz.MusicRecord, error) {
	f.calls++
	var active []*biz.MusicRecord
	for _, r := range f.records {
		if !r.Deleted {
			active = append(active, r)
		}
	}
	return active, nil
}

func (f *countingMusicRepo) SoftDelete(_ context.Context, ids []string, reason string, at time.Time) (int64, error) {
	f.calls++
	var modified int64
	for _, r := range f.records {
		for _, id := range ids {
			if r.ID == id && !r.Deleted {
				r.Deleted = true
				r.DeletedReason = reason
				modified++
			}
		}
	}
	return modified, nil
}

func (f *countingMusicRepo) CountByState(_ context.Context) (int64, int64, error) {
	f.calls++
	return int64(len(f.records)), 0, nil
}

func (f *countingMusicRepo) CreatedAtBounds(_ context.Context) (*time.Time, *time.Time, error) {
	f.calls++
	return nil, nil, nil
}

type okHealth struct{ err error }

func (h *okHealth) HealthCheck(_ context.Context) error { return h.err }

func setupRouter(t *testing.T) (*gin.Engine, *countingEventRepo, *countingMusicRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	events := &countingEventRepo{
		records: []*biz.EventRecord{
			{ID: "ev-1", Title: "Opening Gala", PhotoURL: "/uploads/" + testToken + "/poster.jpg"},
		},
	}
	music := &countingMusicRepo{
		records: []*biz.MusicRecord{
			{ID: "mu-1", Title: "Tidal", Path: "/uploads/other/track.mp3"},
		},
	}

	uc := biz.NewReconcileUseCase(events, music, zap.NewNop())
	trail := audit.NewTrail(nil, zap.NewNop())
	svc := NewWebhookService(uc, trail, &okHealth{}, testSecret, zap.NewNop())

	router := gin.New()
	svc.RegisterRoutes(router.Group("/api"))
	return router, events, music
}

func doRequest(router *gin.Engine, method, path, secret string, body interface{}) *httptest.ResponseRecorder {
	var reqBody *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if secret != "" {
		req.Header.Set(WebhookSecretHeader, secret)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var envelope struct {
		Code    int                    `json:"code"`
		Message string                 `json:"message"`
		Data    map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope.Data
}

func TestAuthGatePrecedesAllLogic(t *testing.T) {
	routes := []struct {
		method string
		path   string
		body   interface{}
	}{
		{http.MethodPost, "/api/webhooks/check-file-exists", gin.H{"filePath": "/x"}},
		{http.MethodPost, "/api/webhooks/get-file-metadata", gin.H{"filePath": "/x"}},
		{http.MethodPost, "/api/webhooks/mark-file-deleted", gin.H{"filePath": "/x"}},
		{http.MethodPost, "/api/webhooks/cleanup-orphaned-refs", gin.H{"deletedFiles": []string{"/x"}}},
		{http.MethodGet, "/api/webhooks/get-valid-files", nil},
		{http.MethodGet, "/api/webhooks/get-database-stats", nil},
	}

	for _, route := range routes {
		t.Run(route.path+" missing secret", func(t *testing.T) {
			router, events, music := setupRouter(t)
			w := doRequest(router, route.method, route.path, "", route.body)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, 0, events.calls, "no catalog reads before auth")
			assert.Equal(t, 0, music.calls, "no catalog reads before auth")
		})

		t.Run(route.path+" wrong secret", func(t *testing.T) {
			router, events, music := setupRouter(t)
			w := doRequest(router, route.method, route.path, "wrong", route.body)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, 0, events.calls)
			assert.Equal(t, 0, music.calls)
		})
	}
}

func TestCheckFileExists(t *testing.T) {
	t.Run("match in events", func(t *testing.T) {
		router, _, _ := setupRouter(t)
		w := doRequest(router, http.MethodPost, "/api/webhooks/check-file-exists", testSecret,
			gin.H{"filePath": "/uploads/" + testToken + "/poster.jpg"})
		require.Equal(t, http.StatusOK, w.Code)

		data := decodeData(t, w)
		assert.Equal(t, true, data["exists"])
		foundIn := data["foundIn"].(map[string]interface{})
		assert.Equal(t, true, foundIn["events"])
		assert.Equal(t, false, foundIn["music"])
		assert.Equal(t, testToken, data["folderId"])
	})

	t.Run("no match", func(t *testing.T) {
		router, _, _ := setupRouter(t)
		w := doRequest(router, http.MethodPost, "/api/webhooks/check-file-exists", testSecret,
			gin.H{"filePath": "/uploads/missing.bin"})
		require.Equal(t, http.StatusOK, w.Code)

		data := decodeData(t, w)
		assert.Equal(t, false, data["exists"])
	})

	t.Run("empty filePath rejected", func(t *testing.T) {
		router, _, _ := setupRouter(t)
		w := doRequest(router, http.MethodPost, "/api/webhooks/check-file-exists", testSecret,
			gin.H{"filePath": ""})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetFileMetadataEventWins(t *testing.T) {
	router, _, _ := setupRouter(t)
	w := doRequest(router, http.MethodPost, "/api/webhooks/get-file-metadata", testSecret,
		gin.H{"filePath": "/uploads/" + testToken + "/poster.jpg"})
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeData(t, w)
	assert.Equal(t, true, data["found"])
	metadata := data["metadata"].(map[string]interface{})
	assert.Equal(t, "event", metadata["type"])
	assert.Equal(t, "ev-1", metadata["id"])
}

func TestGetFileMetadataNotFound(t *testing.T) {
	router, _, _ := setupRouter(t)
	w := doRequest(router, http.MethodPost, "/api/webhooks/get-file-metadata", testSecret,
		gin.H{"filePath": "/uploads/missing.bin"})
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeData(t, w)
	assert.Equal(t, false, data["found"])
	assert.Nil(t, data["metadata"])
}

func TestMarkFileDeleted(t *testing.T) {
	router, events, _ := setupRouter(t)
	w := doRequest(router, http.MethodPost, "/api/webhooks/mark-file-deleted", testSecret,
		gin.H{"filePath": "/uploads/" + testToken + "/poster.jpg"})
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeData(t, w)
	assert.Equal(t, true, data["success"])
	assert.Equal(t, float64(1), data["modified"])
	assert.Equal(t, float64(1), data["events"])
	assert.Equal(t, float64(0), data["music"])
	assert.True(t, events.records[0].Deleted)
}

func TestCleanupOrphanedRefs(t *testing.T) {
	t.Run("batch with unmatched entry", func(t *testing.T) {
		router, _, _ := setupRouter(t)
		w := doRequest(router, http.MethodPost, "/api/webhooks/cleanup-orphaned-refs", testSecret,
			gin.H{"deletedFiles": []string{
				"/uploads/" + testToken + "/poster.jpg",
				"/uploads/other/track.mp3",
				"/uploads/no-match.bin",
			}})
		require.Equal(t, http.StatusOK, w.Code)

		data := decodeData(t, w)
		assert.Equal(t, float64(2), data["cleaned"])
		assert.Equal(t, float64(3), data["processedFiles"])
	})

	t.Run("empty list rejected", func(t *testing.T) {
		router, _, _ := setupRouter(t)
		w := doRequest(router, http.MethodPost, "/api/webhooks/cleanup-orphaned-refs", testSecret,
			gin.H{"deletedFiles": []string{}})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetValidFiles(t *testing.T) {
	router, _, _ := setupRouter(t)

	w := doRequest(router, http.MethodGet, "/api/webhooks/get-valid-files", testSecret, nil)
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeData(t, w)
	videos := data["videoFiles"].([]interface{})
	music := data["musicFiles"].([]interface{})
	assert.Len(t, videos, 1)
	assert.Len(t, music, 1)

	// Soft-delete the event, export must shrink
	marked := doRequest(router, http.MethodPost, "/api/webhooks/mark-file-deleted", testSecret,
		gin.H{"filePath": "/uploads/" + testToken + "/poster.jpg"})
	require.Equal(t, http.StatusOK, marked.Code)

	w = doRequest(router, http.MethodGet, "/api/webhooks/get-valid-files", testSecret, nil)
	require.Equal(t, http.StatusOK, w.Code)
	data = decodeData(t, w)
	assert.Empty(t, data["videoFiles"])
}

func TestGetDatabaseStats(t *testing.T) {
	router, _, _ := setupRouter(t)
	w := doRequest(router, http.MethodGet, "/api/webhooks/get-database-stats", testSecret, nil)
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeData(t, w)
	assert.Equal(t, true, data["approximate"])
	assert.Equal(t, float64(2), data["totalActive"])
}

func TestHealth(t *testing.T) {
	router, _, _ := setupRouter(t)
	w := doRequest(router, http.MethodGet, "/api/webhooks/health", testSecret, nil)
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeData(t, w)
	assert.Equal(t, "ok", data["status"])
	assert.Equal(t, "connected", data["database"])
	assert.NotEmpty(t, data["timestamp"])
}
