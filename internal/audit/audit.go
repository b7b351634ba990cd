package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	trailKey     = "catalog:reconcile:trail"
	defaultLimit = 200
)

// Entry is one recorded reconciliation run. The trail is informational
// only; nothing in the matching or cleanup path reads it back.
type Entry struct {
	Time      time.Time `json:"time"`
	Operation string    `json:"operation"`
	Paths     int       `json:"paths"`
	Modified  int64     `json:"modified"`
	Skipped   int       `json:"skipped,omitempty"`
	Failed    int       `json:"failed,omitempty"`
}

// Trail keeps a capped list of recent reconciliation runs in redis.
type Trail struct {
	client *redis.Client
	logger *zap.Logger
	max    int64
}

func NewTrail(client *redis.Client, logger *zap.Logger) *Trail {
	return &Trail{
		client: client,
		logger: logger,
		max:    defaultLimit,
	}
}

// Record appends an entry and trims the trail. Failures are logged and
// swallowed; the audit trail must never fail a reconciliation request.
func (t *Trail) Record(ctx context.Context, entry Entry) {
	if t == nil || t.client == nil {
		return
	}
	if entry.Time.IsZero() {
		entry.Time = time.Now().UTC()
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		t.logger.Warn("failed to marshal audit entry", zap.Error(err))
		return
	}

	pipe := t.client.Pipeline()
	pipe.LPush(ctx, trailKey, payload)
	pipe.LTrim(ctx, trailKey, 0, t.max-1)
	if _, err := pipe.Exec(ctx); err != nil {
		t.logger.Warn("failed to record audit entry",
			zap.String("operation", entry.Operation),
			zap.Error(err),
		)
	}
}

// Recent returns up to n most recent entries, newest first.
func (t *Trail) Recent(ctx context.Context, n int64) ([]Entry, error) {
	if t == nil || t.client == nil {
		return []Entry{}, nil
	}
	if n <= 0 || n > t.max {
		n = t.max
	}

	raw, err := t.client.LRange(ctx, trailKey, 0, n-1).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(raw))
	for _, item := range raw {
		var entry Entry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			t.logger.Warn("skipping malformed audit entry", zap.Error(err))
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
