package biz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/stagewave/catalog-sync/internal/pkg/errors"
)

const testFolderToken = "3f8a2b1c-4d5e-4f60-8a7b-9c0d1e2f3a4b"

func TestNewMatchQuery(t *testing.T) {
	tests := []struct {
		name     string
		filePath string
		wantErr  bool
	}{
		{"plain path", "uploads/video.mp4", false},
		{"rooted path", "/uploads/video.mp4", false},
		{"full url", "http://localhost:4000/uploads/video.mp4", false},
		{"empty", "", true},
		{"whitespace only", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, err := NewMatchQuery(tt.filePath)
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, apperrors.Is(err, apperrors.ErrEmptyFilePath))
				assert.Nil(t, query)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, query)
			}
		})
	}
}

func TestExtractFolderToken(t *testing.T) {
	tests := []struct {
		name     string
		filePath string
		want     string
	}{
		{
			"token in folder segment",
			"/uploads/" + testFolderToken + "/track.mp3",
			testFolderToken,
		},
		{
			"bare token",
			testFolderToken,
			testFolderToken,
		},
		{
			"no token",
			"/uploads/track.mp3",
			"",
		},
		{
			"uuid-shaped but invalid hex is never produced by the pattern",
			"/uploads/zzzzzzzz-4d5e-4f60-8a7b-9c0d1e2f3a4b/x.mp3",
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractFolderToken(tt.filePath))
		})
	}
}

func TestMatchesFullPolicy(t *testing.T) {
	stored := "/uploads/" + testFolderToken + "/photo.jpg"

	tests := []struct {
		name     string
		filePath string
		want     bool
	}{
		{"exact", "/uploads/" + testFolderToken + "/photo.jpg", true},
		{"unrooted input matches rooted record", "uploads/" + testFolderToken + "/photo.jpg", true},
		{"case-insensitive containment", "/UPLOADS/" + testFolderToken + "/PHOTO.JPG", true},
		{"partial path containment", testFolderToken + "/photo.jpg", true},
		{"bare folder token matches sibling", testFolderToken, true},
		{"sibling asset via shared token", "/uploads/" + testFolderToken + "/waveform.png", true},
		{"unrelated token", "11111111-2222-4333-8444-555555555555", false},
		{"unrelated path", "/uploads/other/photo.jpg", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, err := NewMatchQuery(tt.filePath)
			require.NoError(t, err)
			assert.Equal(t, tt.want, query.Matches(stored))
		})
	}
}

func TestMatchesLegacyHostPrefix(t *testing.T) {
	query, err := NewMatchQuery("/uploads/photo.jpg")
	require.NoError(t, err)

	assert.True(t, query.Matches("http://localhost:4000/uploads/photo.jpg"))
	assert.True(t, query.Matches("https://files.stagewave.io/uploads/photo.jpg"))
	assert.False(t, query.Matches("https://other.example.com/elsewhere.jpg"))
}

func TestMatchesStrict(t *testing.T) {
	stored := "/uploads/" + testFolderToken + "/track.mp3"

	tests := []struct {
		name     string
		filePath string
		want     bool
	}{
		{"exact", stored, true},
		{"unrooted", "uploads/" + testFolderToken + "/track.mp3", true},
		{"legacy host form", "/uploads/" + testFolderToken + "/track.mp3", true},
		{"containment is not strict", testFolderToken + "/track.mp3", false},
		{"folder token is not strict", testFolderToken, false},
		{"sibling asset is not strict", "/uploads/" + testFolderToken + "/cover.jpg", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, err := NewMatchQuery(tt.filePath)
			require.NoError(t, err)
			assert.Equal(t, tt.want, query.MatchesStrict(stored))
		})
	}
}

func TestMatchesAny(t *testing.T) {
	record := &MusicRecord{
		Path:  "/uploads/" + testFolderToken + "/track.mp3",
		Image: "/uploads/" + testFolderToken + "/cover.jpg",
		Wave:  "/uploads/" + testFolderToken + "/wave.png",
	}

	query, err := NewMatchQuery("/uploads/" + testFolderToken + "/cover.jpg")
	require.NoError(t, err)
	assert.True(t, query.MatchesAny(record.References()))
	assert.True(t, query.MatchesAnyStrict(record.References()))

	other, err := NewMatchQuery("/uploads/other/cover.jpg")
	require.NoError(t, err)
	assert.False(t, other.MatchesAny(record.References()))
}
