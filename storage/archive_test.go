package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/Dosada05/cup-engine/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryUploader struct {
	objects     map[string][]byte
	contentType string
	err         error
}

func (u *memoryUploader) Upload(_ context.Context, key, contentType string, reader io.Reader) (*UploadResult, error) {
	if u.err != nil {
		return nil, u.err
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	if u.objects == nil {
		u.objects = make(map[string][]byte)
	}
	u.objects[key] = body
	u.contentType = contentType
	return &UploadResult{Key: key, Location: u.GetPublicURL(key)}, nil
}

func (u *memoryUploader) GetPublicURL(key string) string {
	return publicURL("https://cdn.example.com/archive", key)
}

func completedSummary() *models.EditionSummary {
	winner := 7
	return &models.EditionSummary{
		Edition:     models.Edition{ID: 12, StartYear: 2024, EndYear: 2025, Status: models.EditionCompleted, WinnerClubID: &winner},
		Competition: models.CompetitionDefinition{ID: 3, Name: "Copa del Rey"},
	}
}

func TestArchiveKey(t *testing.T) {
	summary := completedSummary()
	assert.Equal(t, "editions/copa-del-rey/2024-12.json", ArchiveKey(summary))

	summary.Competition.ShortName = "CdR"
	assert.Equal(t, "editions/cdr/2024-12.json", ArchiveKey(summary))
}

func TestEditionArchiver(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	t.Run("uploads the summary as json", func(t *testing.T) {
		uploader := &memoryUploader{}
		archiver := NewEditionArchiver(uploader, logger)

		location, err := archiver.Archive(ctx, completedSummary())
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/archive/editions/copa-del-rey/2024-12.json", location)
		assert.Equal(t, "application/json", uploader.contentType)

		var stored models.EditionSummary
		require.NoError(t, json.Unmarshal(uploader.objects["editions/copa-del-rey/2024-12.json"], &stored))
		assert.Equal(t, 7, *stored.Edition.WinnerClubID)
	})

	t.Run("refuses editions still running", func(t *testing.T) {
		uploader := &memoryUploader{}
		summary := completedSummary()
		summary.Edition.Status = models.EditionInProgress

		_, err := NewEditionArchiver(uploader, logger).Archive(ctx, summary)
		assert.ErrorIs(t, err, ErrEditionNotCompleted)
		assert.Empty(t, uploader.objects)
	})

	t.Run("upload errors are returned", func(t *testing.T) {
		boom := errors.New("bucket unavailable")
		_, err := NewEditionArchiver(&memoryUploader{err: boom}, logger).Archive(ctx, completedSummary())
		assert.ErrorIs(t, err, boom)
	})
}

func TestPublicURL(t *testing.T) {
	assert.Equal(t, "https://cdn.example.com/a/b.json", publicURL("https://cdn.example.com", "a/b.json"))
	assert.Equal(t, "https://cdn.example.com/x/a.json", publicURL("https://cdn.example.com/x/", "/a.json"))
	assert.Empty(t, publicURL("", "a.json"))
}
