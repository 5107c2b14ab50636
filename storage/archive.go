package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/cup-engine/models"
	"github.com/gosimple/slug"
)

var ErrEditionNotCompleted = errors.New("only completed editions can be archived")

// EditionArchiver writes completed edition summaries as JSON objects keyed
// editions/<competition-slug>/<start-year>-<edition-id>.json.
type EditionArchiver struct {
	uploader FileUploader
	logger   *slog.Logger
}

func NewEditionArchiver(uploader FileUploader, logger *slog.Logger) *EditionArchiver {
	return &EditionArchiver{uploader: uploader, logger: logger}
}

func ArchiveKey(summary *models.EditionSummary) string {
	name := summary.Competition.ShortName
	if name == "" {
		name = summary.Competition.Name
	}
	return fmt.Sprintf("editions/%s/%d-%d.json", slug.Make(name), summary.Edition.StartYear, summary.Edition.ID)
}

func (a *EditionArchiver) Archive(ctx context.Context, summary *models.EditionSummary) (string, error) {
	if summary.Edition.Status != models.EditionCompleted {
		return "", fmt.Errorf("%w: edition %d is %s", ErrEditionNotCompleted, summary.Edition.ID, summary.Edition.Status)
	}

	body, err := json.Marshal(summary)
	if err != nil {
		return "", fmt.Errorf("failed to encode summary of edition %d: %w", summary.Edition.ID, err)
	}

	key := ArchiveKey(summary)
	result, err := a.uploader.Upload(ctx, key, "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	a.logger.DebugContext(ctx, "edition summary uploaded",
		slog.Int("edition_id", summary.Edition.ID),
		slog.String("key", result.Key),
		slog.Int("bytes", len(body)))
	return result.Location, nil
}
