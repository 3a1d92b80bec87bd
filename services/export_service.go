package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/Dosada05/tournament-sessions/models"
	"github.com/Dosada05/tournament-sessions/storage"
)

// ScheduleExporter выгружает CSV-версию сгенерированного расписания в
// объектное хранилище, чтобы кампусы могли забрать его без обращения к API.
type ScheduleExporter struct {
	uploader storage.FileUploader
	logger   *slog.Logger
}

func NewScheduleExporter(uploader storage.FileUploader, logger *slog.Logger) *ScheduleExporter {
	return &ScheduleExporter{
		uploader: uploader,
		logger:   logger,
	}
}

func (e *ScheduleExporter) UploadScheduleCSV(ctx context.Context, t *models.Tournament, sessions []*models.GeneratedSession) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"round", "match_number", "phase", "group", "participant1_id", "participant2_id", "campus_id", "field", "starts_at", "ends_at", "bronze"}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write schedule csv header: %w", err)
	}

	for _, s := range sessions {
		record := []string{
			strconv.Itoa(s.Round),
			strconv.Itoa(s.MatchNumber),
			string(s.Phase),
			optionalInt(s.GroupNumber),
			optionalInt(s.Participant1ID),
			optionalInt(s.Participant2ID),
			strconv.Itoa(s.CampusID),
			strconv.Itoa(s.FieldNumber),
			s.StartsAt.Format(time.RFC3339),
			s.EndsAt.Format(time.RFC3339),
			strconv.FormatBool(s.IsBronze),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write schedule csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush schedule csv: %w", err)
	}

	key := fmt.Sprintf("tournaments/%d/schedule.csv", t.ID)
	result, err := e.uploader.Upload(ctx, key, "text/csv", &buf)
	if err != nil {
		return fmt.Errorf("failed to upload schedule export for tournament %d: %w", t.ID, err)
	}

	e.logger.Info("schedule export uploaded",
		slog.Int("tournament_id", t.ID),
		slog.String("key", result.Key),
		slog.String("url", e.uploader.GetPublicURL(result.Key)),
	)
	return nil
}

func optionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
