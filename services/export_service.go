package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gosimple/slug"
	"github.com/ishikisiko/match-telemetry/models"
	"github.com/ishikisiko/match-telemetry/storage"
)

const exportContentType = "application/json"

type ExportResult struct {
	Key      string `json:"key"`
	Location string `json:"location,omitempty"`
	ETag     string `json:"etag,omitempty"`
}

type ExportService interface {
	ExportMatch(ctx context.Context, userID int, matchID int) (*ExportResult, error)
	ExportDetail(ctx context.Context, detail *models.MatchDetail) (*ExportResult, error)
}

type exportBundle struct {
	ExportedAt time.Time `json:"exported_at"`
	*models.MatchDetail
}

type exportService struct {
	analytics AnalyticsService
	objects   storage.ObjectStore
	now       func() time.Time
}

func NewExportService(analytics AnalyticsService, objects storage.ObjectStore) ExportService {
	if objects == nil {
		objects = storage.Disabled{}
	}
	return &exportService{analytics: analytics, objects: objects, now: time.Now}
}

// ExportKey places a bundle under telemetry/<game>/<map>/match-<id>.json.
func ExportKey(match models.Match) string {
	return fmt.Sprintf("telemetry/%s/%s/match-%d.json", slug.Make(match.GameTitle), slug.Make(match.MapName), match.ID)
}

func (s *exportService) ExportMatch(ctx context.Context, userID int, matchID int) (*ExportResult, error) {
	detail, err := s.analytics.MatchDetail(ctx, userID, matchID)
	if err != nil {
		return nil, err
	}
	return s.ExportDetail(ctx, detail)
}

func (s *exportService) ExportDetail(ctx context.Context, detail *models.MatchDetail) (*ExportResult, error) {
	body, err := json.Marshal(exportBundle{ExportedAt: s.now().UTC(), MatchDetail: detail})
	if err != nil {
		return nil, fmt.Errorf("failed to encode export bundle for match %d: %w", detail.Match.ID, err)
	}

	key := ExportKey(detail.Match)
	result, err := s.objects.Put(ctx, key, exportContentType, bytes.NewReader(body))
	if err != nil {
		if errors.Is(err, storage.ErrNotConfigured) {
			return nil, ErrStorageDisabled
		}
		return nil, fmt.Errorf("failed to export match %d: %w", detail.Match.ID, err)
	}
	return &ExportResult{Key: result.Key, Location: result.Location, ETag: result.ETag}, nil
}
