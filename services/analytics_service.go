package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ishikisiko/match-telemetry/analytics"
	"github.com/ishikisiko/match-telemetry/models"
	"github.com/ishikisiko/match-telemetry/repositories"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultRecentLimit = 10
	MaxRecentLimit     = 50
)

// AnalyticsService answers read-only queries. Every call takes a fresh
// snapshot from the store; nothing is cached between calls.
type AnalyticsService interface {
	RecentMatches(ctx context.Context, userID int, limit int) ([]models.Match, error)
	Summary(ctx context.Context, userID int) (*models.AnalyticsSummary, error)
	MatchDetail(ctx context.Context, userID int, matchID int) (*models.MatchDetail, error)
	TTDCurve(ctx context.Context, userID int, matchID int) (*models.TTDCurve, error)
}

type analyticsService struct {
	store  *repositories.Store
	window int
}

func NewAnalyticsService(store *repositories.Store, window int) AnalyticsService {
	if window <= 0 {
		window = analytics.DefaultWindow
	}
	return &analyticsService{store: store, window: window}
}

// ClampLimit bounds a requested page size to [1, MaxRecentLimit]; zero or
// negative means the default.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultRecentLimit
	case limit > MaxRecentLimit:
		return MaxRecentLimit
	default:
		return limit
	}
}

func (s *analyticsService) RecentMatches(ctx context.Context, userID int, limit int) ([]models.Match, error) {
	matches, err := s.store.Matches.ListRecentByOwner(ctx, userID, ClampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list recent matches for user %d: %w", userID, err)
	}
	return matches, nil
}

func (s *analyticsService) Summary(ctx context.Context, userID int) (*models.AnalyticsSummary, error) {
	matches, err := s.store.Matches.ListRecentByOwner(ctx, userID, s.window)
	if err != nil {
		return nil, fmt.Errorf("failed to load analytics window for user %d: %w", userID, err)
	}
	summary := analytics.Summarize(matches, s.window)
	return &summary, nil
}

func (s *analyticsService) MatchDetail(ctx context.Context, userID int, matchID int) (*models.MatchDetail, error) {
	match, err := s.ownedMatch(ctx, userID, matchID)
	if err != nil {
		return nil, err
	}

	detail := &models.MatchDetail{Match: *match}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		detail.Phases, err = s.store.Phases.ListByMatch(gctx, matchID)
		return err
	})
	g.Go(func() (err error) {
		detail.Events, err = s.store.Events.ListByMatch(gctx, matchID)
		return err
	})
	g.Go(func() (err error) {
		detail.TTDSamples, err = s.store.TTDSamples.ListByMatch(gctx, matchID)
		return err
	})
	g.Go(func() (err error) {
		detail.VoiceTurns, err = s.store.VoiceTurns.ListByMatch(gctx, matchID)
		return err
	})
	g.Go(func() (err error) {
		detail.Combos, err = s.store.Combos.ListByMatch(gctx, matchID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load telemetry for match %d: %w", matchID, err)
	}
	return detail, nil
}

func (s *analyticsService) TTDCurve(ctx context.Context, userID int, matchID int) (*models.TTDCurve, error) {
	if _, err := s.ownedMatch(ctx, userID, matchID); err != nil {
		return nil, err
	}
	samples, err := s.store.TTDSamples.ListByMatch(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ttd samples for match %d: %w", matchID, err)
	}
	curve := analytics.BuildCurve(matchID, samples)
	return &curve, nil
}

// ownedMatch hides matches of other users behind ErrMatchNotFound.
func (s *analyticsService) ownedMatch(ctx context.Context, userID int, matchID int) (*models.Match, error) {
	match, err := s.store.Matches.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match %d: %w", matchID, err)
	}
	if match.OwnerID != userID {
		return nil, ErrMatchNotFound
	}
	return match, nil
}
