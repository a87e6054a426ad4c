package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iapioniers/evasion-backend/internal/collector"
	"github.com/iapioniers/evasion-backend/internal/features"
	"github.com/iapioniers/evasion-backend/internal/platform/logger"
	"github.com/iapioniers/evasion-backend/internal/scoring"
	"github.com/iapioniers/evasion-backend/internal/snapshot"
)

// RefreshResult summarizes one completed pipeline run.
type RefreshResult struct {
	RunID    string
	Events   int
	Rows     int
	Duration time.Duration
}

// RefreshService runs the full batch: collect, build features, score, and
// persist the snapshot. A fatal collection failure leaves the previous
// snapshot untouched.
type RefreshService interface {
	Refresh(ctx context.Context) (RefreshResult, error)
}

type refreshService struct {
	coll  *collector.Collector
	store snapshot.Store
	log   *logger.Logger
}

func NewRefreshService(coll *collector.Collector, store snapshot.Store, baseLog *logger.Logger) RefreshService {
	return &refreshService{
		coll:  coll,
		store: store,
		log:   baseLog.With("service", "RefreshService"),
	}
}

func (s *refreshService) Refresh(ctx context.Context) (RefreshResult, error) {
	start := time.Now()
	runID := uuid.NewString()
	s.log.Info("Starting snapshot refresh", "run_id", runID)

	events, err := s.coll.Collect(ctx)
	if err != nil {
		return RefreshResult{}, fmt.Errorf("collect events: %w", err)
	}

	rows := features.BuildFeatures(events, time.Time{})
	scored := scoring.Score(rows)

	if err := s.store.Save(ctx, runID, events, scored); err != nil {
		return RefreshResult{}, err
	}

	result := RefreshResult{
		RunID:    runID,
		Events:   len(events),
		Rows:     len(scored),
		Duration: time.Since(start),
	}
	s.log.Info("Snapshot refresh finished",
		"run_id", result.RunID,
		"events", result.Events,
		"rows", result.Rows,
		"duration", result.Duration.String(),
	)
	return result, nil
}
