package services

import (
	"context"

	"github.com/iapioniers/evasion-backend/internal/platform/logger"
	"github.com/iapioniers/evasion-backend/internal/report"
	"github.com/iapioniers/evasion-backend/internal/snapshot"
	"github.com/iapioniers/evasion-backend/internal/types"
)

// EvasionService is the query side: read-only views over the latest snapshot.
type EvasionService interface {
	OverallReport(ctx context.Context, forceReload bool) (types.EvasionReport, error)
	ProfessorRisk(ctx context.Context, professorName string) ([]types.ProfessorRiskRow, error)
	StudentProfile(ctx context.Context, userID string) (types.StudentProfile, error)
	RawLogs(ctx context.Context, forceReload bool) ([]types.RawEvent, error)
}

type evasionService struct {
	snapshots *snapshot.Holder
	mapping   report.ProfessorCourseMapping
	log       *logger.Logger
}

func NewEvasionService(snapshots *snapshot.Holder, mapping report.ProfessorCourseMapping, baseLog *logger.Logger) EvasionService {
	return &evasionService{
		snapshots: snapshots,
		mapping:   mapping,
		log:       baseLog.With("service", "EvasionService"),
	}
}

func (s *evasionService) OverallReport(ctx context.Context, forceReload bool) (types.EvasionReport, error) {
	snap, err := s.snapshots.Get(ctx, forceReload)
	if err != nil {
		return types.EvasionReport{}, err
	}
	return report.BuildOverallReport(snap.ScoredRows), nil
}

func (s *evasionService) ProfessorRisk(ctx context.Context, professorName string) ([]types.ProfessorRiskRow, error) {
	snap, err := s.snapshots.Get(ctx, false)
	if err != nil {
		return nil, err
	}
	owned := s.mapping.CoursesFor(professorName)
	if len(owned) == 0 {
		s.log.Info("No courses mapped for professor", "professor", professorName)
		return []types.ProfessorRiskRow{}, nil
	}
	return report.BuildProfessorRiskList(snap.ScoredRows, owned), nil
}

func (s *evasionService) StudentProfile(ctx context.Context, userID string) (types.StudentProfile, error) {
	snap, err := s.snapshots.Get(ctx, false)
	if err != nil {
		return types.StudentProfile{}, err
	}
	return report.BuildStudentProfile(userID, snap.ScoredRows, snap.RawEvents)
}

func (s *evasionService) RawLogs(ctx context.Context, forceReload bool) ([]types.RawEvent, error) {
	snap, err := s.snapshots.Get(ctx, forceReload)
	if err != nil {
		return nil, err
	}
	return snap.RawEvents, nil
}
