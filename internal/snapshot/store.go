package snapshot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	pkgerrors "github.com/iapioniers/evasion-backend/internal/pkg/errors"
	"github.com/iapioniers/evasion-backend/internal/platform/logger"
	"github.com/iapioniers/evasion-backend/internal/types"
)

// Snapshot is the immutable pair of tables produced by one pipeline run.
type Snapshot struct {
	RunID      string
	CreatedAt  time.Time
	RawEvents  []types.RawEvent
	ScoredRows []types.ScoredRow
}

// Store persists pipeline runs; the newest run is the one served.
type Store interface {
	Save(ctx context.Context, runID string, events []types.RawEvent, rows []types.ScoredRow) error
	LoadLatest(ctx context.Context) (*Snapshot, error)
}

type runRecord struct {
	RunID     string    `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"index"`
}

func (runRecord) TableName() string { return "pipeline_run" }

type rawEventRecord struct {
	ID             uint   `gorm:"primaryKey"`
	RunID          string `gorm:"index"`
	types.RawEvent `gorm:"embedded"`
}

func (rawEventRecord) TableName() string { return "raw_event" }

type scoredRowRecord struct {
	ID              uint   `gorm:"primaryKey"`
	RunID           string `gorm:"index"`
	types.ScoredRow `gorm:"embedded"`
}

func (scoredRowRecord) TableName() string { return "scored_feature" }

type sqliteStore struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStore(path string, baseLog *logger.Logger) (Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create snapshot dir: %w", err)
		}
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open snapshot db: %w", err)
	}
	if err := db.AutoMigrate(&runRecord{}, &rawEventRecord{}, &scoredRowRecord{}); err != nil {
		return nil, fmt.Errorf("snapshot automigrate: %w", err)
	}
	return &sqliteStore{db: db, log: baseLog.With("component", "SnapshotStore")}, nil
}

func (s *sqliteStore) Save(ctx context.Context, runID string, events []types.RawEvent, rows []types.ScoredRow) error {
	eventRecords := make([]rawEventRecord, len(events))
	for i, ev := range events {
		eventRecords[i] = rawEventRecord{RunID: runID, RawEvent: ev}
	}
	rowRecords := make([]scoredRowRecord, len(rows))
	for i, row := range rows {
		rowRecords[i] = scoredRowRecord{RunID: runID, ScoredRow: row}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&runRecord{RunID: runID, CreatedAt: time.Now().UTC()}).Error; err != nil {
			return err
		}
		if len(eventRecords) > 0 {
			if err := tx.CreateInBatches(eventRecords, 500).Error; err != nil {
				return err
			}
		}
		if len(rowRecords) > 0 {
			if err := tx.CreateInBatches(rowRecords, 500).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	s.log.Info("Snapshot saved", "run_id", runID, "events", len(events), "rows", len(rows))
	return nil
}

func (s *sqliteStore) LoadLatest(ctx context.Context) (*Snapshot, error) {
	var run runRecord
	err := s.db.WithContext(ctx).Order("created_at DESC").First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("load latest run: %w", err)
	}

	var eventRecords []rawEventRecord
	if err := s.db.WithContext(ctx).Where("run_id = ?", run.RunID).Order("id").Find(&eventRecords).Error; err != nil {
		return nil, fmt.Errorf("load raw events: %w", err)
	}
	var rowRecords []scoredRowRecord
	if err := s.db.WithContext(ctx).Where("run_id = ?", run.RunID).Order("id").Find(&rowRecords).Error; err != nil {
		return nil, fmt.Errorf("load scored rows: %w", err)
	}

	snap := &Snapshot{
		RunID:      run.RunID,
		CreatedAt:  run.CreatedAt,
		RawEvents:  make([]types.RawEvent, len(eventRecords)),
		ScoredRows: make([]types.ScoredRow, len(rowRecords)),
	}
	for i, rec := range eventRecords {
		snap.RawEvents[i] = rec.RawEvent
	}
	for i, rec := range rowRecords {
		snap.ScoredRows[i] = rec.ScoredRow
	}
	return snap, nil
}
