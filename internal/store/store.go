// Package store persists one RunRecord per relocation run to SQLite via
// GORM, the structured-persistence analogue of the run's process-scoped
// DD files and logs: per-run counters kept as durable history rather
// than left to rot in log files only.
package store

import (
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // registers the sqlite3 driver gorm's sqlite dialector uses
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Mode names which of the engine's two data-flow modes a run used.
type Mode string

const (
	ModeMulti  Mode = "multi"
	ModeSingle Mode = "single"
)

// RunRecord is one row: the lifecycle and outcome of a single relocation
// run, keyed by the orchestrator's uuid-generated run id.
type RunRecord struct {
	ID string `gorm:"primaryKey"`

	Mode       Mode `gorm:"type:varchar(16)"`
	WorkingDir string
	Retained   bool

	StartedAt  time.Time `gorm:"index"`
	FinishedAt *time.Time

	Succeeded bool
	Error     string

	// Counters: attempts, performed, accepted, low-SNR, unavailable, for
	// the waveform/cross-correlation pipeline.
	XCorrAttempts        int  `gorm:"column:x_corr_attempts"`
	XCorrPerformed       int  `gorm:"column:x_corr_performed"`
	XCorrAccepted        int  `gorm:"column:x_corr_accepted"`
	LowSNRRejections     int  `gorm:"column:low_snr_rejections"`
	UnavailableWaveforms int  `gorm:"column:unavailable_waveforms"`

	NumEvents    int `gorm:"column:num_events"`
	NumRelocated int `gorm:"column:num_relocated"`
}

// Store wraps the GORM connection used to persist RunRecords.
type Store struct {
	db *gorm.DB
}

// Open opens (creating if necessary) the SQLite database at path and
// migrates the RunRecord table.
func Open(path string, debug bool) (*Store, error) {
	var gormLogger logger.Interface = logger.Default.LogMode(logger.Silent)
	if debug {
		gormLogger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("opening run-record database %s: %w", path, err)
	}
	if err := db.AutoMigrate(&RunRecord{}); err != nil {
		return nil, fmt.Errorf("migrating run-record schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// StartRun inserts a new RunRecord in progress.
func (s *Store) StartRun(id string, mode Mode, workingDir string) error {
	rec := RunRecord{
		ID:         id,
		Mode:       mode,
		WorkingDir: workingDir,
		StartedAt:  startedAt(),
	}
	if err := s.db.Create(&rec).Error; err != nil {
		return fmt.Errorf("creating run record %s: %w", id, err)
	}
	return nil
}

// FinishRun updates an existing RunRecord with its final outcome and
// counters, called exactly once per run when the pipeline completes
// (successfully or not).
func (s *Store) FinishRun(id string, succeeded bool, runErr error, retained bool, counters Counters) error {
	finished := finishedAt()
	updates := map[string]any{
		"finished_at":            &finished,
		"succeeded":              succeeded,
		"retained":               retained,
		"x_corr_attempts":        counters.XCorrAttempts,
		"x_corr_performed":       counters.XCorrPerformed,
		"x_corr_accepted":        counters.XCorrAccepted,
		"low_snr_rejections":     counters.LowSNRRejections,
		"unavailable_waveforms":  counters.UnavailableWaveforms,
		"num_events":             counters.NumEvents,
		"num_relocated":          counters.NumRelocated,
	}
	if runErr != nil {
		updates["error"] = runErr.Error()
	}

	if err := s.db.Model(&RunRecord{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return fmt.Errorf("finishing run record %s: %w", id, err)
	}
	return nil
}

// Counters mirrors the engine's shared, process-wide run counters.
type Counters struct {
	XCorrAttempts        int
	XCorrPerformed       int
	XCorrAccepted        int
	LowSNRRejections     int
	UnavailableWaveforms int
	NumEvents            int
	NumRelocated         int
}

// startedAt and finishedAt exist as thin seams around time.Now so callers
// needing deterministic tests can exercise StartRun/FinishRun's SQL paths
// without depending on wall-clock time directly.
func startedAt() time.Time  { return time.Now().UTC() }
func finishedAt() time.Time { return time.Now().UTC() }
