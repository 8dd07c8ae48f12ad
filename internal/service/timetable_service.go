package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/campusops/timetable-api/internal/dto"
	"github.com/campusops/timetable-api/internal/engine"
	"github.com/campusops/timetable-api/internal/models"
	"github.com/campusops/timetable-api/pkg/config"
	appErrors "github.com/campusops/timetable-api/pkg/errors"
	"github.com/campusops/timetable-api/pkg/jobs"
	"github.com/campusops/timetable-api/pkg/runlock"
)

type timetableEntryStore interface {
	ReplaceForConfig(ctx context.Context, exec sqlx.ExtContext, configID string, entries []models.TimetableEntry) error
	List(ctx context.Context, filter models.TimetableEntryFilter) ([]models.TimetableEntry, error)
	FindByID(ctx context.Context, id string) (*models.TimetableEntry, error)
	UpdateSlots(ctx context.Context, exec sqlx.ExtContext, entries []models.TimetableEntry) error
}

type generationRunStore interface {
	Create(ctx context.Context, exec sqlx.ExtContext, run *models.GenerationRun) error
	Finish(ctx context.Context, exec sqlx.ExtContext, run *models.GenerationRun) error
	FindByID(ctx context.Context, id string) (*models.GenerationRun, error)
	FindLatestByConfig(ctx context.Context, configID string) (*models.GenerationRun, error)
}

type seedWriter interface {
	UpdateSeed(ctx context.Context, exec sqlx.ExtContext, id string, seed int64) error
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// TimetableService orchestrates generation runs and single-slot edits
// around the scheduling engine.
type TimetableService struct {
	loader  snapshotLoader
	entries timetableEntryStore
	runs    generationRunStore
	seeds   seedWriter
	tx      txProvider

	locker  runlock.Locker
	sched   config.SchedulerConfig
	metrics *MetricsService
	queue   *jobs.Queue

	validator *validator.Validate
	logger    *zap.Logger
}

// NewTimetableService wires the generation pipeline dependencies.
func NewTimetableService(
	configs scheduleConfigReader,
	teachers teacherLister,
	rooms roomLister,
	batches batchReader,
	subjects subjectLister,
	assignments assignmentLister,
	entries timetableEntryStore,
	runs generationRunStore,
	seeds seedWriter,
	tx txProvider,
	locker runlock.Locker,
	sched config.SchedulerConfig,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if locker == nil {
		locker = runlock.NewMemoryLocker()
	}
	if sched.RunBudget <= 0 {
		sched.RunBudget = 2 * time.Minute
	}
	if sched.LockTTL <= 0 {
		sched.LockTTL = 5 * time.Minute
	}
	return &TimetableService{
		loader: snapshotLoader{
			configs:     configs,
			teachers:    teachers,
			rooms:       rooms,
			batches:     batches,
			subjects:    subjects,
			assignments: assignments,
		},
		entries:   entries,
		runs:      runs,
		seeds:     seeds,
		tx:        tx,
		locker:    locker,
		sched:     sched,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
	}
}

// AttachQueue enables asynchronous generation through the job queue.
func (s *TimetableService) AttachQueue(queue *jobs.Queue) {
	s.queue = queue
}

func engineOptions(sched config.SchedulerConfig) engine.Options {
	return engine.Options{
		WeightCompactness:   sched.WeightCompactness,
		WeightTeacherBreak:  sched.WeightTeacherBreak,
		WeightDaySpread:     sched.WeightDaySpread,
		BacktrackMultiplier: sched.BacktrackMultiplier,
		CompactorMaxPasses:  sched.CompactorMaxPasses,
		AllowLabFallback:    sched.AllowLabFallback,
		ThesisDay:           sched.ThesisDay,
		FridayPracticalCap:  sched.FridayPracticalCap,
		FridayTheoryCap:     sched.FridayTheoryCap,
		DayTailCap:          sched.DayTailCap,
		SeniorSemesterFloor: sched.SeniorSemesterFloor,
	}
}

// Generate runs the full pipeline for a configuration and persists the
// output. Two runs for the same configuration are mutually exclusive;
// a second request while one is in flight is rejected, never
// interleaved. Absent Regenerate, the stored seed is reused so
// unchanged input reproduces identical entries.
func (s *TimetableService) Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid generation payload")
	}
	if s.tx == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}

	release, acquired, err := s.locker.Acquire(ctx, req.ConfigID, s.sched.LockTTL)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to acquire generation lock")
	}
	if !acquired {
		return nil, appErrors.Clone(appErrors.ErrRunInProgress, "a generation run for this configuration is already in progress")
	}
	defer release()

	snap, err := s.loader.load(ctx, req.ConfigID)
	if err != nil {
		return nil, err
	}

	seed := snap.Config.Seed
	if req.Regenerate {
		seed = time.Now().UTC().UnixNano()
	}

	runCtx, cancel := context.WithTimeout(ctx, s.sched.RunBudget)
	defer cancel()

	// A RUNNING row is visible while the engine works, so pollers of the
	// latest run see a run in flight rather than stale terminal state.
	started := time.Now()
	run := &models.GenerationRun{
		ID:        uuid.NewString(),
		ConfigID:  req.ConfigID,
		Seed:      seed,
		Status:    models.GenerationRunStatusRunning,
		StartedAt: started.UTC(),
	}
	if err := s.runs.Create(ctx, nil, run); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record generation run")
	}

	result, err := engine.New(engineOptions(s.sched)).Generate(runCtx, snap, seed)
	elapsed := time.Since(started)
	if err != nil {
		s.finishFailed(ctx, run, elapsed, err)
		s.metrics.ObserveGenerationRun(string(models.GenerationRunStatusFailed), elapsed, 0, 0)
		return nil, appErrors.Wrap(err, appErrors.ErrConfiguration.Code, appErrors.ErrConfiguration.Status, "scheduling configuration rejected")
	}

	status := models.GenerationRunStatusCompleted
	if len(result.FailedSessions) > 0 {
		status = models.GenerationRunStatusPartial
	}

	finished := time.Now().UTC()
	run.Status = status
	run.PlacedCount = result.Stats.SessionsPlaced
	run.FailedCount = result.Stats.SessionsFailed
	run.ElapsedMs = elapsed.Milliseconds()
	run.FinishedAt = &finished

	for i := range result.Entries {
		result.Entries[i].RunID = run.ID
	}

	if err := s.persistRun(ctx, req, run, result.Entries, seed); err != nil {
		s.finishFailed(ctx, run, elapsed, err)
		return nil, err
	}

	s.metrics.ObserveGenerationRun(string(status), elapsed, result.Stats.SessionsFailed, result.Stats.BacktrackSteps)
	s.logger.Info("generation run finished",
		zap.String("config_id", req.ConfigID),
		zap.String("run_id", run.ID),
		zap.String("status", string(status)),
		zap.Int("placed", result.Stats.SessionsPlaced),
		zap.Int("failed", result.Stats.SessionsFailed),
		zap.Duration("elapsed", elapsed),
	)

	return &dto.GenerateTimetableResponse{
		RunID:          run.ID,
		ConfigID:       req.ConfigID,
		Seed:           seed,
		Status:         string(status),
		Entries:        result.Entries,
		FailedSessions: result.FailedSessions,
		ConfigIssues:   result.ConfigIssues,
		Report:         result.Report,
		Stats:          result.Stats,
	}, nil
}

// finishFailed records a terminal FAILED state for a run whose output
// never made it to storage. Best effort; the caller's error wins.
func (s *TimetableService) finishFailed(ctx context.Context, run *models.GenerationRun, elapsed time.Duration, cause error) {
	msg := cause.Error()
	finished := time.Now().UTC()
	run.Status = models.GenerationRunStatusFailed
	run.ErrorMessage = &msg
	run.ElapsedMs = elapsed.Milliseconds()
	run.FinishedAt = &finished

	if err := s.runs.Finish(ctx, nil, run); err != nil {
		s.logger.Warn("failed to mark generation run failed",
			zap.String("run_id", run.ID),
			zap.Error(err),
		)
	}
}

func (s *TimetableService) persistRun(ctx context.Context, req dto.GenerateTimetableRequest, run *models.GenerationRun, entries []models.TimetableEntry, seed int64) error {
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.runs.Finish(ctx, tx, run); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record generation run")
	}
	if err = s.entries.ReplaceForConfig(ctx, tx, req.ConfigID, entries); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist timetable entries")
	}
	if req.Regenerate {
		if err = s.seeds.UpdateSeed(ctx, tx, req.ConfigID, seed); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store regeneration seed")
		}
	}
	if err = tx.Commit(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit generation run")
	}
	return nil
}

// MoveEntry applies a single-slot edit after re-running only the local
// hard-constraint checks. An illegal target leaves stored entries
// untouched and names the violated constraint.
func (s *TimetableService) MoveEntry(ctx context.Context, entryID string, req dto.MoveEntryRequest) (*dto.MoveEntryResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid move payload")
	}

	entry, err := s.entries.FindByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable entry not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable entry")
	}

	snap, err := s.loader.load(ctx, entry.ConfigID)
	if err != nil {
		return nil, err
	}

	all, err := s.entries.List(ctx, models.TimetableEntryFilter{ConfigID: entry.ConfigID})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable entries")
	}

	outcome, violated, err := engine.CheckMove(snap, engineOptions(s.sched), all, engine.MoveRequest{
		EntryID:   entryID,
		NewDay:    req.NewDay,
		NewPeriod: req.NewPeriod,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to evaluate move")
	}
	if violated != "" {
		s.metrics.ObserveMoveRejected(violated)
		return &dto.MoveEntryResponse{Success: false, RejectedReason: violated}, nil
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.entries.UpdateSlots(ctx, tx, outcome.Updated); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist moved entry")
	}
	if err = tx.Commit(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit moved entry")
	}

	return &dto.MoveEntryResponse{Success: true, Updated: outcome.Updated}, nil
}

// ListEntries returns stored entries for display.
func (s *TimetableService) ListEntries(ctx context.Context, query dto.TimetableEntryQuery) ([]models.TimetableEntry, error) {
	if query.ConfigID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "configId is required")
	}
	entries, err := s.entries.List(ctx, models.TimetableEntryFilter{
		ConfigID: query.ConfigID,
		Section:  query.Section,
		Teacher:  query.Teacher,
		Day:      query.Day,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetable entries")
	}
	return entries, nil
}

// GetRun returns one generation run by ID.
func (s *TimetableService) GetRun(ctx context.Context, id string) (*models.GenerationRun, error) {
	run, err := s.runs.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "generation run not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load generation run")
	}
	return run, nil
}

// LatestRun returns the most recent run for a configuration.
func (s *TimetableService) LatestRun(ctx context.Context, configID string) (*models.GenerationRun, error) {
	run, err := s.runs.FindLatestByConfig(ctx, configID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no generation run for this configuration")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load generation run")
	}
	return run, nil
}

// EnqueueGenerate schedules an asynchronous generation run and returns
// a job ID for polling.
func (s *TimetableService) EnqueueGenerate(req dto.GenerateTimetableRequest) (*dto.GenerateTimetableAccepted, error) {
	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "asynchronous generation is disabled")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid generation payload")
	}

	job := jobs.Job{
		ID:      uuid.NewString(),
		Type:    "timetable.generate",
		Payload: req,
	}
	if err := s.queue.Enqueue(job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue generation job")
	}

	return &dto.GenerateTimetableAccepted{
		JobID:    job.ID,
		ConfigID: req.ConfigID,
		Status:   string(jobs.StatusQueued),
	}, nil
}

// JobStatus looks up an asynchronous generation job.
func (s *TimetableService) JobStatus(jobID string) (*jobs.Result, error) {
	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "asynchronous generation is disabled")
	}
	result, ok := s.queue.Lookup(jobID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "generation job not found or expired")
	}
	return result, nil
}

// HandleGenerateJob is the queue handler for asynchronous runs.
func (s *TimetableService) HandleGenerateJob(ctx context.Context, job jobs.Job) (interface{}, error) {
	req, ok := job.Payload.(dto.GenerateTimetableRequest)
	if !ok {
		return nil, fmt.Errorf("unexpected payload type for job %s", job.ID)
	}
	return s.Generate(ctx, req)
}
