package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/scheduler"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
	"github.com/noah-isme/sma-timetable-api/pkg/jobs"
	"github.com/noah-isme/sma-timetable-api/pkg/middleware/requestid"
)

type academicSessionReader interface {
	FindByID(ctx context.Context, tenantID, id string) (*models.AcademicSession, error)
}

type timetableTemplateLister interface {
	ListActive(ctx context.Context, tenantID string) ([]models.TimetableTemplate, error)
}

type subjectRequirementLister interface {
	ListForSection(ctx context.Context, scope models.TimetableScope) ([]models.SubjectRequirement, error)
}

type calendarReader interface {
	ListRange(ctx context.Context, tenantID, sessionID string, from, to time.Time) ([]models.CalendarDay, error)
}

type timetableAssignmentStore interface {
	assignmentWriter
	ListTeacherBusy(ctx context.Context, scope models.TimetableScope) ([]models.TeacherBusySlot, error)
	ListBySection(ctx context.Context, scope models.TimetableScope) ([]models.TimetableAssignment, error)
}

type sectionLocker interface {
	Key(tenantID, sessionID, sectionID string) string
	Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error)
	Release(ctx context.Context, key, token string) error
}

const (
	generateJobType = "timetable.generate"
	generationQueue = "timetable-generation"
)

// TimetableGeneratorConfig governs generator behaviour.
type TimetableGeneratorConfig struct {
	Enabled  bool
	LockTTL  time.Duration
	CacheTTL time.Duration
	RunTTL   time.Duration
	Timeout  time.Duration
	Workers  int
	Retries  int
	Defaults scheduler.Rules
}

// TimetableGeneratorService loads a section's inputs, runs the scheduler and
// persists the resulting weekly timetable.
type TimetableGeneratorService struct {
	sessions     academicSessionReader
	templates    timetableTemplateLister
	requirements subjectRequirementLister
	calendar     calendarReader
	assignments  timetableAssignmentStore
	persister    *timetablePersister
	locks        sectionLocker
	cache        *CacheService
	metrics      *MetricsService
	validator    *validator.Validate
	logger       *zap.Logger
	cfg          TimetableGeneratorConfig
	runs         *runStore
	queue        *jobs.Queue
}

// NewTimetableGeneratorService wires generator dependencies.
func NewTimetableGeneratorService(
	sessions academicSessionReader,
	templates timetableTemplateLister,
	requirements subjectRequirementLister,
	calendar calendarReader,
	assignments timetableAssignmentStore,
	directory directoryChecker,
	locks sectionLocker,
	tx txProvider,
	cache *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg TimetableGeneratorConfig,
) *TimetableGeneratorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 2 * time.Minute
	}
	if cfg.RunTTL <= 0 {
		cfg.RunTTL = 30 * time.Minute
	}
	if cfg.Defaults == (scheduler.Rules{}) {
		cfg.Defaults = scheduler.DefaultRules
	}
	svc := &TimetableGeneratorService{
		sessions:     sessions,
		templates:    templates,
		requirements: requirements,
		calendar:     calendar,
		assignments:  assignments,
		persister:    newTimetablePersister(assignments, directory, tx, logger),
		locks:        locks,
		cache:        cache,
		metrics:      metrics,
		validator:    validate,
		logger:       logger,
		cfg:          cfg,
		runs:         newRunStore(cfg.RunTTL),
	}
	svc.queue = jobs.NewQueue(generationQueue, svc.handleRunJob, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.Retries,
		Logger:     logger,
		OnGiveUp:   svc.giveUpRun,
	})
	metrics.TrackQueueDepth(generationQueue, svc.queue.Pending)
	return svc
}

// Start launches the asynchronous generation workers.
func (s *TimetableGeneratorService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop waits for in-flight asynchronous runs to finish.
func (s *TimetableGeneratorService) Stop() {
	s.queue.Stop()
}

// Generate builds and persists the timetable for one section synchronously.
func (s *TimetableGeneratorService) Generate(ctx context.Context, tenantID string, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error) {
	started := time.Now()
	resp, err := s.generate(ctx, tenantID, req)
	s.observe(started, resp, err)
	return resp, err
}

// GenerateAsync checks the request and session up front, then queues the run.
func (s *TimetableGeneratorService) GenerateAsync(ctx context.Context, tenantID string, req dto.GenerateTimetableRequest) (*dto.TimetableRun, error) {
	if err := s.precheck(req); err != nil {
		return nil, err
	}
	scope := scopeFor(tenantID, req)
	if _, err := s.loadSession(ctx, scope); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	run := dto.TimetableRun{
		RunID:     uuid.NewString(),
		TenantID:  tenantID,
		Status:    dto.TimetableRunPending,
		Request:   req,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.runs.Save(run)
	job := jobs.Job{ID: run.RunID, Type: generateJobType, Payload: run}
	if err := s.queue.Enqueue(job); err != nil {
		s.runs.Delete(run.RunID)
		if errors.Is(err, jobs.ErrQueueFull) {
			return nil, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "too many timetable generations queued, retry later")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to queue timetable generation")
	}
	s.logger.Info("timetable generation queued",
		zap.String("run_id", run.RunID),
		zap.String("request_id", requestid.FromContext(ctx)),
		zap.String("tenant_id", tenantID),
		zap.String("section_id", req.SectionID),
	)
	return &run, nil
}

// RunStatus returns an asynchronous run owned by the tenant.
func (s *TimetableGeneratorService) RunStatus(ctx context.Context, tenantID, runID string) (*dto.TimetableRun, error) {
	run, ok := s.runs.Get(runID)
	if !ok || run.TenantID != tenantID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable run not found or expired")
	}
	return &run, nil
}

// Get returns the persisted timetable of a section.
func (s *TimetableGeneratorService) Get(ctx context.Context, scope models.TimetableScope) (*dto.TimetableView, error) {
	view, _, err := s.Lookup(ctx, scope)
	return view, err
}

// Lookup is Get that also reports whether the cache served the result.
func (s *TimetableGeneratorService) Lookup(ctx context.Context, scope models.TimetableScope) (*dto.TimetableView, bool, error) {
	key := TimetableKey(scope)
	var cached dto.TimetableView
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, true, nil
	}

	start := time.Now()
	rows, err := s.assignments.ListBySection(ctx, scope)
	s.metrics.ObserveDBQuery("timetable_assignments", time.Since(start))
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	if len(rows) == 0 {
		return nil, false, appErrors.Clone(appErrors.ErrNotFound, "no timetable generated for this section")
	}
	view := buildTimetableView(scope, rows)
	_ = s.cache.Set(ctx, key, view, s.cfg.CacheTTL)
	return view, false, nil
}

func (s *TimetableGeneratorService) precheck(req dto.GenerateTimetableRequest) error {
	if !s.cfg.Enabled {
		return appErrors.Clone(appErrors.ErrForbidden, "timetable generator is disabled")
	}
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable generation payload")
	}
	return nil
}

func (s *TimetableGeneratorService) generate(ctx context.Context, tenantID string, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error) {
	if err := s.precheck(req); err != nil {
		return nil, err
	}
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}
	scope := scopeFor(tenantID, req)

	session, err := s.loadSession(ctx, scope)
	if err != nil {
		return nil, err
	}

	release, err := s.lockSection(ctx, scope)
	if err != nil {
		return nil, err
	}
	defer release()

	in, err := s.loadInputs(ctx, scope, session)
	if err != nil {
		return nil, err
	}

	tpl, err := scheduler.ResolveTemplate(in.templates, strings.TrimSpace(req.TemplateID))
	if err != nil {
		return nil, mapSchedulerError(err)
	}
	layout, err := scheduler.NewLayout(*tpl, session.WorkingWeekdays(), s.cfg.Defaults)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPreconditionFailed.Code, appErrors.ErrPreconditionFailed.Status, "timetable template is not usable")
	}
	reqs, err := scheduler.BuildRequirements(in.requirements, layout)
	if err != nil {
		return nil, mapSchedulerError(err)
	}
	analysis := scheduler.AnalyzeCalendar(in.calendar, layout.Days)

	result, err := scheduler.Generate(scheduler.Input{
		Layout:       layout,
		Requirements: reqs,
		Reliability:  analysis.Reliability,
		TeacherBusy:  busySlots(in.busy),
	})
	if err != nil {
		return nil, mapSchedulerError(err)
	}

	rows := assignmentRows(scope, layout, result)
	if err := s.persister.Replace(ctx, scope, rows); err != nil {
		return nil, err
	}
	_ = s.cache.Invalidate(ctx, TimetablePattern(scope))

	warnings := append([]string{}, analysis.Warnings...)
	warnings = append(warnings, placementWarnings(reqs, result)...)

	resp := &dto.GenerateTimetableResponse{
		Success:           true,
		SlotsCreated:      len(rows),
		Warnings:          warnings,
		LevelReached:      result.LevelReached.String(),
		PlacementsByLevel: make(map[string]int, len(result.PlacementsByLevel)),
		FixedPlaced:       result.FixedPlaced,
		TemplateID:        tpl.ID,
	}
	for _, level := range scheduler.Levels {
		n, ok := result.PlacementsByLevel[level]
		if !ok {
			continue
		}
		resp.PlacementsByLevel[level.String()] = n
		if level > scheduler.LevelStrict && n > 0 {
			s.logger.Debug("relaxation level used",
				zap.String("section_id", scope.SectionID),
				zap.String("level", level.String()),
				zap.Int("placed", n),
			)
		}
	}
	for _, w := range analysis.Warnings {
		s.logger.Warn("calendar reliability", zap.String("section_id", scope.SectionID), zap.String("warning", w))
	}

	s.logger.Info("timetable generated",
		zap.String("request_id", requestid.FromContext(ctx)),
		zap.String("tenant_id", scope.TenantID),
		zap.String("session_id", scope.SessionID),
		zap.String("section_id", scope.SectionID),
		zap.String("template_id", tpl.ID),
		zap.Int("slots_created", resp.SlotsCreated),
		zap.Int("fixed_placed", result.FixedPlaced),
		zap.String("level_reached", resp.LevelReached),
		zap.Int("warnings", len(warnings)),
	)
	return resp, nil
}

func (s *TimetableGeneratorService) loadSession(ctx context.Context, scope models.TimetableScope) (*models.AcademicSession, error) {
	session, err := s.sessions.FindByID(ctx, scope.TenantID, scope.SessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrSessionNotFound, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load academic session")
	}
	if session == nil {
		return nil, appErrors.Clone(appErrors.ErrSessionNotFound, "")
	}
	switch {
	case session.IsLocked:
		return nil, appErrors.Clone(appErrors.ErrSessionLocked, "")
	case session.Status == models.SessionStatusCompleted, session.Status == models.SessionStatusArchived:
		return nil, appErrors.Clone(appErrors.ErrSessionArchived, fmt.Sprintf("academic session is %s", strings.ToLower(string(session.Status))))
	}
	return session, nil
}

// lockSection takes the per-section advisory lock and returns its release func.
func (s *TimetableGeneratorService) lockSection(ctx context.Context, scope models.TimetableScope) (func(), error) {
	if s.locks == nil {
		return func() {}, nil
	}
	key := s.locks.Key(scope.TenantID, scope.SessionID, scope.SectionID)
	token, ok, err := s.locks.Acquire(ctx, key, s.cfg.LockTTL)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to acquire section lock")
	}
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrGenerationInProgress, "")
	}
	return func() {
		if err := s.locks.Release(context.WithoutCancel(ctx), key, token); err != nil {
			s.logger.Warn("release section lock failed", zap.String("key", key), zap.Error(err))
		}
	}, nil
}

type generationInputs struct {
	templates    []models.TimetableTemplate
	requirements []models.SubjectRequirement
	calendar     []models.CalendarDay
	busy         []models.TeacherBusySlot
}

// loadInputs reads everything the scheduler needs concurrently. The busy
// snapshot is taken after the section lock is held.
func (s *TimetableGeneratorService) loadInputs(ctx context.Context, scope models.TimetableScope, session *models.AcademicSession) (*generationInputs, error) {
	var in generationInputs
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		start := time.Now()
		in.templates, err = s.templates.ListActive(gctx, scope.TenantID)
		s.metrics.ObserveDBQuery("timetable_templates", time.Since(start))
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable templates")
		}
		return nil
	})
	g.Go(func() error {
		var err error
		start := time.Now()
		in.requirements, err = s.requirements.ListForSection(gctx, scope)
		s.metrics.ObserveDBQuery("subject_requirements", time.Since(start))
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject requirements")
		}
		return nil
	})
	g.Go(func() error {
		var err error
		start := time.Now()
		in.calendar, err = s.calendar.ListRange(gctx, scope.TenantID, scope.SessionID, session.StartDate, session.EndDate)
		s.metrics.ObserveDBQuery("academic_calendar", time.Since(start))
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load academic calendar")
		}
		return nil
	})
	g.Go(func() error {
		var err error
		start := time.Now()
		in.busy, err = s.assignments.ListTeacherBusy(gctx, scope)
		s.metrics.ObserveDBQuery("teacher_busy_slots", time.Since(start))
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher commitments")
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &in, nil
}

func (s *TimetableGeneratorService) observe(started time.Time, resp *dto.GenerateTimetableResponse, err error) {
	if err == nil {
		level := 0
		for i, l := range scheduler.Levels {
			if l.String() == resp.LevelReached {
				level = i
			}
		}
		s.metrics.ObserveGeneration(OutcomeSuccess, time.Since(started), level, resp.SlotsCreated)
		return
	}
	appErr := appErrors.FromError(err)
	outcome := OutcomeRejected
	if appErr.Status >= 500 {
		outcome = OutcomeFailed
		s.logger.Error("timetable generation failed", zap.String("code", appErr.Code), zap.Error(err))
	} else {
		s.logger.Info("timetable generation rejected", zap.String("code", appErr.Code), zap.String("reason", appErr.Message))
	}
	s.metrics.ObserveGeneration(outcome, time.Since(started), 0, 0)
}

func (s *TimetableGeneratorService) handleRunJob(ctx context.Context, job jobs.Job) error {
	queued, ok := job.Payload.(dto.TimetableRun)
	if !ok {
		return jobs.Permanent{Err: fmt.Errorf("unexpected payload %T", job.Payload)}
	}
	s.runs.Update(queued.RunID, func(run *dto.TimetableRun) {
		run.Status = dto.TimetableRunRunning
	})

	resp, err := s.Generate(ctx, queued.TenantID, queued.Request)
	if err != nil {
		if appErrors.FromError(err).Status < 500 {
			return jobs.Permanent{Err: err}
		}
		return err
	}
	s.runs.Update(queued.RunID, func(run *dto.TimetableRun) {
		finished := time.Now().UTC()
		run.Status = dto.TimetableRunSucceeded
		run.Result = resp
		run.Error = nil
		run.FinishedAt = &finished
	})
	return nil
}

func (s *TimetableGeneratorService) giveUpRun(job jobs.Job, err error) {
	s.runs.Update(job.ID, func(run *dto.TimetableRun) {
		finished := time.Now().UTC()
		run.Status = dto.TimetableRunFailed
		run.Error = appErrors.FromError(err)
		run.FinishedAt = &finished
	})
}

func scopeFor(tenantID string, req dto.GenerateTimetableRequest) models.TimetableScope {
	return models.TimetableScope{
		TenantID:  tenantID,
		SessionID: strings.TrimSpace(req.SessionID),
		ClassID:   strings.TrimSpace(req.ClassID),
		SectionID: strings.TrimSpace(req.SectionID),
	}
}

// mapSchedulerError turns the scheduler's structured failures into coded API errors.
func mapSchedulerError(err error) error {
	var (
		capErr   *scheduler.CapacityError
		unsatErr *scheduler.UnsatisfiableError
	)
	switch {
	case errors.Is(err, scheduler.ErrTemplateMissing):
		return appErrors.Wrap(err, appErrors.ErrTemplateMissing.Code, appErrors.ErrTemplateMissing.Status, appErrors.ErrTemplateMissing.Message)
	case errors.Is(err, scheduler.ErrNoSubjects):
		return appErrors.Wrap(err, appErrors.ErrNoSubjectsConfigured.Code, appErrors.ErrNoSubjectsConfigured.Status, appErrors.ErrNoSubjectsConfigured.Message)
	case errors.As(err, &capErr):
		wrapped := appErrors.Wrap(err, appErrors.ErrCapacityExceeded.Code, appErrors.ErrCapacityExceeded.Status,
			fmt.Sprintf("required periods (%d) exceed available academic slots (%d)", capErr.Required, capErr.Available))
		return appErrors.WithDetails(wrapped, capErr)
	case errors.As(err, &unsatErr):
		wrapped := appErrors.Wrap(err, appErrors.ErrUnsatisfiableRequirements.Code, appErrors.ErrUnsatisfiableRequirements.Status, appErrors.ErrUnsatisfiableRequirements.Message)
		return appErrors.WithDetails(wrapped, map[string]interface{}{
			"subjects": unsatErr.Diagnostics,
			"messages": describeDiagnostics(unsatErr.Diagnostics),
		})
	}
	return appErrors.Wrap(err, appErrors.ErrPreconditionFailed.Code, appErrors.ErrPreconditionFailed.Status, "subject requirements are not usable")
}

func describeDiagnostics(diagnostics []scheduler.SubjectDiagnostic) []string {
	out := make([]string, 0, len(diagnostics))
	for _, d := range diagnostics {
		line := fmt.Sprintf("subject %s: %d of %d periods unplaced", d.SubjectID, d.Remaining, d.Required)
		if d.TeacherID != "" {
			line += fmt.Sprintf("; teacher %s busy in %d slot(s)", d.TeacherID, d.TeacherBusySlots)
		}
		if d.DaysSaturated {
			line += "; every working day already at its daily limit"
		}
		out = append(out, line)
	}
	return out
}

func placementWarnings(reqs []scheduler.Requirement, result *scheduler.Result) []string {
	var warnings []string
	requested := 0
	for _, req := range reqs {
		fixed := len(req.Preferences.FixedSlots)
		if fixed > req.PeriodsPerWeek {
			fixed = req.PeriodsPerWeek
		}
		requested += fixed
	}
	if skipped := requested - result.FixedPlaced; skipped > 0 {
		warnings = append(warnings, fmt.Sprintf("%d fixed slot(s) could not be honored and were scheduled elsewhere", skipped))
	}
	for _, level := range scheduler.Levels {
		if level == scheduler.LevelStrict {
			continue
		}
		if n := result.PlacementsByLevel[level]; n > 0 {
			warnings = append(warnings, fmt.Sprintf("%d period(s) placed at relaxation level %s", n, level))
		}
	}
	return warnings
}

func busySlots(rows []models.TeacherBusySlot) []scheduler.BusySlot {
	out := make([]scheduler.BusySlot, 0, len(rows))
	for _, row := range rows {
		if row.TeacherID == "" || row.DayOfWeek < 0 || row.DayOfWeek > 6 {
			continue
		}
		out = append(out, scheduler.BusySlot{
			TeacherID:  row.TeacherID,
			Coordinate: scheduler.SlotCoordinate{Day: time.Weekday(row.DayOfWeek), Slot: row.SlotNumber},
		})
	}
	return out
}

func assignmentRows(scope models.TimetableScope, layout *scheduler.Layout, result *scheduler.Result) []models.TimetableAssignment {
	rows := make([]models.TimetableAssignment, 0, len(result.Assignments))
	for _, a := range result.Assignments {
		start, end := layout.SlotTimes(a.Coordinate.Slot)
		row := models.TimetableAssignment{
			TenantID:   scope.TenantID,
			SessionID:  scope.SessionID,
			ClassID:    scope.ClassID,
			SectionID:  scope.SectionID,
			DayOfWeek:  int(a.Coordinate.Day),
			SlotNumber: a.Coordinate.Slot,
			SlotType:   a.SlotType,
			StartTime:  start,
			EndTime:    end,
		}
		if a.SubjectID != "" {
			subject := a.SubjectID
			row.SubjectID = &subject
		}
		if a.TeacherID != "" {
			teacher := a.TeacherID
			row.TeacherID = &teacher
		}
		rows = append(rows, row)
	}
	return rows
}

func buildTimetableView(scope models.TimetableScope, rows []models.TimetableAssignment) *dto.TimetableView {
	// ClassID comes from the rows only: the cached view is keyed without it.
	view := &dto.TimetableView{SessionID: scope.SessionID, SectionID: scope.SectionID}
	index := make(map[int]int)
	for _, row := range rows {
		if view.ClassID == "" {
			view.ClassID = row.ClassID
		}
		pos, ok := index[row.DayOfWeek]
		if !ok {
			pos = len(view.Days)
			index[row.DayOfWeek] = pos
			view.Days = append(view.Days, dto.TimetableDay{
				DayOfWeek: row.DayOfWeek,
				DayName:   time.Weekday(row.DayOfWeek).String(),
			})
		}
		view.Days[pos].Slots = append(view.Days[pos].Slots, dto.TimetableSlot{
			SlotNumber: row.SlotNumber,
			SlotType:   string(row.SlotType),
			SubjectID:  row.SubjectID,
			TeacherID:  row.TeacherID,
			StartTime:  row.StartTime,
			EndTime:    row.EndTime,
		})
	}
	sort.SliceStable(view.Days, func(i, j int) bool {
		return mondayFirst(view.Days[i].DayOfWeek) < mondayFirst(view.Days[j].DayOfWeek)
	})
	return view
}

func mondayFirst(day int) int {
	return (day + 6) % 7
}
