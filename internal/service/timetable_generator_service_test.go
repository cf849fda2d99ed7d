package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/repository"
	"github.com/noah-isme/sma-timetable-api/internal/scheduler"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

func testScope() models.TimetableScope {
	return models.TimetableScope{TenantID: "tenant-1", SessionID: "session-1", ClassID: "class-1", SectionID: "section-a"}
}

func testRequest() dto.GenerateTimetableRequest {
	return dto.GenerateTimetableRequest{SessionID: "session-1", ClassID: "class-1", SectionID: "section-a"}
}

func activeSession() *models.AcademicSession {
	return &models.AcademicSession{
		ID:            "session-1",
		TenantID:      "tenant-1",
		StartDate:     time.Date(2026, 7, 13, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2026, 12, 18, 0, 0, 0, 0, time.UTC),
		WeeklyOffDays: pq.Int64Array{0, 6},
		Status:        models.SessionStatusActive,
	}
}

// Six slots a day, break at 4, lunch at 5: twenty academic slots a week.
func sixSlotTemplate() models.TimetableTemplate {
	lunch := 5
	return models.TimetableTemplate{
		ID:                  "tpl-1",
		TenantID:            "tenant-1",
		TotalSlotsPerDay:    6,
		StartTime:           "07:30",
		SlotDurationMinutes: 45,
		BreakSlots:          pq.Int64Array{4},
		LunchSlot:           &lunch,
		IsDefault:           true,
		IsActive:            true,
	}
}

func subjectRecord(subjectID, teacherID string, periods int) models.SubjectRequirement {
	return models.SubjectRequirement{
		TenantID:       "tenant-1",
		SessionID:      "session-1",
		ClassID:        "class-1",
		SubjectID:      subjectID,
		TeacherID:      &teacherID,
		PeriodsPerWeek: periods,
		IsActive:       true,
	}
}

type sessionReaderStub struct {
	session *models.AcademicSession
	err     error
}

func (s sessionReaderStub) FindByID(ctx context.Context, tenantID, id string) (*models.AcademicSession, error) {
	return s.session, s.err
}

type templateListerStub struct {
	items []models.TimetableTemplate
}

func (s templateListerStub) ListActive(ctx context.Context, tenantID string) ([]models.TimetableTemplate, error) {
	return s.items, nil
}

type requirementListerStub struct {
	items []models.SubjectRequirement
}

func (s requirementListerStub) ListForSection(ctx context.Context, scope models.TimetableScope) ([]models.SubjectRequirement, error) {
	return s.items, nil
}

type calendarReaderStub struct {
	days []models.CalendarDay
}

func (s calendarReaderStub) ListRange(ctx context.Context, tenantID, sessionID string, from, to time.Time) ([]models.CalendarDay, error) {
	return s.days, nil
}

type assignmentStoreStub struct {
	mu        sync.Mutex
	busy      []models.TeacherBusySlot
	rows      []models.TimetableAssignment
	inserted  []models.TimetableAssignment
	deleted   int
	listCalls int
	insertErr error
}

func (s *assignmentStoreStub) ListTeacherBusy(ctx context.Context, scope models.TimetableScope) ([]models.TeacherBusySlot, error) {
	return s.busy, nil
}

func (s *assignmentStoreStub) ListBySection(ctx context.Context, scope models.TimetableScope) ([]models.TimetableAssignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	return s.rows, nil
}

func (s *assignmentStoreStub) DeleteBySection(ctx context.Context, exec sqlx.ExtContext, scope models.TimetableScope) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted++
	return int64(len(s.rows)), nil
}

func (s *assignmentStoreStub) InsertBatch(ctx context.Context, exec sqlx.ExtContext, rows []models.TimetableAssignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return s.insertErr
	}
	s.inserted = append(s.inserted, rows...)
	return nil
}

type directoryStub struct {
	missingSubjects []string
	missingTeachers []string
}

func (s directoryStub) MissingSubjectIDs(ctx context.Context, tenantID string, ids []string) ([]string, error) {
	return s.missingSubjects, nil
}

func (s directoryStub) MissingTeacherIDs(ctx context.Context, tenantID string, ids []string) ([]string, error) {
	return s.missingTeachers, nil
}

type sectionLockStub struct {
	mu       sync.Mutex
	held     bool
	acquired int
	released int
}

func (s *sectionLockStub) Key(tenantID, sessionID, sectionID string) string {
	return tenantID + ":" + sessionID + ":" + sectionID
}

func (s *sectionLockStub) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.held {
		return "", false, nil
	}
	s.acquired++
	return "token", true, nil
}

func (s *sectionLockStub) Release(ctx context.Context, key, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.released++
	return nil
}

type cacheRepoStub struct {
	mu          sync.Mutex
	items       map[string][]byte
	invalidated []string
}

func newCacheRepoStub() *cacheRepoStub {
	return &cacheRepoStub{items: make(map[string][]byte)}
}

func (c *cacheRepoStub) Get(ctx context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.items[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *cacheRepoStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = raw
	return nil
}

func (c *cacheRepoStub) DeleteByPattern(ctx context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, pattern)
	c.items = make(map[string][]byte)
	return nil
}

type txProviderMock struct {
	db *sqlx.DB
}

func newTxProviderMock(t *testing.T) (txProvider, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	t.Cleanup(func() { db.Close() })
	return &txProviderMock{db: sqlxdb}, mock
}

func (t *txProviderMock) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return t.db.BeginTxx(ctx, opts)
}

type generatorFixture struct {
	session      *models.AcademicSession
	sessionErr   error
	templates    []models.TimetableTemplate
	requirements []models.SubjectRequirement
	calendar     []models.CalendarDay
	store        *assignmentStoreStub
	directory    directoryStub
	lock         *sectionLockStub
	cacheRepo    *cacheRepoStub
	metrics      *MetricsService
	disabled     bool
}

func newGeneratorFixture() *generatorFixture {
	return &generatorFixture{
		session:   activeSession(),
		templates: []models.TimetableTemplate{sixSlotTemplate()},
		requirements: []models.SubjectRequirement{
			subjectRecord("subj-x", "t-x", 10),
			subjectRecord("subj-y", "t-y", 10),
		},
		store:     &assignmentStoreStub{},
		lock:      &sectionLockStub{},
		cacheRepo: newCacheRepoStub(),
		metrics:   NewMetricsService(),
	}
}

func (f *generatorFixture) build(t *testing.T, tx txProvider) *TimetableGeneratorService {
	t.Helper()
	cache := NewCacheService(f.cacheRepo, f.metrics, time.Minute, zap.NewNop(), true)
	return NewTimetableGeneratorService(
		sessionReaderStub{session: f.session, err: f.sessionErr},
		templateListerStub{items: f.templates},
		requirementListerStub{items: f.requirements},
		calendarReaderStub{days: f.calendar},
		f.store,
		f.directory,
		f.lock,
		tx,
		cache,
		f.metrics,
		validator.New(),
		zap.NewNop(),
		TimetableGeneratorConfig{
			Enabled:  !f.disabled,
			RunTTL:   time.Hour,
			Workers:  1,
			Defaults: scheduler.DefaultRules,
		},
	)
}

func counterValue(t *testing.T, reg *prometheus.Registry, name, outcome string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "outcome" && label.GetValue() == outcome {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func requireAppError(t *testing.T, err error, target *appErrors.Error) *appErrors.Error {
	t.Helper()
	require.Error(t, err)
	require.ErrorIs(t, err, target)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, target.Status, appErr.Status)
	return appErr
}

func TestTimetableGeneratorGenerateSuccess(t *testing.T) {
	tx, mock := newTxProviderMock(t)
	fx := newGeneratorFixture()
	svc := fx.build(t, tx)

	mock.ExpectBegin()
	mock.ExpectCommit()

	resp, err := svc.Generate(context.Background(), "tenant-1", testRequest())
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, 30, resp.SlotsCreated)
	assert.Equal(t, "tpl-1", resp.TemplateID)
	assert.Empty(t, resp.Warnings)
	require.NoError(t, mock.ExpectationsWereMet())

	require.Len(t, fx.store.inserted, 30)
	perSubject := map[string]int{}
	seen := map[[2]int]bool{}
	for _, row := range fx.store.inserted {
		key := [2]int{row.DayOfWeek, row.SlotNumber}
		assert.False(t, seen[key], "slot written twice: %v", key)
		seen[key] = true
		assert.Equal(t, "section-a", row.SectionID)
		assert.NotEmpty(t, row.StartTime)
		if row.SlotType == models.SlotTypeRegular {
			require.NotNil(t, row.SubjectID)
			require.NotNil(t, row.TeacherID)
			perSubject[*row.SubjectID]++
		} else {
			assert.Nil(t, row.SubjectID)
		}
	}
	assert.Equal(t, map[string]int{"subj-x": 10, "subj-y": 10}, perSubject)

	assert.Equal(t, 1, fx.store.deleted)
	assert.Equal(t, 1, fx.lock.acquired)
	assert.Equal(t, 1, fx.lock.released)
	assert.Equal(t, []string{TimetablePattern(testScope())}, fx.cacheRepo.invalidated)
	assert.Equal(t, float64(1), counterValue(t, fx.metrics.Registry(), "timetable_generation_total", OutcomeSuccess))
}

func TestTimetableGeneratorRowTimes(t *testing.T) {
	tx, mock := newTxProviderMock(t)
	fx := newGeneratorFixture()
	svc := fx.build(t, tx)
	mock.ExpectBegin()
	mock.ExpectCommit()

	_, err := svc.Generate(context.Background(), "tenant-1", testRequest())
	require.NoError(t, err)

	for _, row := range fx.store.inserted {
		if row.DayOfWeek != int(time.Monday) {
			continue
		}
		switch row.SlotNumber {
		case 1:
			assert.Equal(t, "07:30", row.StartTime)
			assert.Equal(t, "08:15", row.EndTime)
		case 4:
			assert.Equal(t, models.SlotTypeBreak, row.SlotType)
			assert.Equal(t, "09:45", row.StartTime)
		case 5:
			assert.Equal(t, models.SlotTypeLunch, row.SlotType)
			assert.Equal(t, "10:30", row.StartTime)
			assert.Equal(t, "11:15", row.EndTime)
		}
	}
}

func TestTimetableGeneratorCapacityExceeded(t *testing.T) {
	tx, mock := newTxProviderMock(t)
	fx := newGeneratorFixture()
	fx.requirements = []models.SubjectRequirement{
		subjectRecord("subj-x", "t-x", 15),
		subjectRecord("subj-y", "t-y", 10),
	}
	svc := fx.build(t, tx)

	_, err := svc.Generate(context.Background(), "tenant-1", testRequest())
	appErr := requireAppError(t, err, appErrors.ErrCapacityExceeded)
	capErr, ok := appErr.Details.(*scheduler.CapacityError)
	require.True(t, ok)
	assert.Equal(t, 25, capErr.Required)
	assert.Equal(t, 20, capErr.Available)

	assert.Empty(t, fx.store.inserted)
	assert.Zero(t, fx.store.deleted)
	assert.Equal(t, 1, fx.lock.released)
	require.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, float64(1), counterValue(t, fx.metrics.Registry(), "timetable_generation_total", OutcomeRejected))
}

func TestTimetableGeneratorUnsatisfiable(t *testing.T) {
	tx, mock := newTxProviderMock(t)
	fx := newGeneratorFixture()
	for day := 1; day <= 5; day++ {
		for _, slot := range []int{1, 2, 3} {
			fx.store.busy = append(fx.store.busy, models.TeacherBusySlot{TeacherID: "t-x", DayOfWeek: day, SlotNumber: slot})
		}
	}
	svc := fx.build(t, tx)

	_, err := svc.Generate(context.Background(), "tenant-1", testRequest())
	appErr := requireAppError(t, err, appErrors.ErrUnsatisfiableRequirements)
	details, ok := appErr.Details.(map[string]interface{})
	require.True(t, ok)
	diagnostics, ok := details["subjects"].([]scheduler.SubjectDiagnostic)
	require.True(t, ok)
	require.Len(t, diagnostics, 1)
	assert.Equal(t, "subj-x", diagnostics[0].SubjectID)
	assert.Equal(t, 5, diagnostics[0].Remaining)
	assert.Equal(t, 15, diagnostics[0].TeacherBusySlots)
	assert.Len(t, details["messages"], 1)

	var unsat *scheduler.UnsatisfiableError
	assert.True(t, errors.As(err, &unsat))
	assert.Empty(t, fx.store.inserted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableGeneratorSessionPreconditions(t *testing.T) {
	locked := activeSession()
	locked.IsLocked = true
	archived := activeSession()
	archived.Status = models.SessionStatusArchived
	completed := activeSession()
	completed.Status = models.SessionStatusCompleted

	cases := []struct {
		name    string
		session *models.AcademicSession
		err     error
		want    *appErrors.Error
	}{
		{name: "missing", err: sql.ErrNoRows, want: appErrors.ErrSessionNotFound},
		{name: "locked", session: locked, want: appErrors.ErrSessionLocked},
		{name: "archived", session: archived, want: appErrors.ErrSessionArchived},
		{name: "completed", session: completed, want: appErrors.ErrSessionArchived},
		{name: "lookup failure", err: errors.New("connection reset"), want: appErrors.ErrInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fx := newGeneratorFixture()
			fx.session = tc.session
			fx.sessionErr = tc.err
			svc := fx.build(t, noopTxProvider{})

			_, err := svc.Generate(context.Background(), "tenant-1", testRequest())
			requireAppError(t, err, tc.want)
			assert.Zero(t, fx.lock.acquired)
		})
	}
}

func TestTimetableGeneratorInputPreconditions(t *testing.T) {
	t.Run("no template", func(t *testing.T) {
		fx := newGeneratorFixture()
		fx.templates = nil
		_, err := fx.build(t, noopTxProvider{}).Generate(context.Background(), "tenant-1", testRequest())
		requireAppError(t, err, appErrors.ErrTemplateMissing)
	})
	t.Run("unknown template id", func(t *testing.T) {
		fx := newGeneratorFixture()
		req := testRequest()
		req.TemplateID = "tpl-404"
		_, err := fx.build(t, noopTxProvider{}).Generate(context.Background(), "tenant-1", req)
		requireAppError(t, err, appErrors.ErrTemplateMissing)
	})
	t.Run("no subjects", func(t *testing.T) {
		fx := newGeneratorFixture()
		fx.requirements = nil
		_, err := fx.build(t, noopTxProvider{}).Generate(context.Background(), "tenant-1", testRequest())
		requireAppError(t, err, appErrors.ErrNoSubjectsConfigured)
	})
	t.Run("invalid payload", func(t *testing.T) {
		fx := newGeneratorFixture()
		_, err := fx.build(t, noopTxProvider{}).Generate(context.Background(), "tenant-1", dto.GenerateTimetableRequest{SessionID: "session-1"})
		requireAppError(t, err, appErrors.ErrValidation)
	})
	t.Run("disabled", func(t *testing.T) {
		fx := newGeneratorFixture()
		fx.disabled = true
		_, err := fx.build(t, noopTxProvider{}).Generate(context.Background(), "tenant-1", testRequest())
		requireAppError(t, err, appErrors.ErrForbidden)
	})
}

func TestTimetableGeneratorSectionLocked(t *testing.T) {
	fx := newGeneratorFixture()
	fx.lock.held = true
	svc := fx.build(t, noopTxProvider{})

	_, err := svc.Generate(context.Background(), "tenant-1", testRequest())
	requireAppError(t, err, appErrors.ErrGenerationInProgress)
	assert.Zero(t, fx.lock.released)
}

func TestTimetableGeneratorIntegrityViolation(t *testing.T) {
	tx, mock := newTxProviderMock(t)
	fx := newGeneratorFixture()
	fx.directory = directoryStub{missingTeachers: []string{"t-y"}}
	svc := fx.build(t, tx)

	_, err := svc.Generate(context.Background(), "tenant-1", testRequest())
	appErr := requireAppError(t, err, appErrors.ErrIntegrityViolation)
	details, ok := appErr.Details.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, []string{"t-y"}, details["missingTeacherIds"])
	assert.Zero(t, fx.store.deleted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableGeneratorDuplicateSlot(t *testing.T) {
	tx, mock := newTxProviderMock(t)
	fx := newGeneratorFixture()
	fx.store.insertErr = &repository.InsertError{DayOfWeek: 1, SlotNumber: 2, Err: &pq.Error{Code: "23505"}}
	svc := fx.build(t, tx)

	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.Generate(context.Background(), "tenant-1", testRequest())
	appErr := requireAppError(t, err, appErrors.ErrDuplicateSlot)
	assert.Equal(t, map[string]int{"dayOfWeek": 1, "slotNumber": 2}, appErr.Details)
	assert.Empty(t, fx.cacheRepo.invalidated)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableGeneratorWarnsOnRelaxation(t *testing.T) {
	tx, mock := newTxProviderMock(t)
	fx := newGeneratorFixture()
	x := subjectRecord("subj-x", "t-x", 10)
	x.SchedulingPreferences = []byte(`{"avoidDays":[1]}`)
	fx.requirements = []models.SubjectRequirement{x, subjectRecord("subj-y", "t-y", 10)}
	svc := fx.build(t, tx)
	mock.ExpectBegin()
	mock.ExpectCommit()

	resp, err := svc.Generate(context.Background(), "tenant-1", testRequest())
	require.NoError(t, err)
	assert.NotEqual(t, scheduler.LevelStrict.String(), resp.LevelReached)
	assert.NotEmpty(t, resp.Warnings)
	total := 0
	for _, n := range resp.PlacementsByLevel {
		total += n
	}
	assert.Equal(t, 20, total)
}

func TestTimetableGeneratorGetUsesCache(t *testing.T) {
	fx := newGeneratorFixture()
	subject, teacher := "subj-x", "t-x"
	fx.store.rows = []models.TimetableAssignment{
		{SectionID: "section-a", ClassID: "class-1", DayOfWeek: 2, SlotNumber: 1, SlotType: models.SlotTypeRegular, SubjectID: &subject, TeacherID: &teacher, StartTime: "07:30", EndTime: "08:15"},
		{SectionID: "section-a", ClassID: "class-1", DayOfWeek: 0, SlotNumber: 1, SlotType: models.SlotTypeBreak, StartTime: "07:30", EndTime: "08:15"},
	}
	svc := fx.build(t, noopTxProvider{})
	scope := models.TimetableScope{TenantID: "tenant-1", SessionID: "session-1", SectionID: "section-a"}

	view, err := svc.Get(context.Background(), scope)
	require.NoError(t, err)
	require.Len(t, view.Days, 2)
	assert.Equal(t, "Tuesday", view.Days[0].DayName)
	assert.Equal(t, "Sunday", view.Days[1].DayName)
	assert.Equal(t, "class-1", view.ClassID)

	again, err := svc.Get(context.Background(), scope)
	require.NoError(t, err)
	assert.Equal(t, view, again)
	assert.Equal(t, 1, fx.store.listCalls)
}

func TestTimetableGeneratorGetTakesClassFromRows(t *testing.T) {
	fx := newGeneratorFixture()
	subject, teacher := "subj-x", "t-x"
	fx.store.rows = []models.TimetableAssignment{
		{SectionID: "section-a", ClassID: "class-1", DayOfWeek: 1, SlotNumber: 1, SlotType: models.SlotTypeRegular, SubjectID: &subject, TeacherID: &teacher, StartTime: "07:30", EndTime: "08:15"},
	}
	svc := fx.build(t, noopTxProvider{})

	first, err := svc.Get(context.Background(), models.TimetableScope{TenantID: "tenant-1", SessionID: "session-1", ClassID: "class-9", SectionID: "section-a"})
	require.NoError(t, err)
	assert.Equal(t, "class-1", first.ClassID)

	second, hit, err := svc.Lookup(context.Background(), models.TimetableScope{TenantID: "tenant-1", SessionID: "session-1", ClassID: "class-1", SectionID: "section-a"})
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "class-1", second.ClassID)
	assert.Equal(t, 1, fx.store.listCalls)
}

func TestTimetableGeneratorGetNotFound(t *testing.T) {
	fx := newGeneratorFixture()
	svc := fx.build(t, noopTxProvider{})

	_, err := svc.Get(context.Background(), testScope())
	requireAppError(t, err, appErrors.ErrNotFound)
}

func TestTimetableGeneratorAsyncRun(t *testing.T) {
	tx, mock := newTxProviderMock(t)
	fx := newGeneratorFixture()
	svc := fx.build(t, tx)
	mock.ExpectBegin()
	mock.ExpectCommit()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)
	defer svc.Stop()

	run, err := svc.GenerateAsync(ctx, "tenant-1", testRequest())
	require.NoError(t, err)
	assert.Equal(t, dto.TimetableRunPending, run.Status)

	require.Eventually(t, func() bool {
		current, err := svc.RunStatus(ctx, "tenant-1", run.RunID)
		return err == nil && current.Status == dto.TimetableRunSucceeded
	}, 5*time.Second, 10*time.Millisecond)

	done, err := svc.RunStatus(ctx, "tenant-1", run.RunID)
	require.NoError(t, err)
	require.NotNil(t, done.Result)
	assert.Equal(t, 30, done.Result.SlotsCreated)
	assert.NotNil(t, done.FinishedAt)

	_, err = svc.RunStatus(ctx, "tenant-2", run.RunID)
	requireAppError(t, err, appErrors.ErrNotFound)
}

func TestTimetableGeneratorExportsQueueDepth(t *testing.T) {
	fx := newGeneratorFixture()
	fx.build(t, noopTxProvider{})

	families, err := fx.metrics.Registry().Gather()
	require.NoError(t, err)
	var depth *float64
	for _, family := range families {
		if family.GetName() == "job_queue_depth" && len(family.GetMetric()) == 1 {
			v := family.GetMetric()[0].GetGauge().GetValue()
			depth = &v
		}
	}
	require.NotNil(t, depth)
	assert.Zero(t, *depth)
}

func TestTimetableGeneratorAsyncFailureIsRecorded(t *testing.T) {
	fx := newGeneratorFixture()
	fx.requirements = []models.SubjectRequirement{subjectRecord("subj-x", "t-x", 30)}
	svc := fx.build(t, noopTxProvider{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)
	defer svc.Stop()

	run, err := svc.GenerateAsync(ctx, "tenant-1", testRequest())
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		current, err := svc.RunStatus(ctx, "tenant-1", run.RunID)
		return err == nil && current.Status == dto.TimetableRunFailed
	}, 5*time.Second, 10*time.Millisecond)

	failed, err := svc.RunStatus(ctx, "tenant-1", run.RunID)
	require.NoError(t, err)
	require.NotNil(t, failed.Error)
	assert.Equal(t, appErrors.ErrCapacityExceeded.Code, failed.Error.Code)
}

func TestTimetableGeneratorAsyncChecksSessionFirst(t *testing.T) {
	fx := newGeneratorFixture()
	fx.session.IsLocked = true
	svc := fx.build(t, noopTxProvider{})

	_, err := svc.GenerateAsync(context.Background(), "tenant-1", testRequest())
	requireAppError(t, err, appErrors.ErrSessionLocked)
}

type noopTxProvider struct{}

func (noopTxProvider) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return nil, appErrors.Clone(appErrors.ErrInternal, "transaction provider unavailable")
}
