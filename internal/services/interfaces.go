package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/assignment-service/internal/agenda"
	"github.com/SAP-F-2025/assignment-service/internal/cache"
	"github.com/SAP-F-2025/assignment-service/internal/events"
	"github.com/SAP-F-2025/assignment-service/internal/models"
	"github.com/SAP-F-2025/assignment-service/internal/repositories"
	"github.com/SAP-F-2025/assignment-service/internal/scoring"
	"github.com/SAP-F-2025/assignment-service/internal/validator"
)

// AssignmentService creates assignments, fans out progress and serves reads
type AssignmentService interface {
	Create(ctx context.Context, req *CreateAssignmentRequest, caller models.Caller) (*AssignmentResponse, error)
	Get(ctx context.Context, id uint) (*AssignmentResponse, error)
	List(ctx context.Context, filters repositories.AssignmentFilters) (*AssignmentListResponse, error)
	Delete(ctx context.Context, id uint, caller models.Caller) error

	// Learner activity hook
	UpdateProgressStatus(ctx context.Context, assignmentID uint, studentID string, req *UpdateProgressRequest, caller models.Caller) error
	ListProgress(ctx context.Context, assignmentID uint) ([]*models.ProgressRecord, error)
}

// ReconciliationService restores progress completeness after roster drift
type ReconciliationService interface {
	Reconcile(ctx context.Context, scope repositories.ReconcileScope) (*ReconcileResult, error)
}

// OrphanService creates class assignments for scores nothing covers yet
type OrphanService interface {
	SynthesizeFromScores(ctx context.Context, scores []*models.ScoreRecord) (*SynthesisResult, error)
	SynthesizeByIDs(ctx context.Context, scoreIDs []uint) (*SynthesisResult, error)
	SynthesizeAll(ctx context.Context) (*SynthesisResult, error)
}

// ScoreService persists raw activity signals and their derived scores
type ScoreService interface {
	RecordRaw(ctx context.Context, req *RecordScoreRequest) (*models.ScoreRecord, error)
	Compute(ctx context.Context, req *ComputeScoreRequest) (*scoring.Derived, error)
	Get(ctx context.Context, id uint) (*models.ScoreRecord, error)
	List(ctx context.Context, filters repositories.ScoreFilters) (*ScoreListResponse, error)
	ExportCourse(ctx context.Context, courseID uint) ([]byte, error)
}

// AgendaService builds the merged timeline of one learner
type AgendaService interface {
	BuildAgenda(ctx context.Context, learnerID string, filters agenda.Filters, now time.Time) (*AgendaResponse, error)
	AuthorizeView(ctx context.Context, viewer models.Caller, learnerID string) error
}

// PersonalEventService manages learner-owned calendar entries
type PersonalEventService interface {
	Create(ctx context.Context, ownerID string, req *PersonalEventRequest) (*models.PersonalEvent, error)
	Get(ctx context.Context, id uint, ownerID string) (*models.PersonalEvent, error)
	Update(ctx context.Context, id uint, ownerID string, req *PersonalEventRequest) (*models.PersonalEvent, error)
	Delete(ctx context.Context, id uint, ownerID string) error
	List(ctx context.Context, ownerID string, from, to *time.Time) ([]*models.PersonalEvent, error)
}

// FilterService resolves the predefined cascading filter hierarchies
type FilterService interface {
	Hierarchies() []string
	Resolve(ctx context.Context, hierarchy string, req *FilterResolveRequest) (*FilterResolveResponse, error)
	Invalidate(ctx context.Context, hierarchy string) error
}

type ServiceManager interface {
	Assignment() AssignmentService
	Reconciliation() ReconciliationService
	Orphan() OrphanService
	Score() ScoreService
	Agenda() AgendaService
	PersonalEvent() PersonalEventService
	Filter() FilterService
}

// Options tunes the services; zero values fall back to defaults
type Options struct {
	FilterCacheTTL time.Duration
	OrphanWindow   time.Duration
	// Now is the clock; tests pin it
	Now func() time.Time
}

const (
	defaultFilterCacheTTL = 5 * time.Minute
	defaultOrphanWindow   = 30 * 24 * time.Hour
)

type serviceManager struct {
	assignment     AssignmentService
	reconciliation ReconciliationService
	orphan         OrphanService
	score          ScoreService
	agenda         AgendaService
	personalEvent  PersonalEventService
	filter         FilterService
}

func NewServiceManager(
	repo repositories.Repository,
	publisher events.EventPublisher,
	cacheService cache.CacheService,
	validator *validator.Validator,
	logger *slog.Logger,
	opts Options,
) ServiceManager {
	if opts.FilterCacheTTL <= 0 {
		opts.FilterCacheTTL = defaultFilterCacheTTL
	}
	if opts.OrphanWindow <= 0 {
		opts.OrphanWindow = defaultOrphanWindow
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if publisher == nil {
		publisher = events.NewMockEventPublisher(logger)
	}
	if cacheService == nil {
		cacheService = cache.NoopCache{}
	}

	return &serviceManager{
		assignment:     NewAssignmentService(repo, publisher, validator, logger),
		reconciliation: NewReconciliationService(repo, publisher, logger),
		orphan:         NewOrphanService(repo, publisher, logger, opts.OrphanWindow, opts.Now),
		score:          NewScoreService(repo, publisher, validator, logger),
		agenda:         NewAgendaService(repo, logger),
		personalEvent:  NewPersonalEventService(repo, validator, logger),
		filter:         NewFilterService(repo, cacheService, logger, opts.FilterCacheTTL),
	}
}

func (m *serviceManager) Assignment() AssignmentService         { return m.assignment }
func (m *serviceManager) Reconciliation() ReconciliationService { return m.reconciliation }
func (m *serviceManager) Orphan() OrphanService                 { return m.orphan }
func (m *serviceManager) Score() ScoreService                   { return m.score }
func (m *serviceManager) Agenda() AgendaService                 { return m.agenda }
func (m *serviceManager) PersonalEvent() PersonalEventService   { return m.personalEvent }
func (m *serviceManager) Filter() FilterService                 { return m.filter }
