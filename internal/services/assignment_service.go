package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/assignment-service/internal/events"
	"github.com/SAP-F-2025/assignment-service/internal/models"
	"github.com/SAP-F-2025/assignment-service/internal/repositories"
	"github.com/SAP-F-2025/assignment-service/internal/validator"
	"gorm.io/gorm"
)

type assignmentService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	validator *validator.Validator
	logger    *slog.Logger
	ops       *ServiceLogger
}

func NewAssignmentService(repo repositories.Repository, publisher events.EventPublisher, validator *validator.Validator, logger *slog.Logger) AssignmentService {
	return &assignmentService{
		repo:      repo,
		publisher: publisher,
		validator: validator,
		logger:    logger,
		ops:       NewServiceLogger(logger, "assignment"),
	}
}

// ===== CORE OPERATIONS =====

// Create persists the assignment and its fan-out in one transaction; any
// failure leaves neither behind.
func (s *assignmentService) Create(ctx context.Context, req *CreateAssignmentRequest, caller models.Caller) (resp *AssignmentResponse, err error) {
	op := s.ops.WithOperation(ctx, "create_assignment", caller.ID)
	defer func() {
		var id uint
		if resp != nil {
			id = resp.Assignment.ID
		}
		op.LogResult(id, "assignment", err)
	}()

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if !caller.IsTeacher() {
		return nil, NewPermissionError(caller.ID, 0, "assignment", "create", "only teachers issue assignments")
	}

	assignment := buildAssignment(req, caller.ID)
	if err := s.attachContent(ctx, assignment); err != nil {
		return nil, err
	}
	if err := s.checkTarget(ctx, assignment); err != nil {
		return nil, err
	}
	if req.ParentID != nil {
		if _, err := s.getAssignment(ctx, *req.ParentID); err != nil {
			return nil, fmt.Errorf("parent assignment: %w", err)
		}
	}

	var studentIDs []string
	err = s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		if err := s.repo.Assignment().Create(ctx, tx, assignment); err != nil {
			return fmt.Errorf("failed to create assignment: %w", err)
		}

		members, err := resolveAudience(ctx, s.repo.Roster(), assignment)
		if err != nil {
			return err
		}
		records := newProgressRecords(assignment, members, models.ProgressNotStarted)
		if _, err := s.repo.Progress().InsertMissing(ctx, tx, records); err != nil {
			return fmt.Errorf("failed to fan out progress: %w", err)
		}
		studentIDs = members
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Assignment created",
		"assignment_id", assignment.ID,
		"target_type", assignment.TargetType,
		"fan_out", len(studentIDs))
	publish(ctx, s.publisher, s.logger, events.NewAssignmentCreatedEvent(assignment, studentIDs))

	return &AssignmentResponse{
		Assignment: assignment,
		Progress: models.ProgressSummary{
			Total:      len(studentIDs),
			NotStarted: len(studentIDs),
		},
	}, nil
}

func (s *assignmentService) Get(ctx context.Context, id uint) (*AssignmentResponse, error) {
	assignment, err := s.getAssignment(ctx, id)
	if err != nil {
		return nil, err
	}

	summary, err := s.repo.Progress().Summary(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize progress: %w", err)
	}
	return &AssignmentResponse{Assignment: assignment, Progress: *summary}, nil
}

func (s *assignmentService) List(ctx context.Context, filters repositories.AssignmentFilters) (*AssignmentListResponse, error) {
	assignments, total, err := s.repo.Assignment().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	return &AssignmentListResponse{
		Assignments: assignments,
		Total:       total,
		Limit:       filters.Limit,
		Offset:      filters.Offset,
	}, nil
}

// Delete removes the assignment with its children and every progress record
func (s *assignmentService) Delete(ctx context.Context, id uint, caller models.Caller) (err error) {
	op := s.ops.WithOperation(ctx, "delete_assignment", caller.ID)
	defer func() { op.LogResult(id, "assignment", err) }()

	assignment, err := s.getAssignment(ctx, id)
	if err != nil {
		return err
	}
	if assignment.TeacherID != caller.ID && !caller.IsAdmin() {
		return NewPermissionError(caller.ID, id, "assignment", "delete", "not the issuing teacher")
	}

	err = s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		return s.repo.Assignment().DeleteCascade(ctx, tx, id)
	})
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrAssignmentNotFound
		}
		return fmt.Errorf("failed to delete assignment: %w", err)
	}

	publish(ctx, s.publisher, s.logger, events.NewAssignmentDeletedEvent(id, caller.ID))
	return nil
}

// ===== PROGRESS =====

func (s *assignmentService) UpdateProgressStatus(ctx context.Context, assignmentID uint, studentID string, req *UpdateProgressRequest, caller models.Caller) (err error) {
	op := s.ops.WithOperation(ctx, "update_progress", caller.ID)
	defer func() { op.LogResult(assignmentID, "progress", err) }()

	if err := s.validator.Validate(req); err != nil {
		return err
	}
	if caller.ID != studentID && !caller.IsTeacher() {
		return NewPermissionError(caller.ID, assignmentID, "progress", "update", "learners update only their own progress")
	}

	if err := s.repo.Progress().UpdateStatus(ctx, nil, assignmentID, studentID, req.Status); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrProgressNotFound
		}
		return fmt.Errorf("failed to update progress: %w", err)
	}

	publish(ctx, s.publisher, s.logger, events.NewProgressUpdatedEvent(assignmentID, studentID, req.Status))
	return nil
}

func (s *assignmentService) ListProgress(ctx context.Context, assignmentID uint) ([]*models.ProgressRecord, error) {
	if _, err := s.getAssignment(ctx, assignmentID); err != nil {
		return nil, err
	}
	records, err := s.repo.Progress().ListByAssignment(ctx, nil, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}
	return records, nil
}

// ===== HELPERS =====

func (s *assignmentService) getAssignment(ctx context.Context, id uint) (*models.Assignment, error) {
	assignment, err := s.repo.Assignment().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}
	return assignment, nil
}

// attachContent checks the content reference exists and denormalizes its
// root course and subject onto the assignment.
func (s *assignmentService) attachContent(ctx context.Context, a *models.Assignment) error {
	kind, id, ok := a.ContentRef()
	if !ok {
		return ValidationErrors{*NewValidationError("content", "content reference required, exactly one", nil)}
	}

	info, err := s.repo.Content().ResolveContent(ctx, kind, id)
	if err != nil {
		return fmt.Errorf("failed to resolve content: %w", err)
	}
	if info == nil {
		return fmt.Errorf("%w: %s %d", ErrContentNotFound, kind, id)
	}

	rootCourse, subject := info.CourseID, info.SubjectID
	a.RootCourseID = &rootCourse
	a.SubjectID = &subject
	if a.Title == "" {
		a.Title = info.Title
	}
	return nil
}

func (s *assignmentService) checkTarget(ctx context.Context, a *models.Assignment) error {
	switch {
	case a.TargetType == models.TargetClass:
		class, err := s.repo.Roster().GetClass(ctx, *a.ClassID)
		if err != nil {
			return fmt.Errorf("failed to get class: %w", err)
		}
		if class == nil {
			return fmt.Errorf("%w: %d", ErrClassNotFound, *a.ClassID)
		}
	case a.TargetType == models.TargetTeam && !a.HasExplicitMembers():
		team, err := s.repo.Roster().GetTeam(ctx, *a.TeamID)
		if err != nil {
			return fmt.Errorf("failed to get team: %w", err)
		}
		if team == nil {
			return fmt.Errorf("%w: %d", ErrTeamNotFound, *a.TeamID)
		}
	}
	return nil
}

func buildAssignment(req *CreateAssignmentRequest, teacherID string) *models.Assignment {
	priority := req.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}

	a := &models.Assignment{
		Title:          req.Title,
		Description:    req.Description,
		CourseID:       req.CourseID,
		ChapterID:      req.ChapterID,
		SectionID:      req.SectionID,
		TargetType:     req.TargetType,
		StartAt:        req.StartAt,
		DueAt:          req.DueAt,
		Priority:       priority,
		IsRecurring:    req.IsRecurring,
		RecurrenceRule: req.RecurrenceRule,
		TeacherID:      teacherID,
		ParentID:       req.ParentID,
	}

	// Only the descriptor matching the target type is kept
	switch req.TargetType {
	case models.TargetClass:
		a.ClassID = req.ClassID
	case models.TargetTeam:
		if len(req.MemberIDs) > 0 {
			a.MemberIDs = uniqueIDs(req.MemberIDs)
		} else {
			a.TeamID = req.TeamID
		}
	case models.TargetStudent:
		a.StudentID = req.StudentID
	}
	return a
}
