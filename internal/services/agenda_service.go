package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/assignment-service/internal/agenda"
	"github.com/SAP-F-2025/assignment-service/internal/models"
	"github.com/SAP-F-2025/assignment-service/internal/repositories"
)

type agendaService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewAgendaService(repo repositories.Repository, logger *slog.Logger) AgendaService {
	return &agendaService{
		repo:   repo,
		logger: logger,
	}
}

// AuthorizeView allows learners their own agenda, admins any agenda and
// teachers the agendas of learners in a class they teach.
func (s *agendaService) AuthorizeView(ctx context.Context, viewer models.Caller, learnerID string) error {
	if viewer.ID == learnerID || viewer.IsAdmin() {
		return nil
	}
	if !viewer.IsTeacher() {
		return NewPermissionError(viewer.ID, 0, "agenda", "read", "not the agenda owner")
	}

	memberships, err := s.repo.Roster().ClassesOfStudent(ctx, learnerID)
	if err != nil {
		return fmt.Errorf("failed to load classes: %w", err)
	}
	classIDs := make([]uint, 0, len(memberships))
	for _, m := range memberships {
		classIDs = append(classIDs, m.ClassID)
	}
	if len(classIDs) > 0 {
		teachers, err := s.repo.Roster().TeachersOfClasses(ctx, classIDs)
		if err != nil {
			return fmt.Errorf("failed to load class teachers: %w", err)
		}
		for _, t := range teachers {
			if t == viewer.ID {
				return nil
			}
		}
	}
	return NewPermissionError(viewer.ID, 0, "agenda", "read", "learner is not in a class taught by the viewer")
}

// BuildAgenda merges the learner's assignments, the published courses of
// their teachers that no assignment covers yet, and their personal events.
// Only invalid filters fail; absent progress, colors or classes fall back
// to defaults.
func (s *agendaService) BuildAgenda(ctx context.Context, learnerID string, filters agenda.Filters, now time.Time) (*AgendaResponse, error) {
	if err := filters.Validate(); err != nil {
		return nil, err
	}

	memberships, err := s.repo.Roster().ClassesOfStudent(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load classes: %w", err)
	}
	classIDs := make([]uint, 0, len(memberships))
	for _, m := range memberships {
		classIDs = append(classIDs, m.ClassID)
	}

	teamIDs, err := s.repo.Roster().TeamsOfStudent(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load teams: %w", err)
	}

	assignmentItems, covered, err := s.assignmentItems(ctx, learnerID, classIDs, teamIDs, now)
	if err != nil {
		return nil, err
	}
	courseItems, err := s.courseItems(ctx, learnerID, classIDs, covered, now)
	if err != nil {
		return nil, err
	}
	personalItems, err := s.personalItems(ctx, learnerID, filters)
	if err != nil {
		return nil, err
	}

	items := make([]agenda.Item, 0, len(assignmentItems)+len(courseItems)+len(personalItems))
	items = append(items, assignmentItems...)
	items = append(items, courseItems...)
	items = append(items, personalItems...)

	items = agenda.Apply(items, filters)
	s.logger.DebugContext(ctx, "Agenda built",
		"learner_id", learnerID,
		"assignments", len(assignmentItems),
		"courses", len(courseItems),
		"personal", len(personalItems),
		"filtered", len(items))

	return &AgendaResponse{
		Items:       items,
		Stats:       agenda.ComputeStats(items, now),
		GeneratedAt: now,
	}, nil
}

// assignmentItems also returns the set of courses covered by an assignment
func (s *agendaService) assignmentItems(ctx context.Context, learnerID string, classIDs, teamIDs []uint, now time.Time) ([]agenda.Item, map[uint]struct{}, error) {
	assignments, err := s.repo.Assignment().ListForLearner(ctx, nil, learnerID, classIDs, teamIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load assignments: %w", err)
	}

	covered := make(map[uint]struct{})
	if len(assignments) == 0 {
		return nil, covered, nil
	}

	ids := make([]uint, 0, len(assignments))
	for _, a := range assignments {
		ids = append(ids, a.ID)
	}
	records, err := s.repo.Progress().ListByStudent(ctx, nil, learnerID, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load progress: %w", err)
	}
	status := make(map[uint]models.ProgressStatus, len(records))
	for _, r := range records {
		status[r.AssignmentID] = r.Status
	}

	colors, err := s.classColors(ctx, classIDs)
	if err != nil {
		return nil, nil, err
	}

	items := make([]agenda.Item, 0, len(assignments))
	for _, a := range assignments {
		if course := coveredCourse(a); course != nil {
			covered[*course] = struct{}{}
		}

		st, ok := status[a.ID]
		if !ok {
			st = models.ProgressNotStarted
		}

		end := now
		if a.DueAt != nil {
			end = *a.DueAt
		}
		start := end
		if a.StartAt != nil {
			start = *a.StartAt
		}

		var classColor *string
		if a.TargetType == models.TargetClass && a.ClassID != nil {
			classColor = colors[*a.ClassID]
		}
		priority := a.Priority

		items = append(items, agenda.Item{
			ID:        fmt.Sprintf("assignment-%d", a.ID),
			SourceID:  a.ID,
			Title:     a.Title,
			Start:     start,
			End:       end,
			Category:  agenda.CategoryAssignment,
			Origin:    agenda.OriginTeacher,
			Priority:  &priority,
			Color:     agenda.ColorFor(agenda.CategoryAssignment, classColor, &priority),
			Status:    st,
			TeacherID: a.TeacherID,
			SubjectID: a.SubjectID,
			CourseID:  coveredCourse(a),
		})
	}
	return items, covered, nil
}

func (s *agendaService) courseItems(ctx context.Context, learnerID string, classIDs []uint, covered map[uint]struct{}, now time.Time) ([]agenda.Item, error) {
	if len(classIDs) == 0 {
		return nil, nil
	}

	teachers, err := s.repo.Roster().TeachersOfClasses(ctx, classIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load class teachers: %w", err)
	}
	if len(teachers) == 0 {
		return nil, nil
	}

	courses, err := s.repo.Content().PublishedCoursesTaughtBy(ctx, teachers)
	if err != nil {
		return nil, fmt.Errorf("failed to load published courses: %w", err)
	}

	var items []agenda.Item
	for _, c := range courses {
		if _, ok := covered[c.ID]; ok {
			continue
		}

		pct, err := s.repo.Content().CourseCompletionPercentage(ctx, learnerID, c.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load completion of course %d: %w", c.ID, err)
		}

		courseID, subjectID := c.ID, c.SubjectID
		items = append(items, agenda.Item{
			ID:        fmt.Sprintf("course-%d", c.ID),
			SourceID:  c.ID,
			Title:     c.Title,
			Start:     now,
			End:       now,
			Category:  agenda.CategoryCourse,
			Origin:    agenda.OriginTeacher,
			Color:     agenda.ColorFor(agenda.CategoryCourse, nil, nil),
			Status:    agenda.StatusFromCompletion(pct),
			TeacherID: c.TeacherID,
			SubjectID: &subjectID,
			CourseID:  &courseID,
		})
	}
	return items, nil
}

func (s *agendaService) personalItems(ctx context.Context, learnerID string, filters agenda.Filters) ([]agenda.Item, error) {
	// Personal entries can never pass a teacher-only view
	if filters.Category == agenda.FilterTeacher {
		return nil, nil
	}

	personal, err := s.repo.PersonalEvent().EventsOwnedBy(ctx, nil, learnerID, filters.From, filters.To)
	if err != nil {
		return nil, fmt.Errorf("failed to load personal events: %w", err)
	}

	items := make([]agenda.Item, 0, len(personal))
	for _, e := range personal {
		items = append(items, agenda.Item{
			ID:       fmt.Sprintf("personal-%d", e.ID),
			SourceID: e.ID,
			Title:    e.Title,
			Start:    e.StartAt,
			End:      e.EndAt,
			Category: agenda.CategoryPersonal,
			Origin:   agenda.OriginStudent,
			Color:    agenda.ColorFor(agenda.CategoryPersonal, nil, nil),
			Editable: true,
		})
	}
	return items, nil
}

func (s *agendaService) classColors(ctx context.Context, classIDs []uint) (map[uint]*string, error) {
	colors := make(map[uint]*string, len(classIDs))
	if len(classIDs) == 0 {
		return colors, nil
	}
	classes, err := s.repo.Roster().GetClasses(ctx, classIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load classes: %w", err)
	}
	for i := range classes {
		colors[classes[i].ID] = classes[i].Color
	}
	return colors, nil
}

// coveredCourse is the course an assignment counts against, whatever level
// of the hierarchy it points at.
func coveredCourse(a *models.Assignment) *uint {
	if a.RootCourseID != nil {
		id := *a.RootCourseID
		return &id
	}
	if a.CourseID != nil {
		id := *a.CourseID
		return &id
	}
	return nil
}
