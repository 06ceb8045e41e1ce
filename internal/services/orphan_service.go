package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/assignment-service/internal/events"
	"github.com/SAP-F-2025/assignment-service/internal/models"
	"github.com/SAP-F-2025/assignment-service/internal/repositories"
	"gorm.io/gorm"
)

type orphanService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
	ops       *ServiceLogger
	window    time.Duration
	now       func() time.Time
}

func NewOrphanService(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger, window time.Duration, now func() time.Time) OrphanService {
	if window <= 0 {
		window = defaultOrphanWindow
	}
	if now == nil {
		now = time.Now
	}
	return &orphanService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		ops:       NewServiceLogger(logger, "orphan_synthesis"),
		window:    window,
		now:       now,
	}
}

// SynthesizeFromScores gives every score not yet covered by a CLASS
// assignment of the learner's current class a synthetic one. Scores that
// cannot be covered are reported as skipped; the sweep never aborts on them.
func (s *orphanService) SynthesizeFromScores(ctx context.Context, scores []*models.ScoreRecord) (*SynthesisResult, error) {
	start := time.Now()
	result := &SynthesisResult{AssignmentIDs: []uint{}, Skipped: []SweepFailure{}}

	for _, score := range scores {
		if err := ctx.Err(); err != nil {
			s.finish(ctx, result, start)
			return result, err
		}

		id, reason, err := s.synthesizeOne(ctx, score)
		switch {
		case err != nil && IsConflict(err):
			reason = SkipConflict
		case err != nil:
			reason = SkipError
			s.ops.LogItemFailure(ctx, "orphan_synthesis", score.ID, err)
		}

		if reason != "" {
			result.SkippedCount++
			result.Skipped = append(result.Skipped, SweepFailure{ID: score.ID, Reason: reason})
			continue
		}
		result.Created++
		result.AssignmentIDs = append(result.AssignmentIDs, id)
	}

	s.finish(ctx, result, start)
	return result, nil
}

func (s *orphanService) SynthesizeByIDs(ctx context.Context, scoreIDs []uint) (*SynthesisResult, error) {
	scores, err := s.repo.Score().ListByIDs(ctx, nil, scoreIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load score records: %w", err)
	}
	if len(scoreIDs) > 0 && len(scores) == 0 {
		return nil, ErrScoreNotFound
	}
	return s.SynthesizeFromScores(ctx, scores)
}

func (s *orphanService) SynthesizeAll(ctx context.Context) (*SynthesisResult, error) {
	scores, _, err := s.repo.Score().List(ctx, nil, repositories.ScoreFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to load score records: %w", err)
	}
	return s.SynthesizeFromScores(ctx, scores)
}

// synthesizeOne returns the new assignment id, or a skip reason when the
// score is covered or cannot be covered.
func (s *orphanService) synthesizeOne(ctx context.Context, score *models.ScoreRecord) (uint, string, error) {
	memberships, err := s.repo.Roster().ClassesOfStudent(ctx, score.StudentID)
	if err != nil {
		return 0, "", fmt.Errorf("failed to load classes of %s: %w", score.StudentID, err)
	}
	if len(memberships) == 0 {
		return 0, SkipNoClass, nil
	}
	// Most recently joined class is the current one
	classID := memberships[0].ClassID

	existing, err := s.repo.Assignment().FindClassAssignmentForCourse(ctx, nil, score.CourseID, classID)
	if err != nil {
		return 0, "", fmt.Errorf("failed to look up class assignment: %w", err)
	}
	if existing != nil {
		return 0, SkipCovered, nil
	}

	course, err := s.repo.Content().GetCourse(ctx, score.CourseID)
	if err != nil {
		return 0, "", fmt.Errorf("failed to get course %d: %w", score.CourseID, err)
	}
	if course == nil {
		return 0, SkipCourseNotFound, nil
	}

	teachers, err := s.repo.Teacher().TeachersEligibleForSubject(ctx, course.SubjectID)
	if err != nil {
		return 0, "", fmt.Errorf("failed to load eligible teachers: %w", err)
	}
	if len(teachers) == 0 {
		return 0, SkipNoEligibleTeacher, nil
	}

	assignment := s.syntheticAssignment(course, classID, pickTeacher(course.TeacherID, teachers))

	var created int64
	err = s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		if err := s.repo.Assignment().Create(ctx, tx, assignment); err != nil {
			if repositories.IsUniqueViolation(err) {
				return fmt.Errorf("%w: course %d class %d", ErrSyntheticExists, score.CourseID, classID)
			}
			return fmt.Errorf("failed to create synthetic assignment: %w", err)
		}

		members, err := s.repo.Roster().MembersOfClass(ctx, classID)
		if err != nil {
			return fmt.Errorf("failed to load members of class %d: %w", classID, err)
		}
		// The scored learner is covered even if the roster lags behind
		members = uniqueIDs(append(members, score.StudentID))

		created, err = s.repo.Progress().InsertMissing(ctx, tx, newProgressRecords(assignment, members, models.ProgressInProgress))
		return err
	})
	if err != nil {
		return 0, "", err
	}

	s.logger.InfoContext(ctx, "Synthetic assignment created",
		"assignment_id", assignment.ID,
		"score_record_id", score.ID,
		"course_id", score.CourseID,
		"class_id", classID,
		"records", created)
	publish(ctx, s.publisher, s.logger, events.NewAssignmentSynthesizedEvent(assignment, score.ID, created))
	return assignment.ID, "", nil
}

func (s *orphanService) syntheticAssignment(course *models.Course, classID uint, teacherID string) *models.Assignment {
	courseID, subjectID := course.ID, course.SubjectID
	start := s.now()
	due := start.Add(s.window)

	return &models.Assignment{
		Title:        course.Title,
		CourseID:     &courseID,
		RootCourseID: &courseID,
		SubjectID:    &subjectID,
		TargetType:   models.TargetClass,
		ClassID:      &classID,
		StartAt:      &start,
		DueAt:        &due,
		Priority:     models.PriorityMedium,
		IsRecurring:  false,
		TeacherID:    teacherID,
		Synthetic:    true,
	}
}

// pickTeacher prefers the course owner when eligible, else the first eligible teacher
func pickTeacher(owner string, eligible []string) string {
	for _, t := range eligible {
		if t == owner {
			return t
		}
	}
	return eligible[0]
}

func (s *orphanService) finish(ctx context.Context, r *SynthesisResult, start time.Time) {
	s.ops.LogSweep(ctx, "orphan_synthesis", time.Since(start),
		slog.Int("created", r.Created),
		slog.Int("skipped", r.SkippedCount),
	)
}
