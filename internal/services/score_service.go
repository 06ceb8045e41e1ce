package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/assignment-service/internal/events"
	"github.com/SAP-F-2025/assignment-service/internal/models"
	"github.com/SAP-F-2025/assignment-service/internal/repositories"
	"github.com/SAP-F-2025/assignment-service/internal/scoring"
	"github.com/SAP-F-2025/assignment-service/internal/validator"
	"github.com/xuri/excelize/v2"
)

type scoreService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	validator *validator.Validator
	logger    *slog.Logger
	ops       *ServiceLogger
}

func NewScoreService(repo repositories.Repository, publisher events.EventPublisher, validator *validator.Validator, logger *slog.Logger) ScoreService {
	return &scoreService{
		repo:      repo,
		publisher: publisher,
		validator: validator,
		logger:    logger,
		ops:       NewServiceLogger(logger, "score"),
	}
}

// RecordRaw stores the full raw input set of a (learner, course) pair and
// recomputes every derived value from it. Partial updates are not accepted.
func (s *scoreService) RecordRaw(ctx context.Context, req *RecordScoreRequest) (rec *models.ScoreRecord, err error) {
	op := s.ops.WithOperation(ctx, "record_score", req.StudentID)
	defer func() {
		var id uint
		if rec != nil {
			id = rec.ID
		}
		op.LogResult(id, "score_record", err)
	}()

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	course, err := s.repo.Content().GetCourse(ctx, req.CourseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	if course == nil {
		return nil, fmt.Errorf("%w: %d", ErrCourseNotFound, req.CourseID)
	}

	rec = &models.ScoreRecord{
		StudentID:          req.StudentID,
		CourseID:           req.CourseID,
		QuizAvg:            req.QuizAvg,
		ExerciseAvg:        req.ExerciseAvg,
		AIComprehension:    req.AIComprehension,
		QuizCount:          req.QuizCount,
		ExerciseCount:      req.ExerciseCount,
		AIInteractionCount: req.AIInteractionCount,
		ExamGrade:          req.ExamGrade,
		ExamDate:           req.ExamDate,
	}
	scoring.Apply(rec)

	if err := s.repo.Score().Upsert(ctx, nil, rec); err != nil {
		return nil, err
	}

	publish(ctx, s.publisher, s.logger, events.NewScoreRecomputedEvent(rec))
	return rec, nil
}

func (s *scoreService) Compute(ctx context.Context, req *ComputeScoreRequest) (*scoring.Derived, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	d := scoring.Compute(req.Raw())
	return &d, nil
}

func (s *scoreService) Get(ctx context.Context, id uint) (*models.ScoreRecord, error) {
	rec, err := s.repo.Score().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrScoreNotFound
		}
		return nil, fmt.Errorf("failed to get score record: %w", err)
	}
	return rec, nil
}

func (s *scoreService) List(ctx context.Context, filters repositories.ScoreFilters) (*ScoreListResponse, error) {
	scores, total, err := s.repo.Score().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list score records: %w", err)
	}
	return &ScoreListResponse{Scores: scores, Total: total}, nil
}

// ===== EXPORT =====

var scoreExportHeaders = []string{
	"Student ID", "Quiz Avg", "Exercise Avg", "AI Comprehension",
	"Quizzes", "Exercises", "AI Interactions",
	"Exam Grade", "Exam Date", "Continuous Score", "Final Score", "Final Grade",
}

// ExportCourse writes every score record of the course to an xlsx workbook.
// A missing exam grade is an empty cell, never 0.
func (s *scoreService) ExportCourse(ctx context.Context, courseID uint) ([]byte, error) {
	course, err := s.repo.Content().GetCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	if course == nil {
		return nil, fmt.Errorf("%w: %d", ErrCourseNotFound, courseID)
	}

	scores, _, err := s.repo.Score().List(ctx, nil, repositories.ScoreFilters{CourseID: &courseID})
	if err != nil {
		return nil, fmt.Errorf("failed to list score records: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Scores"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}

	if err := writeRow(f, sheetName, 1, toCells(scoreExportHeaders)); err != nil {
		return nil, err
	}
	for i, rec := range scores {
		if err := writeRow(f, sheetName, i+2, scoreRow(rec)); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.InfoContext(ctx, "Scores exported", "course_id", courseID, "rows", len(scores))
	return buf.Bytes(), nil
}

func scoreRow(rec *models.ScoreRecord) []interface{} {
	row := []interface{}{
		rec.StudentID,
		rec.QuizAvg,
		rec.ExerciseAvg,
		rec.AIComprehension,
		rec.QuizCount,
		rec.ExerciseCount,
		rec.AIInteractionCount,
		optionalFloat(rec.ExamGrade),
		"",
		rec.ContinuousScore,
		optionalFloat(rec.FinalScore),
		optionalFloat(rec.FinalGrade),
	}
	if rec.ExamDate != nil {
		row[8] = rec.ExamDate.Format("2006-01-02")
	}
	return row
}

func optionalFloat(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

func toCells(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}
