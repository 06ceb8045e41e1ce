package services

import (
	"time"

	"github.com/SAP-F-2025/assignment-service/internal/agenda"
	"github.com/SAP-F-2025/assignment-service/internal/cascade"
	apperrors "github.com/SAP-F-2025/assignment-service/internal/errors"
	"github.com/SAP-F-2025/assignment-service/internal/models"
	"github.com/SAP-F-2025/assignment-service/internal/scoring"
)

// ===== ASSIGNMENT DTOs =====

type CreateAssignmentRequest struct {
	Title       string  `json:"title" validate:"omitempty,max=200"`
	Description *string `json:"description"`

	CourseID  *uint `json:"course_id"`
	ChapterID *uint `json:"chapter_id"`
	SectionID *uint `json:"section_id"`

	TargetType models.TargetType `json:"target_type" validate:"required,target_type"`
	ClassID    *uint             `json:"class_id"`
	TeamID     *uint             `json:"team_id"`
	StudentID  *string           `json:"student_id" validate:"omitempty,max=255"`
	MemberIDs  []string          `json:"member_ids" validate:"omitempty,dive,required,max=255"`

	StartAt  *time.Time      `json:"start_at"`
	DueAt    *time.Time      `json:"due_at"`
	Priority models.Priority `json:"priority" validate:"omitempty,priority"`

	IsRecurring    bool    `json:"is_recurring"`
	RecurrenceRule *string `json:"recurrence_rule" validate:"omitempty,max=500"`

	ParentID *uint `json:"parent_id"`
}

// BusinessRules checks the content reference, the target descriptor and the window.
func (r CreateAssignmentRequest) BusinessRules() ValidationErrors {
	var errs ValidationErrors

	set := 0
	for _, id := range []*uint{r.CourseID, r.ChapterID, r.SectionID} {
		if id != nil {
			set++
		}
	}
	if set != 1 {
		errs = append(errs, *apperrors.NewValidationErrorWithRule("content", "content reference required, exactly one", "exactly_one", set))
	}

	switch r.TargetType {
	case models.TargetClass:
		if r.ClassID == nil {
			errs = append(errs, *apperrors.NewValidationErrorWithRule("class_id", "class_id is required for CLASS targets", "required", nil))
		}
	case models.TargetTeam:
		if len(r.MemberIDs) == 0 && r.TeamID == nil {
			errs = append(errs, *apperrors.NewValidationErrorWithRule("member_ids", "member_ids or team_id is required for TEAM targets", "required", nil))
		}
	case models.TargetStudent:
		if r.StudentID == nil || *r.StudentID == "" {
			errs = append(errs, *apperrors.NewValidationErrorWithRule("student_id", "student_id is required for STUDENT targets", "required", nil))
		}
	}

	if r.StartAt != nil && r.DueAt != nil && r.DueAt.Before(*r.StartAt) {
		errs = append(errs, *apperrors.NewValidationErrorWithRule("due_at", "due_at must not be before start_at", "after_start", r.DueAt))
	}
	return errs
}

type AssignmentResponse struct {
	Assignment *models.Assignment     `json:"assignment"`
	Progress   models.ProgressSummary `json:"progress"`
}

type AssignmentListResponse struct {
	Assignments []*models.Assignment `json:"assignments"`
	Total       int64                `json:"total"`
	Limit       int                  `json:"limit"`
	Offset      int                  `json:"offset"`
}

type UpdateProgressRequest struct {
	Status models.ProgressStatus `json:"status" validate:"required,progress_status"`
}

// ===== SWEEP RESULTS =====

// SweepFailure names one item a sweep could not process
type SweepFailure struct {
	ID     uint   `json:"id"`
	Reason string `json:"reason"`
}

type ReconcileResult struct {
	Scanned        int            `json:"scanned"`
	FixedCount     int            `json:"fixed_count"`
	SkippedCount   int            `json:"skipped_count"`
	CreatedRecords int64          `json:"created_records"`
	Failures       []SweepFailure `json:"failures"`
}

// Skip reasons reported by orphan synthesis
const (
	SkipCovered           = "covered"
	SkipNoClass           = "no_class"
	SkipNoEligibleTeacher = "no_eligible_teacher"
	SkipCourseNotFound    = "course_not_found"
	SkipConflict          = "conflict"
	SkipError             = "error"
)

type SynthesisResult struct {
	Created       int            `json:"created"`
	AssignmentIDs []uint         `json:"assignment_ids"`
	SkippedCount  int            `json:"skipped_count"`
	Skipped       []SweepFailure `json:"skipped"`
}

type SynthesizeRequest struct {
	ScoreIDs []uint `json:"score_ids" validate:"omitempty,dive,gt=0"`
}

// ===== SCORE DTOs =====

type RecordScoreRequest struct {
	StudentID          string     `json:"student_id" validate:"required,max=255"`
	CourseID           uint       `json:"course_id" validate:"required"`
	QuizAvg            float64    `json:"quiz_avg" validate:"percentage"`
	ExerciseAvg        float64    `json:"exercise_avg" validate:"percentage"`
	AIComprehension    float64    `json:"ai_comprehension" validate:"percentage"`
	QuizCount          int        `json:"quiz_count" validate:"gte=0"`
	ExerciseCount      int        `json:"exercise_count" validate:"gte=0"`
	AIInteractionCount int        `json:"ai_interaction_count" validate:"gte=0"`
	ExamGrade          *float64   `json:"exam_grade" validate:"omitempty,exam_grade"`
	ExamDate           *time.Time `json:"exam_date"`
}

type ComputeScoreRequest struct {
	QuizAvg         float64  `json:"quiz_avg" validate:"percentage"`
	ExerciseAvg     float64  `json:"exercise_avg" validate:"percentage"`
	AIComprehension float64  `json:"ai_comprehension" validate:"percentage"`
	ExamGrade       *float64 `json:"exam_grade" validate:"omitempty,exam_grade"`
}

func (r ComputeScoreRequest) Raw() scoring.Raw {
	return scoring.Raw{
		QuizAvg:         r.QuizAvg,
		ExerciseAvg:     r.ExerciseAvg,
		AIComprehension: r.AIComprehension,
		ExamGrade:       r.ExamGrade,
	}
}

type ScoreListResponse struct {
	Scores []*models.ScoreRecord `json:"scores"`
	Total  int64                 `json:"total"`
}

// ===== AGENDA DTOs =====

type AgendaResponse struct {
	Items       []agenda.Item `json:"items"`
	Stats       agenda.Stats  `json:"stats"`
	GeneratedAt time.Time     `json:"generated_at"`
}

// ===== PERSONAL EVENT DTOs =====

type PersonalEventRequest struct {
	Title       string    `json:"title" validate:"required,max=200"`
	Description *string   `json:"description"`
	StartAt     time.Time `json:"start_at" validate:"required"`
	EndAt       time.Time `json:"end_at" validate:"required"`
}

func (r PersonalEventRequest) BusinessRules() ValidationErrors {
	if r.EndAt.Before(r.StartAt) {
		return apperrors.Single("end_at", "end_at must not be before start_at", r.EndAt)
	}
	return nil
}

// ===== FILTER DTOs =====

// FilterResolveRequest carries the selection of each level by level name
type FilterResolveRequest struct {
	Selections map[string][]string `json:"selections"`
}

type FilterResolveResponse struct {
	Hierarchy string               `json:"hierarchy"`
	Levels    []cascade.LevelState `json:"levels"`
}
