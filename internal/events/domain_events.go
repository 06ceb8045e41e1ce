package events

import (
	"time"

	"github.com/SAP-F-2025/assignment-service/internal/models"
	"github.com/google/uuid"
)

// EventType represents the domain events the service emits
type EventType string

const (
	// Assignment events
	EventAssignmentCreated     EventType = "assignment.created"
	EventAssignmentDeleted     EventType = "assignment.deleted"
	EventAssignmentSynthesized EventType = "assignment.synthesized"

	// Progress events
	EventProgressReconciled EventType = "progress.reconciled"
	EventProgressUpdated    EventType = "progress.updated"

	// Score events
	EventScoreRecomputed EventType = "score.recomputed"
)

const (
	eventSource  = "assignment-service"
	eventVersion = "1.0"
)

// DomainEvent is the envelope published for every event
type DomainEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Event payloads

type AssignmentCreatedEvent struct {
	AssignmentID uint              `json:"assignment_id"`
	Title        string            `json:"title"`
	TeacherID    string            `json:"teacher_id"`
	TargetType   models.TargetType `json:"target_type"`
	DueAt        *time.Time        `json:"due_at,omitempty"`
	StudentIDs   []string          `json:"student_ids"`
}

type AssignmentDeletedEvent struct {
	AssignmentID uint   `json:"assignment_id"`
	DeletedBy    string `json:"deleted_by"`
}

type AssignmentSynthesizedEvent struct {
	AssignmentID  uint   `json:"assignment_id"`
	CourseID      uint   `json:"course_id"`
	ClassID       uint   `json:"class_id"`
	TeacherID     string `json:"teacher_id"`
	ScoreRecordID uint   `json:"score_record_id"`
	RecordCount   int64  `json:"record_count"`
}

type ProgressReconciledEvent struct {
	Scanned        int   `json:"scanned"`
	FixedCount     int   `json:"fixed_count"`
	SkippedCount   int   `json:"skipped_count"`
	CreatedRecords int64 `json:"created_records"`
}

type ProgressUpdatedEvent struct {
	AssignmentID uint                  `json:"assignment_id"`
	StudentID    string                `json:"student_id"`
	Status       models.ProgressStatus `json:"status"`
}

type ScoreRecomputedEvent struct {
	ScoreRecordID   uint     `json:"score_record_id"`
	StudentID       string   `json:"student_id"`
	CourseID        uint     `json:"course_id"`
	ContinuousScore float64  `json:"continuous_score"`
	FinalScore      *float64 `json:"final_score"`
	FinalGrade      *float64 `json:"final_grade"`
}

// Event factory functions

func newEvent(eventType EventType, data interface{}) *DomainEvent {
	return &DomainEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
	}
}

func NewAssignmentCreatedEvent(a *models.Assignment, studentIDs []string) *DomainEvent {
	return newEvent(EventAssignmentCreated, AssignmentCreatedEvent{
		AssignmentID: a.ID,
		Title:        a.Title,
		TeacherID:    a.TeacherID,
		TargetType:   a.TargetType,
		DueAt:        a.DueAt,
		StudentIDs:   studentIDs,
	})
}

func NewAssignmentDeletedEvent(assignmentID uint, deletedBy string) *DomainEvent {
	return newEvent(EventAssignmentDeleted, AssignmentDeletedEvent{
		AssignmentID: assignmentID,
		DeletedBy:    deletedBy,
	})
}

func NewAssignmentSynthesizedEvent(a *models.Assignment, scoreRecordID uint, recordCount int64) *DomainEvent {
	e := AssignmentSynthesizedEvent{
		AssignmentID:  a.ID,
		TeacherID:     a.TeacherID,
		ScoreRecordID: scoreRecordID,
		RecordCount:   recordCount,
	}
	if a.CourseID != nil {
		e.CourseID = *a.CourseID
	}
	if a.ClassID != nil {
		e.ClassID = *a.ClassID
	}
	return newEvent(EventAssignmentSynthesized, e)
}

func NewProgressReconciledEvent(scanned, fixed, skipped int, created int64) *DomainEvent {
	return newEvent(EventProgressReconciled, ProgressReconciledEvent{
		Scanned:        scanned,
		FixedCount:     fixed,
		SkippedCount:   skipped,
		CreatedRecords: created,
	})
}

func NewProgressUpdatedEvent(assignmentID uint, studentID string, status models.ProgressStatus) *DomainEvent {
	return newEvent(EventProgressUpdated, ProgressUpdatedEvent{
		AssignmentID: assignmentID,
		StudentID:    studentID,
		Status:       status,
	})
}

func NewScoreRecomputedEvent(r *models.ScoreRecord) *DomainEvent {
	return newEvent(EventScoreRecomputed, ScoreRecomputedEvent{
		ScoreRecordID:   r.ID,
		StudentID:       r.StudentID,
		CourseID:        r.CourseID,
		ContinuousScore: r.ContinuousScore,
		FinalScore:      r.FinalScore,
		FinalGrade:      r.FinalGrade,
	})
}
