package models

import "time"

type ProgressStatus string

const (
	ProgressNotStarted ProgressStatus = "NOT_STARTED"
	ProgressInProgress ProgressStatus = "IN_PROGRESS"
	ProgressCompleted  ProgressStatus = "COMPLETED"
	ProgressGraded     ProgressStatus = "GRADED"
)

// ProgressRecord is the per-learner completion state of one assignment.
// (AssignmentID, StudentID) is unique; every insert path relies on it.
type ProgressRecord struct {
	ID              uint           `json:"id" gorm:"primaryKey"`
	AssignmentID    uint           `json:"assignment_id" gorm:"not null;uniqueIndex:uq_progress_assignment_student"`
	StudentID       string         `json:"student_id" gorm:"not null;size:255;uniqueIndex:uq_progress_assignment_student;index"`
	Status          ProgressStatus `json:"status" gorm:"not null;size:16;default:NOT_STARTED"`
	AnchorSectionID *uint          `json:"anchor_section_id"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

func (ProgressRecord) TableName() string {
	return "progress_records"
}
