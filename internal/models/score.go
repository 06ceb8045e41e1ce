package models

import "time"

// ScoreRecord aggregates one learner's activity in one course.
// ExamGrade nil means no exam yet; 0 is a recorded grade.
type ScoreRecord struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	StudentID string `json:"student_id" gorm:"not null;size:255;uniqueIndex:uq_score_student_course"`
	CourseID  uint   `json:"course_id" gorm:"not null;uniqueIndex:uq_score_student_course;index"`

	// Raw inputs
	QuizAvg            float64    `json:"quiz_avg" gorm:"not null;default:0"`
	ExerciseAvg        float64    `json:"exercise_avg" gorm:"not null;default:0"`
	AIComprehension    float64    `json:"ai_comprehension" gorm:"not null;default:0"`
	QuizCount          int        `json:"quiz_count" gorm:"not null;default:0"`
	ExerciseCount      int        `json:"exercise_count" gorm:"not null;default:0"`
	AIInteractionCount int        `json:"ai_interaction_count" gorm:"not null;default:0"`
	ExamGrade          *float64   `json:"exam_grade"`
	ExamDate           *time.Time `json:"exam_date"`

	// Derived, recomputed on every write
	ContinuousScore float64  `json:"continuous_score" gorm:"not null;default:0"`
	FinalScore      *float64 `json:"final_score"`
	FinalGrade      *float64 `json:"final_grade"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ScoreRecord) TableName() string {
	return "score_records"
}
