// Package scoring turns raw activity signals of one learner in one course
// into the continuous score, the exam-blended final score and the 0-6 grade.
package scoring

import "github.com/SAP-F-2025/assignment-service/internal/models"

const (
	QuizWeight       = 0.35
	ExerciseWeight   = 0.40
	AIWeight         = 0.25
	ContinuousWeight = 0.4
	ExamWeight       = 0.6

	// MaxGrade is the top of the exam/final grading scale.
	MaxGrade = 6.0
)

// Raw holds the inputs of a computation. ExamGrade nil means no exam yet.
type Raw struct {
	QuizAvg         float64  `json:"quiz_avg"`
	ExerciseAvg     float64  `json:"exercise_avg"`
	AIComprehension float64  `json:"ai_comprehension"`
	ExamGrade       *float64 `json:"exam_grade"`
}

type Derived struct {
	ContinuousScore float64  `json:"continuous_score"`
	FinalScore      *float64 `json:"final_score"`
	FinalGrade      *float64 `json:"final_grade"`
}

// Compute is total over numeric input.
func Compute(raw Raw) Derived {
	continuous := raw.QuizAvg*QuizWeight + raw.ExerciseAvg*ExerciseWeight + raw.AIComprehension*AIWeight

	out := Derived{ContinuousScore: continuous}
	if raw.ExamGrade == nil {
		return out
	}

	examPercent := *raw.ExamGrade / MaxGrade * 100
	final := continuous*ContinuousWeight + examPercent*ExamWeight
	grade := final / 100 * MaxGrade

	out.FinalScore = &final
	out.FinalGrade = &grade
	return out
}

// RawFromRecord extracts the computation inputs of a stored record.
func RawFromRecord(rec *models.ScoreRecord) Raw {
	raw := Raw{
		QuizAvg:         rec.QuizAvg,
		ExerciseAvg:     rec.ExerciseAvg,
		AIComprehension: rec.AIComprehension,
	}
	if rec.ExamGrade != nil {
		grade := *rec.ExamGrade
		raw.ExamGrade = &grade
	}
	return raw
}

// Apply recomputes every derived field of rec from its current raw inputs.
func Apply(rec *models.ScoreRecord) {
	d := Compute(RawFromRecord(rec))
	rec.ContinuousScore = d.ContinuousScore
	rec.FinalScore = d.FinalScore
	rec.FinalGrade = d.FinalGrade
}
