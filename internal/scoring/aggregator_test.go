package scoring

import (
	"testing"

	"github.com/SAP-F-2025/assignment-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func grade(v float64) *float64 { return &v }

func TestCompute_Determinism(t *testing.T) {
	d := Compute(Raw{QuizAvg: 85, ExerciseAvg: 78, AIComprehension: 70, ExamGrade: grade(5.2)})

	assert.InDelta(t, 78.45, d.ContinuousScore, 1e-9)
	require.NotNil(t, d.FinalScore)
	require.NotNil(t, d.FinalGrade)
	assert.InDelta(t, 83.38, *d.FinalScore, 1e-9)
	assert.InDelta(t, 5.0028, *d.FinalGrade, 1e-9)
}

func TestCompute_NoExamLeavesFinalNil(t *testing.T) {
	d := Compute(Raw{QuizAvg: 85, ExerciseAvg: 78, AIComprehension: 70})

	assert.InDelta(t, 78.45, d.ContinuousScore, 1e-9)
	assert.Nil(t, d.FinalScore)
	assert.Nil(t, d.FinalGrade)
}

func TestCompute_ZeroExamIsRecorded(t *testing.T) {
	zero := Compute(Raw{QuizAvg: 85, ExerciseAvg: 78, AIComprehension: 70, ExamGrade: grade(0)})
	positive := Compute(Raw{QuizAvg: 85, ExerciseAvg: 78, AIComprehension: 70, ExamGrade: grade(3)})

	require.NotNil(t, zero.FinalScore)
	require.NotNil(t, zero.FinalGrade)
	assert.InDelta(t, 78.45*0.4, *zero.FinalScore, 1e-9)
	assert.Less(t, *zero.FinalScore, *positive.FinalScore)
	assert.Less(t, *zero.FinalGrade, *positive.FinalGrade)
}

func TestCompute_Bounds(t *testing.T) {
	top := Compute(Raw{QuizAvg: 100, ExerciseAvg: 100, AIComprehension: 100, ExamGrade: grade(6)})
	assert.InDelta(t, 100, top.ContinuousScore, 1e-9)
	assert.InDelta(t, 100, *top.FinalScore, 1e-9)
	assert.InDelta(t, 6, *top.FinalGrade, 1e-9)

	bottom := Compute(Raw{})
	assert.Zero(t, bottom.ContinuousScore)
	assert.Nil(t, bottom.FinalScore)
}

func TestApply_ReplacesStaleDerivedValues(t *testing.T) {
	stale := 99.0
	rec := &models.ScoreRecord{
		QuizAvg:         85,
		ExerciseAvg:     78,
		AIComprehension: 70,
		ContinuousScore: 12,
		FinalScore:      &stale,
		FinalGrade:      &stale,
	}

	Apply(rec)

	assert.InDelta(t, 78.45, rec.ContinuousScore, 1e-9)
	assert.Nil(t, rec.FinalScore)
	assert.Nil(t, rec.FinalGrade)
}

func TestRawFromRecord_CopiesExamGrade(t *testing.T) {
	rec := &models.ScoreRecord{ExamGrade: grade(4)}
	raw := RawFromRecord(rec)

	*rec.ExamGrade = 1
	require.NotNil(t, raw.ExamGrade)
	assert.Equal(t, 4.0, *raw.ExamGrade)
}
