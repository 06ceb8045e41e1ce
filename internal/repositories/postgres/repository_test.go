package postgres

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/SAP-F-2025/assignment-service/internal/models"
	"github.com/SAP-F-2025/assignment-service/internal/repositories"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func uintPtr(v uint) *uint { return &v }
func strPtr(v string) *string { return &v }
func floatPtr(v float64) *float64 { return &v }

func progressFor(assignmentID uint, students ...string) []*models.ProgressRecord {
	out := make([]*models.ProgressRecord, len(students))
	for i, s := range students {
		out[i] = &models.ProgressRecord{AssignmentID: assignmentID, StudentID: s, Status: models.ProgressNotStarted}
	}
	return out
}

func TestProgress_InsertMissingSkipsExistingPairs(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(newTestDB(t))

	n, err := repo.Progress().InsertMissing(ctx, nil, progressFor(1, "s1", "s2", "s3"))
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	n, err = repo.Progress().InsertMissing(ctx, nil, progressFor(1, "s1", "s2", "s3", "s4"))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = repo.Progress().InsertMissing(ctx, nil, progressFor(1, "s4"))
	require.NoError(t, err)
	assert.Zero(t, n)

	ids, err := repo.Progress().StudentIDsByAssignment(ctx, nil, 1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"s1", "s2", "s3", "s4"}, ids)
}

func TestProgress_SummaryAndUpdateStatus(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(newTestDB(t))

	_, err := repo.Progress().InsertMissing(ctx, nil, progressFor(7, "a", "b", "c"))
	require.NoError(t, err)
	require.NoError(t, repo.Progress().UpdateStatus(ctx, nil, 7, "b", models.ProgressCompleted))

	err = repo.Progress().UpdateStatus(ctx, nil, 7, "ghost", models.ProgressCompleted)
	assert.True(t, repositories.IsNotFoundError(err))

	summary, err := repo.Progress().Summary(ctx, nil, 7)
	require.NoError(t, err)
	assert.Equal(t, models.ProgressSummary{Total: 3, NotStarted: 2, Completed: 1}, *summary)
}

func TestAssignment_DeleteCascade(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(newTestDB(t))

	parent := &models.Assignment{Title: "parent", CourseID: uintPtr(1), TargetType: models.TargetStudent, StudentID: strPtr("s1"), TeacherID: "t1", Priority: models.PriorityMedium}
	require.NoError(t, repo.Assignment().Create(ctx, nil, parent))
	child := &models.Assignment{Title: "child", CourseID: uintPtr(1), TargetType: models.TargetStudent, StudentID: strPtr("s1"), TeacherID: "t1", ParentID: &parent.ID, Priority: models.PriorityMedium}
	require.NoError(t, repo.Assignment().Create(ctx, nil, child))
	grandchild := &models.Assignment{Title: "grandchild", CourseID: uintPtr(1), TargetType: models.TargetStudent, StudentID: strPtr("s1"), TeacherID: "t1", ParentID: &child.ID, Priority: models.PriorityMedium}
	require.NoError(t, repo.Assignment().Create(ctx, nil, grandchild))
	other := &models.Assignment{Title: "other", CourseID: uintPtr(1), TargetType: models.TargetStudent, StudentID: strPtr("s1"), TeacherID: "t1", Priority: models.PriorityMedium}
	require.NoError(t, repo.Assignment().Create(ctx, nil, other))

	for _, id := range []uint{parent.ID, child.ID, grandchild.ID, other.ID} {
		_, err := repo.Progress().InsertMissing(ctx, nil, progressFor(id, "s1"))
		require.NoError(t, err)
	}

	err := repo.Transaction(ctx, func(tx *gorm.DB) error {
		return repo.Assignment().DeleteCascade(ctx, tx, parent.ID)
	})
	require.NoError(t, err)

	for _, id := range []uint{parent.ID, child.ID, grandchild.ID} {
		_, err := repo.Assignment().GetByID(ctx, nil, id)
		assert.True(t, repositories.IsNotFoundError(err))

		ids, err := repo.Progress().StudentIDsByAssignment(ctx, nil, id)
		require.NoError(t, err)
		assert.Empty(t, ids)
	}

	kept, err := repo.Progress().StudentIDsByAssignment(ctx, nil, other.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, kept)

	err = repo.Assignment().DeleteCascade(ctx, nil, parent.ID)
	assert.True(t, repositories.IsNotFoundError(err))
}

func TestAssignment_SyntheticUniquePerCourseClass(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(newTestDB(t))

	newClassAssignment := func(synthetic bool) *models.Assignment {
		return &models.Assignment{
			Title: "Algebra", CourseID: uintPtr(3), RootCourseID: uintPtr(3),
			TargetType: models.TargetClass, ClassID: uintPtr(9),
			TeacherID: "t1", Priority: models.PriorityMedium, Synthetic: synthetic,
		}
	}

	require.NoError(t, repo.Assignment().Create(ctx, nil, newClassAssignment(true)))
	err := repo.Assignment().Create(ctx, nil, newClassAssignment(true))
	require.Error(t, err)
	assert.True(t, repositories.IsUniqueViolation(err))

	// Teachers may still issue their own assignments for the same pair
	require.NoError(t, repo.Assignment().Create(ctx, nil, newClassAssignment(false)))

	found, err := repo.Assignment().FindClassAssignmentForCourse(ctx, nil, 3, 9)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.True(t, found.Synthetic)

	missing, err := repo.Assignment().FindClassAssignmentForCourse(ctx, nil, 3, 10)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestAssignment_ListForLearner(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(newTestDB(t))

	create := func(a *models.Assignment) uint {
		a.Title = "x"
		a.CourseID = uintPtr(1)
		a.TeacherID = "t1"
		a.Priority = models.PriorityLow
		require.NoError(t, repo.Assignment().Create(ctx, nil, a))
		return a.ID
	}

	direct := create(&models.Assignment{TargetType: models.TargetStudent, StudentID: strPtr("me")})
	create(&models.Assignment{TargetType: models.TargetStudent, StudentID: strPtr("someone")})
	byClass := create(&models.Assignment{TargetType: models.TargetClass, ClassID: uintPtr(5)})
	create(&models.Assignment{TargetType: models.TargetClass, ClassID: uintPtr(6)})
	byTeam := create(&models.Assignment{TargetType: models.TargetTeam, TeamID: uintPtr(2)})
	byList := create(&models.Assignment{TargetType: models.TargetTeam, MemberIDs: []string{"x", "me"}})
	create(&models.Assignment{TargetType: models.TargetTeam, MemberIDs: []string{"x", "y"}})
	// Team 2 assignment whose explicit list excludes the learner
	create(&models.Assignment{TargetType: models.TargetTeam, TeamID: uintPtr(2), MemberIDs: []string{"y"}})

	got, err := repo.Assignment().ListForLearner(ctx, nil, "me", []uint{5}, []uint{2})
	require.NoError(t, err)

	var ids []uint
	for _, a := range got {
		ids = append(ids, a.ID)
	}
	assert.ElementsMatch(t, []uint{direct, byClass, byTeam, byList}, ids)
}

func TestScore_UpsertReplacesByStudentCourse(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(newTestDB(t))

	createdAt := time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC)
	first := &models.ScoreRecord{StudentID: "s1", CourseID: 4, QuizAvg: 50, ContinuousScore: 17.5, CreatedAt: createdAt}
	require.NoError(t, repo.Score().Upsert(ctx, nil, first))
	require.NotZero(t, first.ID)

	second := &models.ScoreRecord{StudentID: "s1", CourseID: 4, QuizAvg: 80, ExamGrade: floatPtr(0), ContinuousScore: 28, FinalScore: floatPtr(11.2), FinalGrade: floatPtr(0.672)}
	require.NoError(t, repo.Score().Upsert(ctx, nil, second))
	assert.Equal(t, first.ID, second.ID)
	assert.True(t, createdAt.Equal(second.CreatedAt), "rewrite keeps the original created_at, got %s", second.CreatedAt)

	all, total, err := repo.Score().List(ctx, nil, repositories.ScoreFilters{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, all, 1)

	stored, err := repo.Score().GetByStudentCourse(ctx, nil, "s1", 4)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, 80.0, stored.QuizAvg)
	require.NotNil(t, stored.ExamGrade)
	assert.Equal(t, 0.0, *stored.ExamGrade)
	require.NotNil(t, stored.FinalScore)

	none, err := repo.Score().GetByStudentCourse(ctx, nil, "s2", 4)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestContent_ResolveContentWalksToCourse(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewRepository(db)

	require.NoError(t, db.Create(&models.Subject{ID: 1, Name: "Math"}).Error)
	require.NoError(t, db.Create(&models.Course{ID: 10, SubjectID: 1, TeacherID: "t1", Title: "Algebra", IsPublished: true}).Error)
	require.NoError(t, db.Create(&models.Chapter{ID: 20, CourseID: 10, Title: "Equations"}).Error)
	require.NoError(t, db.Create(&models.Section{ID: 30, ChapterID: 20, Title: "Linear"}).Error)

	info, err := repo.Content().ResolveContent(ctx, models.ContentSection, 30)
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, "Linear", info.Title)
	assert.EqualValues(t, 10, info.CourseID)
	assert.EqualValues(t, 1, info.SubjectID)

	exists, err := repo.Content().ContentExists(ctx, models.ContentChapter, 99)
	require.NoError(t, err)
	assert.False(t, exists)

	courses, err := repo.Content().PublishedCoursesTaughtBy(ctx, []string{"t1", "t2"})
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "Algebra", courses[0].Title)
}

func TestRoster_ClassesOfStudentMostRecentFirst(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewRepository(db)

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, db.Create(&models.ClassMember{ClassID: 1, StudentID: "s1", JoinedAt: base}).Error)
	require.NoError(t, db.Create(&models.ClassMember{ClassID: 2, StudentID: "s1", JoinedAt: base.AddDate(0, 6, 0)}).Error)
	require.NoError(t, db.Create(&models.ClassMember{ClassID: 2, StudentID: "s2", JoinedAt: base}).Error)

	classes, err := repo.Roster().ClassesOfStudent(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, classes, 2)
	assert.EqualValues(t, 2, classes[0].ClassID)

	members, err := repo.Roster().MembersOfClass(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s2"}, members)
}

func TestPersonalEvent_EventsOwnedByRange(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(newTestDB(t))

	day := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		start := day.AddDate(0, 0, i*7)
		require.NoError(t, repo.PersonalEvent().Create(ctx, nil, &models.PersonalEvent{OwnerID: "s1", Title: "study", StartAt: start, EndAt: start.Add(time.Hour)}))
	}
	require.NoError(t, repo.PersonalEvent().Create(ctx, nil, &models.PersonalEvent{OwnerID: "s2", Title: "other", StartAt: day, EndAt: day.Add(time.Hour)}))

	from := day.AddDate(0, 0, 1)
	to := day.AddDate(0, 0, 10)
	events, err := repo.PersonalEvent().EventsOwnedBy(ctx, nil, "s1", &from, &to)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.True(t, events[0].StartAt.Equal(day.AddDate(0, 0, 7)))

	all, err := repo.PersonalEvent().EventsOwnedBy(ctx, nil, "s1", nil, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
