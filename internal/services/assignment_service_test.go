package services

import (
	"context"
	"errors"
	"testing"

	"github.com/SAP-F-2025/assignment-service/internal/events"
	"github.com/SAP-F-2025/assignment-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignmentService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("ClassFanOut", func(t *testing.T) {
		env := newTestEnv()

		resp, err := env.services.Assignment().Create(ctx, classAssignmentRequest(10, 1), teacher)
		require.NoError(t, err)

		a := resp.Assignment
		assert.Equal(t, "Algebra", a.Title)
		assert.Equal(t, models.PriorityMedium, a.Priority)
		require.NotNil(t, a.RootCourseID)
		assert.Equal(t, uint(10), *a.RootCourseID)
		require.NotNil(t, a.SubjectID)
		assert.Equal(t, uint(1), *a.SubjectID)

		assert.Equal(t, map[string]models.ProgressStatus{
			"s1": models.ProgressNotStarted,
			"s2": models.ProgressNotStarted,
		}, env.store.progressOf(a.ID))
		assert.Equal(t, 2, resp.Progress.Total)
		assert.Equal(t, 2, resp.Progress.NotStarted)

		assert.Len(t, env.publisher.EventsOfType(events.EventAssignmentCreated), 1)
	})

	t.Run("ExplicitMembersWinOverTeam", func(t *testing.T) {
		env := newTestEnv()

		req := &CreateAssignmentRequest{
			CourseID:   uintPtr(10),
			TargetType: models.TargetTeam,
			TeamID:     uintPtr(5),
			MemberIDs:  []string{"s7", "s8", "s7"},
		}
		resp, err := env.services.Assignment().Create(ctx, req, teacher)
		require.NoError(t, err)

		assert.Nil(t, resp.Assignment.TeamID)
		progress := env.store.progressOf(resp.Assignment.ID)
		assert.Len(t, progress, 2)
		assert.Contains(t, progress, "s7")
		assert.Contains(t, progress, "s8")
	})

	t.Run("TeamRoster", func(t *testing.T) {
		env := newTestEnv()

		req := &CreateAssignmentRequest{CourseID: uintPtr(10), TargetType: models.TargetTeam, TeamID: uintPtr(5)}
		resp, err := env.services.Assignment().Create(ctx, req, teacher)
		require.NoError(t, err)

		progress := env.store.progressOf(resp.Assignment.ID)
		assert.Len(t, progress, 2)
		assert.Contains(t, progress, "s3")
		assert.Contains(t, progress, "s4")
	})

	t.Run("StudentTargetDropsOtherDescriptors", func(t *testing.T) {
		env := newTestEnv()

		req := &CreateAssignmentRequest{
			CourseID:   uintPtr(10),
			TargetType: models.TargetStudent,
			StudentID:  strPtr("s2"),
			ClassID:    uintPtr(1),
		}
		resp, err := env.services.Assignment().Create(ctx, req, teacher)
		require.NoError(t, err)

		assert.Nil(t, resp.Assignment.ClassID)
		assert.Equal(t, map[string]models.ProgressStatus{"s2": models.ProgressNotStarted}, env.store.progressOf(resp.Assignment.ID))
	})

	t.Run("SectionAnchorsProgress", func(t *testing.T) {
		env := newTestEnv()

		req := &CreateAssignmentRequest{SectionID: uintPtr(111), TargetType: models.TargetClass, ClassID: uintPtr(1)}
		resp, err := env.services.Assignment().Create(ctx, req, teacher)
		require.NoError(t, err)
		assert.Equal(t, "Linear equations", resp.Assignment.Title)
		assert.Equal(t, uint(10), *resp.Assignment.RootCourseID)

		records, err := env.services.Assignment().ListProgress(ctx, resp.Assignment.ID)
		require.NoError(t, err)
		require.Len(t, records, 2)
		for _, r := range records {
			require.NotNil(t, r.AnchorSectionID)
			assert.Equal(t, uint(111), *r.AnchorSectionID)
		}
	})

	t.Run("TwoContentReferencesRejected", func(t *testing.T) {
		env := newTestEnv()

		req := classAssignmentRequest(10, 1)
		req.ChapterID = uintPtr(11)
		_, err := env.services.Assignment().Create(ctx, req, teacher)

		require.Error(t, err)
		assert.Equal(t, KindValidation, KindOf(err))
		assert.Zero(t, env.store.assignmentCount())
	})

	t.Run("MissingTargetDescriptor", func(t *testing.T) {
		env := newTestEnv()

		req := &CreateAssignmentRequest{CourseID: uintPtr(10), TargetType: models.TargetClass}
		_, err := env.services.Assignment().Create(ctx, req, teacher)

		var ve ValidationErrors
		require.ErrorAs(t, err, &ve)
		assert.True(t, ve.HasField("class_id"))
		assert.Zero(t, env.store.assignmentCount())
	})

	t.Run("DueBeforeStart", func(t *testing.T) {
		env := newTestEnv()

		req := classAssignmentRequest(10, 1)
		req.StartAt = timePtr(testNow)
		req.DueAt = timePtr(testNow.Add(-1))
		_, err := env.services.Assignment().Create(ctx, req, teacher)

		assert.Equal(t, KindValidation, KindOf(err))
	})

	t.Run("UnknownContent", func(t *testing.T) {
		env := newTestEnv()

		_, err := env.services.Assignment().Create(ctx, classAssignmentRequest(999, 1), teacher)

		assert.ErrorIs(t, err, ErrContentNotFound)
		assert.Equal(t, KindNotFound, KindOf(err))
		assert.Zero(t, env.store.assignmentCount())
	})

	t.Run("UnknownClass", func(t *testing.T) {
		env := newTestEnv()

		_, err := env.services.Assignment().Create(ctx, classAssignmentRequest(10, 77), teacher)

		assert.ErrorIs(t, err, ErrClassNotFound)
		assert.Zero(t, env.store.assignmentCount())
	})

	t.Run("FanOutFailureRollsBack", func(t *testing.T) {
		env := newTestEnv()
		env.store.insertErr = errors.New("connection reset")

		_, err := env.services.Assignment().Create(ctx, classAssignmentRequest(10, 1), teacher)

		require.Error(t, err)
		assert.Equal(t, KindInternal, KindOf(err))
		assert.Zero(t, env.store.assignmentCount())
		assert.Empty(t, env.publisher.GetPublishedEvents())
	})

	t.Run("LearnerCannotIssue", func(t *testing.T) {
		env := newTestEnv()

		_, err := env.services.Assignment().Create(ctx, classAssignmentRequest(10, 1), learner)

		assert.Equal(t, KindForbidden, KindOf(err))
	})
}

func TestAssignmentService_Delete(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	parent, err := env.services.Assignment().Create(ctx, classAssignmentRequest(10, 1), teacher)
	require.NoError(t, err)

	childReq := classAssignmentRequest(10, 1)
	childReq.ParentID = uintPtr(parent.Assignment.ID)
	child, err := env.services.Assignment().Create(ctx, childReq, teacher)
	require.NoError(t, err)

	t.Run("OtherTeacherForbidden", func(t *testing.T) {
		err := env.services.Assignment().Delete(ctx, parent.Assignment.ID, models.Caller{ID: "t9", Role: models.RoleTeacher})
		assert.Equal(t, KindForbidden, KindOf(err))
	})

	t.Run("CascadesToChildrenAndProgress", func(t *testing.T) {
		require.NoError(t, env.services.Assignment().Delete(ctx, parent.Assignment.ID, teacher))

		_, err := env.services.Assignment().Get(ctx, child.Assignment.ID)
		assert.ErrorIs(t, err, ErrAssignmentNotFound)
		assert.Empty(t, env.store.progressOf(parent.Assignment.ID))
		assert.Empty(t, env.store.progressOf(child.Assignment.ID))
		assert.Len(t, env.publisher.EventsOfType(events.EventAssignmentDeleted), 1)
	})

	t.Run("Missing", func(t *testing.T) {
		err := env.services.Assignment().Delete(ctx, parent.Assignment.ID, admin)
		assert.Equal(t, KindNotFound, KindOf(err))
	})
}

func TestAssignmentService_UpdateProgressStatus(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	resp, err := env.services.Assignment().Create(ctx, classAssignmentRequest(10, 1), teacher)
	require.NoError(t, err)
	id := resp.Assignment.ID

	t.Run("OwnProgress", func(t *testing.T) {
		err := env.services.Assignment().UpdateProgressStatus(ctx, id, "s1",
			&UpdateProgressRequest{Status: models.ProgressCompleted}, learner)
		require.NoError(t, err)

		got, err := env.services.Assignment().Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 1, got.Progress.Completed)
		assert.Equal(t, 1, got.Progress.NotStarted)
	})

	t.Run("SomeoneElsesProgress", func(t *testing.T) {
		err := env.services.Assignment().UpdateProgressStatus(ctx, id, "s2",
			&UpdateProgressRequest{Status: models.ProgressCompleted}, learner)
		assert.Equal(t, KindForbidden, KindOf(err))
	})

	t.Run("InvalidStatus", func(t *testing.T) {
		err := env.services.Assignment().UpdateProgressStatus(ctx, id, "s1",
			&UpdateProgressRequest{Status: "DONE"}, learner)
		assert.Equal(t, KindValidation, KindOf(err))
	})

	t.Run("NotInAudience", func(t *testing.T) {
		err := env.services.Assignment().UpdateProgressStatus(ctx, id, "s3",
			&UpdateProgressRequest{Status: models.ProgressInProgress}, teacher)
		assert.ErrorIs(t, err, ErrProgressNotFound)
	})
}
