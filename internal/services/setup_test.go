package services

import (
	"time"

	"github.com/SAP-F-2025/assignment-service/internal/cache"
	"github.com/SAP-F-2025/assignment-service/internal/events"
	"github.com/SAP-F-2025/assignment-service/internal/models"
	"github.com/SAP-F-2025/assignment-service/internal/validator"
)

var testNow = time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)

var (
	teacher = models.Caller{ID: "t1", Role: models.RoleTeacher}
	admin   = models.Caller{ID: "root", Role: models.RoleAdmin}
	learner = models.Caller{ID: "s1", Role: models.RoleStudent}
)

type testEnv struct {
	repo      *memRepo
	store     *memStore
	publisher *events.MockEventPublisher
	services  ServiceManager
}

// newTestEnv seeds a small school:
//
//	subjects 1 Math, 2 History, 3 Latin (nobody eligible)
//	courses 10 Algebra (Math, t1), 40 Geometry (Math, t1), 20 Rome (History, t2), 30 Verbs (Latin, t3)
//	chapter 11 of course 10, section 111 of chapter 11
//	class 1 (s1, s2; taught by t1), class 2 (s3)
//	team 5 (s3, s4)
func newTestEnv() *testEnv {
	return newTestEnvWithCache(cache.NoopCache{})
}

func newTestEnvWithCache(cacheService cache.CacheService) *testEnv {
	repo := newMemRepo()
	s := repo.store

	s.subjects = []models.Subject{{ID: 1, Name: "Math"}, {ID: 2, Name: "History"}, {ID: 3, Name: "Latin"}}
	s.courses[10] = models.Course{ID: 10, SubjectID: 1, TeacherID: "t1", Title: "Algebra", IsPublished: true}
	s.courses[40] = models.Course{ID: 40, SubjectID: 1, TeacherID: "t1", Title: "Geometry", IsPublished: true}
	s.courses[20] = models.Course{ID: 20, SubjectID: 2, TeacherID: "t2", Title: "Rome", IsPublished: true}
	s.courses[30] = models.Course{ID: 30, SubjectID: 3, TeacherID: "t3", Title: "Verbs"}
	s.chapters = []models.Chapter{{ID: 11, CourseID: 10, Title: "Equations"}}
	s.sections = []models.Section{{ID: 111, ChapterID: 11, Title: "Linear equations"}}

	s.eligibility[1] = []string{"t1", "t3"}
	s.eligibility[2] = []string{"t2"}

	s.classes[1] = models.Class{ID: 1, Name: "1A", Color: strPtr("#123456")}
	s.classes[2] = models.Class{ID: 2, Name: "2B"}
	s.classTeachers[1] = []string{"t1"}
	s.addMember(1, "s1", testNow.AddDate(0, -6, 0))
	s.addMember(1, "s2", testNow.AddDate(0, -6, 0))
	s.addMember(2, "s3", testNow.AddDate(0, -6, 0))

	s.teams[5] = models.Team{ID: 5, Name: "Robotics", TeacherID: "t1"}
	s.teamMembers[5] = []string{"s3", "s4"}

	logger := discardLogger()
	publisher := events.NewMockEventPublisher(logger)
	manager := NewServiceManager(repo, publisher, cacheService, validator.New(), logger, Options{
		Now: func() time.Time { return testNow },
	})

	return &testEnv{repo: repo, store: s, publisher: publisher, services: manager}
}

func classAssignmentRequest(courseID, classID uint) *CreateAssignmentRequest {
	return &CreateAssignmentRequest{
		CourseID:   uintPtr(courseID),
		TargetType: models.TargetClass,
		ClassID:    uintPtr(classID),
	}
}
