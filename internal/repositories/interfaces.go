package repositories

import (
	"context"
	"time"

	"github.com/SAP-F-2025/assignment-service/internal/models"
	"gorm.io/gorm"
)

// ===== SHARED FILTER STRUCTS =====

type AssignmentFilters struct {
	TeacherID  *string            `json:"teacher_id"`
	TargetType *models.TargetType `json:"target_type"`
	ClassID    *uint              `json:"class_id"`
	CourseID   *uint              `json:"course_id"`
	ParentID   *uint              `json:"parent_id"`
	DueFrom    *time.Time         `json:"due_from"`
	DueTo      *time.Time         `json:"due_to"`
	Limit      int                `json:"limit"`
	Offset     int                `json:"offset"`
	SortBy     string             `json:"sort_by"`    // "created_at", "due_at", "title"
	SortOrder  string             `json:"sort_order"` // "asc", "desc"
}

// ReconcileScope narrows a reconciliation sweep. Nil fields match everything.
type ReconcileScope struct {
	AssignmentID *uint   `json:"assignment_id"`
	ClassID      *uint   `json:"class_id"`
	TeacherID    *string `json:"teacher_id"`
}

type ScoreFilters struct {
	StudentID *string `json:"student_id"`
	CourseID  *uint   `json:"course_id"`
	Limit     int     `json:"limit"`
	Offset    int     `json:"offset"`
}

// ===== REPOSITORY AGGREGATE =====

// Repository groups the stores and collaborators the services need.
// Transaction runs fn inside one database transaction; repositories accept
// the tx it passes, or nil to use the default connection.
type Repository interface {
	Assignment() AssignmentRepository
	Progress() ProgressRepository
	Score() ScoreRepository
	PersonalEvent() PersonalEventRepository

	Roster() RosterProvider
	Content() ContentProvider
	Teacher() TeacherEligibility

	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// AssignmentRepository interface for assignment operations
type AssignmentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, assignment *models.Assignment) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Assignment, error)
	List(ctx context.Context, tx *gorm.DB, filters AssignmentFilters) ([]*models.Assignment, int64, error)

	// ListForReconciliation returns every assignment in scope ordered by id
	ListForReconciliation(ctx context.Context, tx *gorm.DB, scope ReconcileScope) ([]*models.Assignment, error)

	// ListForLearner returns assignments targeting the learner directly, by
	// explicit team membership, or through any of the given classes and teams
	ListForLearner(ctx context.Context, tx *gorm.DB, learnerID string, classIDs, teamIDs []uint) ([]*models.Assignment, error)

	// FindClassAssignmentForCourse returns nil, nil when no CLASS assignment
	// covers the course for the class
	FindClassAssignmentForCourse(ctx context.Context, tx *gorm.DB, courseID, classID uint) (*models.Assignment, error)

	// DeleteCascade removes the assignment, its descendants and their progress
	DeleteCascade(ctx context.Context, tx *gorm.DB, id uint) error
}

// ProgressRepository interface for per-learner progress operations
type ProgressRepository interface {
	// InsertMissing inserts records, skipping (assignment, student) pairs that
	// already exist. Returns the number of rows actually inserted.
	InsertMissing(ctx context.Context, tx *gorm.DB, records []*models.ProgressRecord) (int64, error)

	ListByAssignment(ctx context.Context, tx *gorm.DB, assignmentID uint) ([]*models.ProgressRecord, error)
	StudentIDsByAssignment(ctx context.Context, tx *gorm.DB, assignmentID uint) ([]string, error)
	ListByStudent(ctx context.Context, tx *gorm.DB, studentID string, assignmentIDs []uint) ([]*models.ProgressRecord, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, assignmentID uint, studentID string, status models.ProgressStatus) error
	Summary(ctx context.Context, tx *gorm.DB, assignmentID uint) (*models.ProgressSummary, error)
}

// ScoreRepository interface for score record operations
type ScoreRepository interface {
	// Upsert inserts or replaces the record keyed by (student, course)
	Upsert(ctx context.Context, tx *gorm.DB, record *models.ScoreRecord) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.ScoreRecord, error)
	// GetByStudentCourse returns nil, nil when absent
	GetByStudentCourse(ctx context.Context, tx *gorm.DB, studentID string, courseID uint) (*models.ScoreRecord, error)
	List(ctx context.Context, tx *gorm.DB, filters ScoreFilters) ([]*models.ScoreRecord, int64, error)
	ListByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]*models.ScoreRecord, error)
}

// PersonalEventRepository interface for learner-owned calendar entries
type PersonalEventRepository interface {
	Create(ctx context.Context, tx *gorm.DB, event *models.PersonalEvent) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.PersonalEvent, error)
	Update(ctx context.Context, tx *gorm.DB, event *models.PersonalEvent) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	// EventsOwnedBy returns events overlapping [from, to]; nil bounds are open
	EventsOwnedBy(ctx context.Context, tx *gorm.DB, ownerID string, from, to *time.Time) ([]*models.PersonalEvent, error)
}

// ===== COLLABORATORS =====

// RosterProvider reads current class and team membership.
type RosterProvider interface {
	MembersOfClass(ctx context.Context, classID uint) ([]string, error)
	MembersOfTeam(ctx context.Context, teamID uint) ([]string, error)
	// ClassesOfStudent returns memberships, most recently joined first
	ClassesOfStudent(ctx context.Context, studentID string) ([]models.ClassMember, error)
	TeamsOfStudent(ctx context.Context, studentID string) ([]uint, error)
	TeachersOfClasses(ctx context.Context, classIDs []uint) ([]string, error)

	// GetClass and GetTeam return nil, nil when absent
	GetClass(ctx context.Context, id uint) (*models.Class, error)
	GetTeam(ctx context.Context, id uint) (*models.Team, error)
	GetClasses(ctx context.Context, ids []uint) ([]models.Class, error)
	ListClasses(ctx context.Context) ([]models.Class, error)
}

// ContentProvider reads the course/chapter/section hierarchy and completion.
type ContentProvider interface {
	// ResolveContent returns nil, nil when the content does not exist
	ResolveContent(ctx context.Context, kind models.ContentKind, id uint) (*models.ContentInfo, error)
	ContentExists(ctx context.Context, kind models.ContentKind, id uint) (bool, error)
	PublishedCoursesTaughtBy(ctx context.Context, teacherIDs []string) ([]models.Course, error)
	// CourseCompletionPercentage returns 0 when nothing was recorded
	CourseCompletionPercentage(ctx context.Context, learnerID string, courseID uint) (float64, error)
	// GetCourse returns nil, nil when absent
	GetCourse(ctx context.Context, id uint) (*models.Course, error)

	ListSubjects(ctx context.Context, teacherIDs []string) ([]models.Subject, error)
	ListCourses(ctx context.Context, subjectIDs []uint, teacherIDs []string) ([]models.Course, error)
	ListChapters(ctx context.Context, courseIDs []uint) ([]models.Chapter, error)
	ListSections(ctx context.Context, chapterIDs []uint) ([]models.Section, error)
}

// TeacherEligibility reads which teachers may own work in a subject.
type TeacherEligibility interface {
	TeachersEligibleForSubject(ctx context.Context, subjectID uint) ([]string, error)
	ListTeachers(ctx context.Context) ([]string, error)
}
