package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/SAP-F-2025/assignment-service/internal/models"
	"github.com/SAP-F-2025/assignment-service/internal/repositories"
	"gorm.io/gorm"
)

type AssignmentPostgreSQL struct {
	db *gorm.DB
}

func NewAssignmentPostgreSQL(db *gorm.DB) repositories.AssignmentRepository {
	return &AssignmentPostgreSQL{db: db}
}

func (a *AssignmentPostgreSQL) Create(ctx context.Context, tx *gorm.DB, assignment *models.Assignment) error {
	if err := getDB(a.db, tx).WithContext(ctx).Create(assignment).Error; err != nil {
		return fmt.Errorf("failed to create assignment: %w", err)
	}
	return nil
}

func (a *AssignmentPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Assignment, error) {
	var assignment models.Assignment
	err := getDB(a.db, tx).WithContext(ctx).
		Preload("Children").
		First(&assignment, id).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (a *AssignmentPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.AssignmentFilters) ([]*models.Assignment, int64, error) {
	query := getDB(a.db, tx).WithContext(ctx).Model(&models.Assignment{})
	query = applyAssignmentFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPaginationAndSort(query, filters.SortBy, filters.SortOrder,
		[]string{"created_at", "due_at", "start_at", "title"}, filters.Limit, filters.Offset)

	var assignments []*models.Assignment
	if err := query.Find(&assignments).Error; err != nil {
		return nil, 0, err
	}
	return assignments, total, nil
}

func (a *AssignmentPostgreSQL) ListForReconciliation(ctx context.Context, tx *gorm.DB, scope repositories.ReconcileScope) ([]*models.Assignment, error) {
	query := getDB(a.db, tx).WithContext(ctx).Model(&models.Assignment{})
	if scope.AssignmentID != nil {
		query = query.Where("id = ?", *scope.AssignmentID)
	}
	if scope.ClassID != nil {
		query = query.Where("class_id = ?", *scope.ClassID)
	}
	if scope.TeacherID != nil {
		query = query.Where("teacher_id = ?", *scope.TeacherID)
	}

	var assignments []*models.Assignment
	if err := query.Order("id ASC").Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

func (a *AssignmentPostgreSQL) ListForLearner(ctx context.Context, tx *gorm.DB, learnerID string, classIDs, teamIDs []uint) ([]*models.Assignment, error) {
	db := getDB(a.db, tx).WithContext(ctx)
	cond := db.Session(&gorm.Session{NewDB: true})

	audience := cond.Where("target_type = ? AND student_id = ?", models.TargetStudent, learnerID)
	audience = audience.Or(memberListContains(db), models.TargetTeam, memberListArg(db, learnerID))
	if len(classIDs) > 0 {
		audience = audience.Or("target_type = ? AND class_id IN ?", models.TargetClass, classIDs)
	}
	if len(teamIDs) > 0 {
		audience = audience.Or("target_type = ? AND team_id IN ?", models.TargetTeam, teamIDs)
	}

	var assignments []*models.Assignment
	if err := db.Model(&models.Assignment{}).Where(audience).Order("id ASC").Find(&assignments).Error; err != nil {
		return nil, err
	}

	// An explicit member list overrides the team roster
	out := assignments[:0]
	for _, asg := range assignments {
		if asg.HasExplicitMembers() && !containsString(asg.MemberIDs, learnerID) {
			continue
		}
		out = append(out, asg)
	}
	return out, nil
}

func (a *AssignmentPostgreSQL) FindClassAssignmentForCourse(ctx context.Context, tx *gorm.DB, courseID, classID uint) (*models.Assignment, error) {
	var assignments []models.Assignment
	err := getDB(a.db, tx).WithContext(ctx).
		Where("target_type = ? AND class_id = ? AND (root_course_id = ? OR course_id = ?)",
			models.TargetClass, classID, courseID, courseID).
		Order("id ASC").
		Limit(1).
		Find(&assignments).Error
	if err != nil {
		return nil, err
	}
	if len(assignments) == 0 {
		return nil, nil
	}
	return &assignments[0], nil
}

func (a *AssignmentPostgreSQL) DeleteCascade(ctx context.Context, tx *gorm.DB, id uint) error {
	db := getDB(a.db, tx).WithContext(ctx)

	var root models.Assignment
	if err := db.Select("id").First(&root, id).Error; err != nil {
		return err
	}

	ids := []uint{id}
	frontier := []uint{id}
	for len(frontier) > 0 {
		var children []uint
		if err := db.Model(&models.Assignment{}).Where("parent_id IN ?", frontier).Pluck("id", &children).Error; err != nil {
			return fmt.Errorf("failed to load child assignments: %w", err)
		}
		ids = append(ids, children...)
		frontier = children
	}

	if err := db.Where("assignment_id IN ?", ids).Delete(&models.ProgressRecord{}).Error; err != nil {
		return fmt.Errorf("failed to delete progress records: %w", err)
	}
	if err := db.Where("id IN ?", ids).Delete(&models.Assignment{}).Error; err != nil {
		return fmt.Errorf("failed to delete assignments: %w", err)
	}
	return nil
}

func applyAssignmentFilters(query *gorm.DB, filters repositories.AssignmentFilters) *gorm.DB {
	if filters.TeacherID != nil {
		query = query.Where("teacher_id = ?", *filters.TeacherID)
	}
	if filters.TargetType != nil {
		query = query.Where("target_type = ?", *filters.TargetType)
	}
	if filters.ClassID != nil {
		query = query.Where("class_id = ?", *filters.ClassID)
	}
	if filters.CourseID != nil {
		query = query.Where("root_course_id = ?", *filters.CourseID)
	}
	if filters.ParentID != nil {
		query = query.Where("parent_id = ?", *filters.ParentID)
	}
	if filters.DueFrom != nil {
		query = query.Where("due_at >= ?", *filters.DueFrom)
	}
	if filters.DueTo != nil {
		query = query.Where("due_at <= ?", *filters.DueTo)
	}
	return query
}

// memberListContains is the condition matching TEAM rows whose member_ids
// list holds the learner.
func memberListContains(db *gorm.DB) string {
	if isPostgres(db) {
		return "target_type = ? AND member_ids @> ?::jsonb"
	}
	return "target_type = ? AND EXISTS (SELECT 1 FROM json_each(assignments.member_ids) WHERE json_each.value = ?)"
}

func memberListArg(db *gorm.DB, learnerID string) string {
	if isPostgres(db) {
		b, _ := json.Marshal([]string{learnerID})
		return string(b)
	}
	return learnerID
}

func containsString(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
