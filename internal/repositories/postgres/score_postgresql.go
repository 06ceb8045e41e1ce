package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/assignment-service/internal/models"
	"github.com/SAP-F-2025/assignment-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ScorePostgreSQL struct {
	db *gorm.DB
}

func NewScorePostgreSQL(db *gorm.DB) repositories.ScoreRepository {
	return &ScorePostgreSQL{db: db}
}

// scoreColumns are replaced wholesale on conflict so derived values never
// outlive the raw inputs they came from.
var scoreColumns = []string{
	"quiz_avg", "exercise_avg", "ai_comprehension",
	"quiz_count", "exercise_count", "ai_interaction_count",
	"exam_grade", "exam_date",
	"continuous_score", "final_score", "final_grade",
	"updated_at",
}

func (s *ScorePostgreSQL) Upsert(ctx context.Context, tx *gorm.DB, record *models.ScoreRecord) error {
	db := getDB(s.db, tx).WithContext(ctx)
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "student_id"}, {Name: "course_id"}},
		DoUpdates: clause.AssignmentColumns(scoreColumns),
	}).Create(record).Error
	if err != nil {
		return fmt.Errorf("failed to upsert score record: %w", err)
	}

	// The insert values for id and created_at are stale when the conflict
	// branch ran, and dialects disagree on what RETURNING reports there.
	var stored models.ScoreRecord
	if err := db.Select("id", "created_at").
		Where("student_id = ? AND course_id = ?", record.StudentID, record.CourseID).
		First(&stored).Error; err != nil {
		return fmt.Errorf("failed to reload score record: %w", err)
	}
	record.ID = stored.ID
	record.CreatedAt = stored.CreatedAt
	return nil
}

func (s *ScorePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.ScoreRecord, error) {
	var record models.ScoreRecord
	if err := getDB(s.db, tx).WithContext(ctx).First(&record, id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *ScorePostgreSQL) GetByStudentCourse(ctx context.Context, tx *gorm.DB, studentID string, courseID uint) (*models.ScoreRecord, error) {
	var records []models.ScoreRecord
	err := getDB(s.db, tx).WithContext(ctx).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		Limit(1).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

func (s *ScorePostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.ScoreFilters) ([]*models.ScoreRecord, int64, error) {
	query := getDB(s.db, tx).WithContext(ctx).Model(&models.ScoreRecord{})
	if filters.StudentID != nil {
		query = query.Where("student_id = ?", *filters.StudentID)
	}
	if filters.CourseID != nil {
		query = query.Where("course_id = ?", *filters.CourseID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// A zero limit loads everything; sweeps and exports rely on it
	query = query.Order("id ASC")
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit).Offset(filters.Offset)
	}

	var records []*models.ScoreRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (s *ScorePostgreSQL) ListByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]*models.ScoreRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var records []*models.ScoreRecord
	err := getDB(s.db, tx).WithContext(ctx).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
