package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/assignment-service/internal/models"
	"github.com/SAP-F-2025/assignment-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const progressBatchSize = 500

type ProgressPostgreSQL struct {
	db *gorm.DB
}

func NewProgressPostgreSQL(db *gorm.DB) repositories.ProgressRepository {
	return &ProgressPostgreSQL{db: db}
}

// InsertMissing relies on uq_progress_assignment_student: concurrent writers
// inserting the same pair converge on one row.
func (p *ProgressPostgreSQL) InsertMissing(ctx context.Context, tx *gorm.DB, records []*models.ProgressRecord) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}

	res := getDB(p.db, tx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "assignment_id"}, {Name: "student_id"}},
			DoNothing: true,
		}).
		CreateInBatches(records, progressBatchSize)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to insert progress records: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (p *ProgressPostgreSQL) ListByAssignment(ctx context.Context, tx *gorm.DB, assignmentID uint) ([]*models.ProgressRecord, error) {
	var records []*models.ProgressRecord
	err := getDB(p.db, tx).WithContext(ctx).
		Where("assignment_id = ?", assignmentID).
		Order("student_id ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (p *ProgressPostgreSQL) StudentIDsByAssignment(ctx context.Context, tx *gorm.DB, assignmentID uint) ([]string, error) {
	var ids []string
	err := getDB(p.db, tx).WithContext(ctx).
		Model(&models.ProgressRecord{}).
		Where("assignment_id = ?", assignmentID).
		Pluck("student_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (p *ProgressPostgreSQL) ListByStudent(ctx context.Context, tx *gorm.DB, studentID string, assignmentIDs []uint) ([]*models.ProgressRecord, error) {
	if len(assignmentIDs) == 0 {
		return nil, nil
	}

	var records []*models.ProgressRecord
	err := getDB(p.db, tx).WithContext(ctx).
		Where("student_id = ? AND assignment_id IN ?", studentID, assignmentIDs).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (p *ProgressPostgreSQL) UpdateStatus(ctx context.Context, tx *gorm.DB, assignmentID uint, studentID string, status models.ProgressStatus) error {
	res := getDB(p.db, tx).WithContext(ctx).
		Model(&models.ProgressRecord{}).
		Where("assignment_id = ? AND student_id = ?", assignmentID, studentID).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (p *ProgressPostgreSQL) Summary(ctx context.Context, tx *gorm.DB, assignmentID uint) (*models.ProgressSummary, error) {
	var rows []struct {
		Status models.ProgressStatus
		Count  int
	}
	err := getDB(p.db, tx).WithContext(ctx).
		Model(&models.ProgressRecord{}).
		Select("status, COUNT(*) AS count").
		Where("assignment_id = ?", assignmentID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	summary := &models.ProgressSummary{}
	for _, r := range rows {
		for i := 0; i < r.Count; i++ {
			summary.Add(r.Status)
		}
	}
	return summary, nil
}
