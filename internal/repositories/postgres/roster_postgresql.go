package postgres

import (
	"context"

	"github.com/SAP-F-2025/assignment-service/internal/models"
	"github.com/SAP-F-2025/assignment-service/internal/repositories"
	"gorm.io/gorm"
)

type RosterPostgreSQL struct {
	db *gorm.DB
}

func NewRosterPostgreSQL(db *gorm.DB) repositories.RosterProvider {
	return &RosterPostgreSQL{db: db}
}

func (r *RosterPostgreSQL) MembersOfClass(ctx context.Context, classID uint) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&models.ClassMember{}).
		Where("class_id = ?", classID).
		Order("student_id ASC").
		Pluck("student_id", &ids).Error
	return ids, err
}

func (r *RosterPostgreSQL) MembersOfTeam(ctx context.Context, teamID uint) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&models.TeamMember{}).
		Where("team_id = ?", teamID).
		Order("student_id ASC").
		Pluck("student_id", &ids).Error
	return ids, err
}

func (r *RosterPostgreSQL) ClassesOfStudent(ctx context.Context, studentID string) ([]models.ClassMember, error) {
	var memberships []models.ClassMember
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("joined_at DESC").
		Order("class_id DESC").
		Find(&memberships).Error
	return memberships, err
}

func (r *RosterPostgreSQL) TeamsOfStudent(ctx context.Context, studentID string) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.TeamMember{}).
		Where("student_id = ?", studentID).
		Pluck("team_id", &ids).Error
	return ids, err
}

func (r *RosterPostgreSQL) TeachersOfClasses(ctx context.Context, classIDs []uint) ([]string, error) {
	if len(classIDs) == 0 {
		return nil, nil
	}

	var ids []string
	err := r.db.WithContext(ctx).
		Model(&models.ClassTeacher{}).
		Distinct("teacher_id").
		Where("class_id IN ?", classIDs).
		Order("teacher_id ASC").
		Pluck("teacher_id", &ids).Error
	return ids, err
}

func (r *RosterPostgreSQL) GetClass(ctx context.Context, id uint) (*models.Class, error) {
	var classes []models.Class
	if err := r.db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&classes).Error; err != nil {
		return nil, err
	}
	if len(classes) == 0 {
		return nil, nil
	}
	return &classes[0], nil
}

func (r *RosterPostgreSQL) GetTeam(ctx context.Context, id uint) (*models.Team, error) {
	var teams []models.Team
	if err := r.db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&teams).Error; err != nil {
		return nil, err
	}
	if len(teams) == 0 {
		return nil, nil
	}
	return &teams[0], nil
}

func (r *RosterPostgreSQL) GetClasses(ctx context.Context, ids []uint) ([]models.Class, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var classes []models.Class
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id ASC").Find(&classes).Error
	return classes, err
}

func (r *RosterPostgreSQL) ListClasses(ctx context.Context) ([]models.Class, error) {
	var classes []models.Class
	err := r.db.WithContext(ctx).Order("name ASC").Find(&classes).Error
	return classes, err
}
