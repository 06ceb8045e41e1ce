package postgres

import (
	"context"
	"time"

	"github.com/SAP-F-2025/assignment-service/internal/models"
	"github.com/SAP-F-2025/assignment-service/internal/repositories"
	"gorm.io/gorm"
)

type PersonalEventPostgreSQL struct {
	db *gorm.DB
}

func NewPersonalEventPostgreSQL(db *gorm.DB) repositories.PersonalEventRepository {
	return &PersonalEventPostgreSQL{db: db}
}

func (p *PersonalEventPostgreSQL) Create(ctx context.Context, tx *gorm.DB, event *models.PersonalEvent) error {
	return getDB(p.db, tx).WithContext(ctx).Create(event).Error
}

func (p *PersonalEventPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.PersonalEvent, error) {
	var event models.PersonalEvent
	if err := getDB(p.db, tx).WithContext(ctx).First(&event, id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (p *PersonalEventPostgreSQL) Update(ctx context.Context, tx *gorm.DB, event *models.PersonalEvent) error {
	return getDB(p.db, tx).WithContext(ctx).Save(event).Error
}

func (p *PersonalEventPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	res := getDB(p.db, tx).WithContext(ctx).Delete(&models.PersonalEvent{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (p *PersonalEventPostgreSQL) EventsOwnedBy(ctx context.Context, tx *gorm.DB, ownerID string, from, to *time.Time) ([]*models.PersonalEvent, error) {
	query := getDB(p.db, tx).WithContext(ctx).Where("owner_id = ?", ownerID)
	if from != nil {
		query = query.Where("end_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("start_at <= ?", *to)
	}

	var events []*models.PersonalEvent
	if err := query.Order("start_at ASC").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
